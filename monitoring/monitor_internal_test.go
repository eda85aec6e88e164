package monitoring

import (
	"encoding/json"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aryaman2603/os-clock-simulator/driver"
)

func decodeState(rec *httptest.ResponseRecorder) stateRsp {
	var rsp stateRsp

	err := json.Unmarshal(rec.Body.Bytes(), &rsp)
	Expect(err).ToNot(HaveOccurred())

	return rsp
}

var _ = Describe("Monitor", func() {
	var m *Monitor

	BeforeEach(func() {
		d := driver.MakeBuilder().
			WithFrameCount(2).
			WithRefString([]string{"1", "2", "1"}).
			WithStepInterval(time.Millisecond).
			Build()

		m = NewMonitor()
		m.RegisterDriver(d)
	})

	It("should report the initial state", func() {
		rec := httptest.NewRecorder()
		m.state(rec, httptest.NewRequest("GET", "/api/state", nil))

		rsp := decodeState(rec)
		Expect(rsp.Frames).To(Equal([]string{"", ""}))
		Expect(rsp.State).To(Equal("Start"))
		Expect(rsp.Pointer).To(Equal(0))
		Expect(rsp.CanStepBack).To(BeFalse())
	})

	It("should advance one micro-step per request", func() {
		rec := httptest.NewRecorder()
		m.step(rec, httptest.NewRequest("POST", "/api/step", nil))

		rsp := decodeState(rec)
		Expect(rsp.State).To(Equal("CheckHit"))
		Expect(rsp.Message).To(Equal("Accessing page 1"))
		Expect(rsp.CanStepBack).To(BeTrue())
	})

	It("should undo through the API", func() {
		m.step(httptest.NewRecorder(),
			httptest.NewRequest("POST", "/api/step", nil))

		rec := httptest.NewRecorder()
		m.stepBack(rec, httptest.NewRequest("POST", "/api/stepback", nil))

		rsp := decodeState(rec)
		Expect(rec.Code).To(Equal(200))
		Expect(rsp.State).To(Equal("Start"))
	})

	It("should refuse an undo with no history", func() {
		rec := httptest.NewRecorder()
		m.stepBack(rec, httptest.NewRequest("POST", "/api/stepback", nil))

		Expect(rec.Code).To(Equal(409))
	})

	It("should reset with validated parameters", func() {
		rec := httptest.NewRecorder()
		m.reset(rec, httptest.NewRequest(
			"POST", "/api/reset?frames=4&refs=7,8,9", nil))

		rsp := decodeState(rec)
		Expect(rsp.Frames).To(HaveLen(4))
		Expect(rsp.Refs).To(Equal([]string{"7", "8", "9"}))
		Expect(rsp.Hits).To(Equal(0))
	})

	It("should reject a bad frame count", func() {
		rec := httptest.NewRecorder()
		m.reset(rec, httptest.NewRequest(
			"POST", "/api/reset?frames=0&refs=1", nil))

		Expect(rec.Code).To(Equal(400))
	})

	It("should reject an empty reference string", func() {
		rec := httptest.NewRecorder()
		m.reset(rec, httptest.NewRequest(
			"POST", "/api/reset?frames=2&refs=%20%2C%20", nil))

		Expect(rec.Code).To(Equal(400))
	})
})
