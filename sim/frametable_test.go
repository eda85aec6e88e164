package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FrameTable", func() {
	var t *FrameTable

	BeforeEach(func() {
		t = NewFrameTable(3)
	})

	It("should start empty with all use bits cleared", func() {
		Expect(t.NumFrames()).To(Equal(3))
		Expect(t.Pages()).To(Equal([]string{NoPage, NoPage, NoPage}))
		Expect(t.UseBits()).To(Equal([]bool{false, false, false}))
	})

	It("should find resident pages by slot", func() {
		t.Install(1, "42")

		Expect(t.FindPage("42")).To(Equal(1))
		Expect(t.FindPage("7")).To(Equal(-1))
	})

	It("should never find the empty marker", func() {
		Expect(t.FindPage(NoPage)).To(Equal(-1))
	})

	It("should set the use bit on install and report the victim", func() {
		Expect(t.Install(0, "a")).To(Equal(NoPage))
		Expect(t.UseBit(0)).To(BeTrue())

		t.SetUseBit(0, false)
		Expect(t.Install(0, "b")).To(Equal("a"))
		Expect(t.UseBit(0)).To(BeTrue())
		Expect(t.Page(0)).To(Equal("b"))
	})

	It("should hand out copies, not internal slices", func() {
		pages := t.Pages()
		bits := t.UseBits()

		pages[0] = "x"
		bits[0] = true

		Expect(t.Page(0)).To(Equal(NoPage))
		Expect(t.UseBit(0)).To(BeFalse())
	})
})
