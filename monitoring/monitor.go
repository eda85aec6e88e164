// Package monitoring turns a simulation into a web server so the clock
// algorithm can be watched and controlled from a browser. The core never
// calls into this package; the monitor only reads driver state after steps.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/aryaman2603/os-clock-simulator/driver"
	"github.com/aryaman2603/os-clock-simulator/monitoring/web"
	"github.com/aryaman2603/os-clock-simulator/sim"
)

// Monitor wraps a driver with an HTTP API and the embedded visualizer
// page.
type Monitor struct {
	driver     *driver.Driver
	portNumber int
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterDriver registers the driver that runs the simulation.
func (m *Monitor) RegisterDriver(d *driver.Driver) {
	m.driver = d
}

// StartServer starts the monitor as a web server and returns the URL it
// serves on.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/state", m.state)
	r.HandleFunc("/api/step", m.step)
	r.HandleFunc("/api/stepback", m.stepBack)
	r.HandleFunc("/api/play", m.play)
	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/reset", m.reset)
	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/machine", m.machineDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Visualizing simulation with %s\n", url)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()

	return url
}

type stateRsp struct {
	Frames         []string `json:"frames"`
	UseBits        []bool   `json:"use_bits"`
	Pointer        int      `json:"pointer"`
	Refs           []string `json:"refs"`
	RefIndex       int      `json:"ref_index"`
	CurrentPage    string   `json:"current_page"`
	State          string   `json:"state"`
	Message        string   `json:"message"`
	Category       string   `json:"category"`
	HighlightFrame int      `json:"highlight_frame"`
	HighlightColor string   `json:"highlight_color"`
	Hits           int      `json:"hits"`
	Faults         int      `json:"faults"`
	HitRatio       float64  `json:"hit_ratio"`
	Playing        bool     `json:"playing"`
	CanStepBack    bool     `json:"can_step_back"`
	Done           bool     `json:"done"`
}

func viewToRsp(v driver.View) stateRsp {
	snap := v.Snapshot

	ratio := 0.0
	if snap.Hits+snap.Faults > 0 {
		ratio = float64(snap.Hits) / float64(snap.Hits+snap.Faults)
	}

	return stateRsp{
		Frames:         snap.Frames,
		UseBits:        snap.UseBits,
		Pointer:        snap.Pointer,
		Refs:           v.Refs,
		RefIndex:       snap.RefIndex,
		CurrentPage:    snap.Current,
		State:          v.StateName,
		Message:        snap.Output.Message,
		Category:       string(snap.Output.Category),
		HighlightFrame: snap.Output.HighlightFrame,
		HighlightColor: string(snap.Output.HighlightColor),
		Hits:           snap.Hits,
		Faults:         snap.Faults,
		HitRatio:       ratio,
		Playing:        v.Playing,
		CanStepBack:    v.CanStepBack,
		Done:           snap.State == sim.StateDone,
	}
}

func (m *Monitor) writeView(w http.ResponseWriter) {
	rsp := viewToRsp(m.driver.View())

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	m.writeView(w)
}

func (m *Monitor) step(w http.ResponseWriter, _ *http.Request) {
	m.driver.Step()
	m.writeView(w)
}

func (m *Monitor) stepBack(w http.ResponseWriter, _ *http.Request) {
	if !m.driver.StepBack() {
		w.WriteHeader(http.StatusConflict)
	}

	m.writeView(w)
}

func (m *Monitor) play(w http.ResponseWriter, _ *http.Request) {
	m.driver.Play()
	m.writeView(w)
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.driver.Pause()
	m.writeView(w)
}

func (m *Monitor) reset(w http.ResponseWriter, r *http.Request) {
	numFrames, refs, interval, err := resetParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	if interval > 0 {
		m.driver.SetInterval(interval)
	}

	m.driver.Reset(numFrames, refs)
	m.writeView(w)
}

func resetParams(r *http.Request) (
	numFrames int,
	refs []string,
	interval time.Duration,
	err error,
) {
	framesStr := r.URL.Query().Get("frames")
	numFrames, err = strconv.Atoi(framesStr)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("invalid frame count %q", framesStr)
	}

	if err = sim.ValidateFrameCount(numFrames); err != nil {
		return 0, nil, 0, err
	}

	refs, err = sim.ParseReferenceString(r.URL.Query().Get("refs"))
	if err != nil {
		return 0, nil, 0, err
	}

	intervalStr := r.URL.Query().Get("interval_ms")
	if intervalStr != "" {
		ms, convErr := strconv.Atoi(intervalStr)
		if convErr != nil || ms < 1 {
			return 0, nil, 0,
				fmt.Errorf("invalid interval %q", intervalStr)
		}

		interval = time.Duration(ms) * time.Millisecond
	}

	return numFrames, refs, interval, nil
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	stats := m.driver.Stats()

	bytes, err := json.Marshal(stats)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) machineDetails(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.driver.View())
	serializer.SetMaxDepth(3)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
