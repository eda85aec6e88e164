package driver

import (
	"log"
	"time"

	"github.com/rs/xid"

	"github.com/aryaman2603/os-clock-simulator/datarecording"
	"github.com/aryaman2603/os-clock-simulator/history"
	"github.com/aryaman2603/os-clock-simulator/sim"
	"github.com/aryaman2603/os-clock-simulator/tracing"
)

// Builder can be used to build a driver.
type Builder struct {
	numFrames int
	refs      []string
	interval  time.Duration
	logger    *log.Logger

	recordOn       bool
	outputFileName string
	stepCounterOn  bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numFrames: 3,
		interval:  time.Second,
	}
}

// WithFrameCount sets the number of physical frames.
func (b Builder) WithFrameCount(numFrames int) Builder {
	b.numFrames = numFrames
	return b
}

// WithRefString sets the reference stream the machine will walk.
func (b Builder) WithRefString(refs []string) Builder {
	b.refs = refs
	return b
}

// WithStepInterval sets the automatic play interval.
func (b Builder) WithStepInterval(interval time.Duration) Builder {
	b.interval = interval
	return b
}

// WithLogger sets a logger that receives one line per micro-step.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithRecording writes every micro-step into a SQLite trace database.
func (b Builder) WithRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the trace
// database.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithStepCounter attaches a step-count tracer to the machine.
func (b Builder) WithStepCounter() Builder {
	b.stepCounterOn = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if err := sim.ValidateFrameCount(b.numFrames); err != nil {
		panic(err)
	}

	if len(b.refs) == 0 {
		panic("a driver needs a non-empty reference stream")
	}

	if b.interval <= 0 {
		panic("step interval must be positive")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the driver. Recording and step counting, when enabled, are
// attached to the machine as hooks and survive resets.
func (b Builder) Build() *Driver {
	b.parametersMustBeValid()

	d := &Driver{
		machine:  sim.NewMachine(b.numFrames, b.refs),
		history:  history.NewStack(),
		interval: b.interval,
		logger:   b.logger,
	}

	if b.recordOn {
		path := b.outputFileName
		if path == "" {
			path = "clocksim_" + xid.New().String()
		}

		d.recorder = datarecording.New(path)
		d.machine.AcceptHook(tracing.NewDBTracer(d.recorder))
	}

	if b.stepCounterOn {
		d.stepCounter = tracing.NewStepCountTracer()
		d.machine.AcceptHook(d.stepCounter)
	}

	return d
}
