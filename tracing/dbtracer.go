package tracing

import (
	"sync"

	"github.com/rs/xid"

	"github.com/aryaman2603/os-clock-simulator/datarecording"
	"github.com/aryaman2603/os-clock-simulator/sim"
)

// stepTableName is the table all micro-step records go into.
const stepTableName = "micro_steps"

// A DBTracer records every micro-step of a run into a DataRecorder. It
// attaches to a machine as a step hook. Undo restores are recorded as
// "stepback" rows so a trace replays exactly what the user saw.
type DBTracer struct {
	lock     sync.Mutex
	runID    string
	recorder datarecording.DataRecorder
	seq      int
}

// NewDBTracer creates a DBTracer writing into recorder. The micro-step
// table is created immediately.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		runID:    xid.New().String(),
		recorder: recorder,
	}

	recorder.CreateTable(stepTableName, StepRecord{})

	return t
}

// RunID returns the identifier stamped on every record of this tracer.
func (t *DBTracer) RunID() string {
	return t.runID
}

// Func implements sim.Hook.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	m, ok := ctx.Domain.(*sim.Machine)
	if !ok {
		return
	}

	var kind string
	switch ctx.Pos {
	case sim.HookPosAfterStep:
		kind = "step"
	case sim.HookPosStepBack:
		kind = "stepback"
	default:
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.seq++
	t.recorder.InsertData(stepTableName,
		recordFromMachine(m, t.runID, t.seq, kind))
}

// Flush forces buffered records into the database.
func (t *DBTracer) Flush() {
	t.recorder.Flush()
}
