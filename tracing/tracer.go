// Package tracing collects micro-step traces from a running simulation.
// Tracers attach to a machine as step hooks; the machine stays unaware of
// who is observing it.
package tracing

import (
	"sync"

	"github.com/aryaman2603/os-clock-simulator/sim"
)

// A StepRecord describes one observable micro-step of a run.
type StepRecord struct {
	RunID    string
	Seq      int
	Kind     string // "step" or "stepback"
	State    string
	Message  string
	Category string
	Page     string
	Pointer  int
	RefIndex int
	Hits     int
	Faults   int
}

// recordFromMachine captures the machine's observable fields after a step.
func recordFromMachine(m *sim.Machine, runID string, seq int, kind string) StepRecord {
	out := m.Output()

	return StepRecord{
		RunID:    runID,
		Seq:      seq,
		Kind:     kind,
		State:    m.State().String(),
		Message:  out.Message,
		Category: string(out.Category),
		Page:     m.CurrentPage(),
		Pointer:  m.Pointer(),
		RefIndex: m.RefIndex(),
		Hits:     m.Hits(),
		Faults:   m.Faults(),
	}
}

// A StepCountTracer counts micro-steps by the micro-state they end in. It
// is cheap enough to stay attached for a whole run.
type StepCountTracer struct {
	lock       sync.Mutex
	stepCount  map[string]uint64
	totalSteps uint64
	stepBacks  uint64
}

// NewStepCountTracer creates a StepCountTracer.
func NewStepCountTracer() *StepCountTracer {
	return &StepCountTracer{
		stepCount: make(map[string]uint64),
	}
}

// Func implements sim.Hook.
func (t *StepCountTracer) Func(ctx sim.HookCtx) {
	m, ok := ctx.Domain.(*sim.Machine)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	switch ctx.Pos {
	case sim.HookPosAfterStep:
		t.totalSteps++
		t.stepCount[m.State().String()]++
	case sim.HookPosStepBack:
		t.stepBacks++
	}
}

// StepCount returns the number of micro-steps that ended in the named
// micro-state.
func (t *StepCountTracer) StepCount(stateName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stepCount[stateName]
}

// TotalSteps returns the number of forward micro-steps observed.
func (t *StepCountTracer) TotalSteps() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalSteps
}

// StepBacks returns the number of undos observed.
func (t *StepCountTracer) StepBacks() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stepBacks
}
