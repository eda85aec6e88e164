// Package driver owns the controller that advances a simulation. It is the
// only writer of the machine: every forward step, undo, play tick, and
// reset goes through one Driver, which serializes them on a single lock.
package driver

import (
	"log"
	"sync"
	"time"

	"github.com/aryaman2603/os-clock-simulator/datarecording"
	"github.com/aryaman2603/os-clock-simulator/history"
	"github.com/aryaman2603/os-clock-simulator/sim"
	"github.com/aryaman2603/os-clock-simulator/tracing"
)

// Stats is the statistics readout of a run.
type Stats struct {
	Hits       int
	Faults     int
	HitRatio   float64
	References int
	MicroSteps int
}

// A View is a consistent copy of everything the presentation layer needs
// after a step or an undo.
type View struct {
	Snapshot  sim.Snapshot
	StateName string
	Refs      []string
	NumFrames int

	Playing      bool
	CanStepBack  bool
	HistoryDepth int
}

// A Driver advances a machine step by step, keeps the undo history, and
// runs automatic play on a wall-clock ticker.
type Driver struct {
	lock sync.Mutex

	machine *sim.Machine
	history *history.Stack

	interval time.Duration
	playing  bool
	stop     chan struct{}

	logger      *log.Logger
	recorder    datarecording.DataRecorder
	stepCounter *tracing.StepCountTracer
}

// StepCounter returns the attached step-count tracer, or nil when the
// driver was built without one.
func (d *Driver) StepCounter() *tracing.StepCountTracer {
	return d.stepCounter
}

// Step advances the machine by one micro-step. A snapshot is pushed before
// the step executes, so the step can always be undone. Steps taken after
// completion only re-emit the final message and leave history untouched.
func (d *Driver) Step() sim.StepOutput {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.stepLocked()
}

func (d *Driver) stepLocked() sim.StepOutput {
	if !d.machine.Done() {
		d.history.Push(d.machine.Snapshot())
	}

	d.machine.Step()

	out := d.machine.Output()
	if d.logger != nil {
		d.logger.Printf("[%-5s] %s", out.Category, out.Message)
	}

	return out
}

// StepBack undoes the most recent forward step by restoring the snapshot
// taken before it. It reports false, changing nothing, when automatic play
// is active or when there is no history.
func (d *Driver) StepBack() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.playing {
		return false
	}

	snap, ok := d.history.Pop()
	if !ok {
		return false
	}

	d.machine.Restore(snap)
	d.machine.InvokeHook(sim.HookCtx{
		Domain: d.machine,
		Pos:    sim.HookPosStepBack,
	})

	if d.logger != nil {
		out := d.machine.Output()
		d.logger.Printf("[back ] %s", out.Message)
	}

	return true
}

// Play starts automatic stepping at the driver's interval. It does nothing
// when play is already active or the machine is done.
func (d *Driver) Play() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.playing || d.machine.Done() {
		return
	}

	d.playing = true
	d.stop = make(chan struct{})

	go d.playLoop(d.stop, d.interval)
}

func (d *Driver) playLoop(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !d.playTick(stop) {
				return
			}
		}
	}
}

// playTick performs one automatic step. It returns false once the loop
// should exit, either because play was paused while the tick waited for the
// lock or because the machine finished.
func (d *Driver) playTick(stop chan struct{}) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	select {
	case <-stop:
		return false
	default:
	}

	if d.machine.Done() {
		d.playing = false
		return false
	}

	d.stepLocked()

	return true
}

// Pause stops automatic stepping. The current micro-state is left as is.
func (d *Driver) Pause() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.playing {
		return
	}

	close(d.stop)
	d.playing = false
}

// Playing reports whether automatic stepping is active.
func (d *Driver) Playing() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.playing
}

// CanStepBack reports whether an undo would succeed right now. The UI uses
// this to enable or disable its back control.
func (d *Driver) CanStepBack() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return !d.playing && d.history.Len() > 0
}

// Reset discards the current machine and history and starts a fresh run
// over the given inputs. The inputs must already be validated. Hooks
// attached to the old machine carry over to the new one.
func (d *Driver) Reset(numFrames int, refs []string) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.playing {
		close(d.stop)
		d.playing = false
	}

	hooks := d.machine.Hooks

	d.machine = sim.NewMachine(numFrames, refs)
	d.machine.Hooks = hooks
	d.history.Clear()
}

// RunToCompletion steps the machine until it is done, returning the number
// of micro-steps taken. Intended for headless batch runs.
func (d *Driver) RunToCompletion() int {
	d.lock.Lock()
	defer d.lock.Unlock()

	count := 0
	for !d.machine.Done() {
		d.stepLocked()
		count++
	}

	return count
}

// Stats returns the statistics readout of the current run. MicroSteps is
// net of undos, matching the history depth.
func (d *Driver) Stats() Stats {
	d.lock.Lock()
	defer d.lock.Unlock()

	return Stats{
		Hits:       d.machine.Hits(),
		Faults:     d.machine.Faults(),
		HitRatio:   d.machine.HitRatio(),
		References: d.machine.RefIndex(),
		MicroSteps: d.history.Len(),
	}
}

// View returns a consistent copy of the observable state for rendering.
func (d *Driver) View() View {
	d.lock.Lock()
	defer d.lock.Unlock()

	return View{
		Snapshot:     d.machine.Snapshot(),
		StateName:    d.machine.State().String(),
		Refs:         d.machine.RefString(),
		NumFrames:    d.machine.NumFrames(),
		Playing:      d.playing,
		CanStepBack:  !d.playing && d.history.Len() > 0,
		HistoryDepth: d.history.Len(),
	}
}

// Done reports whether the machine finished its reference stream.
func (d *Driver) Done() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.machine.Done()
}

// Interval returns the automatic play interval.
func (d *Driver) Interval() time.Duration {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.interval
}

// SetInterval changes the automatic play interval. A running play loop
// keeps its old interval until the next Play.
func (d *Driver) SetInterval(interval time.Duration) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.interval = interval
}

// AcceptHook attaches a hook to the underlying machine.
func (d *Driver) AcceptHook(hook sim.Hook) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.machine.AcceptHook(hook)
}

// Terminate stops play and flushes any attached recorder.
func (d *Driver) Terminate() {
	d.Pause()

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.recorder != nil {
		d.recorder.Flush()
	}
}
