package sim

import "fmt"

// MicroState identifies where execution is within processing the current
// page reference.
type MicroState int

// The micro-states of the clock replacement machine. Exactly one reference
// is current at any moment between StateStart and the transition back to
// StateStart.
const (
	StateStart MicroState = iota
	StateCheckHit
	StateHit
	StateFaultStartSearch
	StateFaultCheckBit
	StateFaultSetBitZero
	StateFaultReplace
	StateDone
)

// String returns the name of the micro-state.
func (s MicroState) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateCheckHit:
		return "CheckHit"
	case StateHit:
		return "Hit"
	case StateFaultStartSearch:
		return "FaultStartSearch"
	case StateFaultCheckBit:
		return "FaultCheckBit"
	case StateFaultSetBitZero:
		return "FaultSetBitZero"
	case StateFaultReplace:
		return "FaultReplace"
	case StateDone:
		return "Done"
	}

	panic(fmt.Sprintf("invalid micro-state %d", int(s)))
}

// Category classifies a step output message.
type Category string

// The categories a step output message can carry.
const (
	CategoryInfo  Category = "info"
	CategoryHit   Category = "hit"
	CategoryFault Category = "fault"
	CategoryCheck Category = "check"
)

// ColorTag names the emphasis a frame highlight should use. The presentation
// layer owns the actual colors.
type ColorTag string

// The highlight tags a step output can carry.
const (
	ColorNone   ColorTag = ""
	ColorGreen  ColorTag = "green"
	ColorOrange ColorTag = "orange"
	ColorRed    ColorTag = "red"
)

// A StepOutput describes the observable result of one micro-step. It is
// overwritten by the next micro-step; accumulating a log is the caller's
// job.
type StepOutput struct {
	Message        string
	Category       Category
	HighlightFrame int // -1 when no frame is highlighted
	HighlightColor ColorTag
}

// A Machine executes the Clock (Second-Chance) page replacement algorithm
// one micro-step at a time. Each Step call advances exactly one transition,
// so every decision the algorithm makes is individually observable.
//
// The machine assumes its inputs are already validated. It performs no I/O
// and calling Step after the machine is done is a no-op.
type Machine struct {
	HookableBase

	table    *FrameTable
	pointer  int
	refs     []string
	refIndex int
	current  string
	state    MicroState

	hits   int
	faults int

	output StepOutput
}

// NewMachine creates a machine over numFrames physical frames that will walk
// through refs. numFrames must be at least 1 and refs must not be empty;
// ParseReferenceString and ValidateFrameCount reject bad input before a
// machine is built.
func NewMachine(numFrames int, refs []string) *Machine {
	m := &Machine{
		table: NewFrameTable(numFrames),
		refs:  refs,
		state: StateStart,
	}

	m.output = StepOutput{
		Message:        "Ready",
		Category:       CategoryInfo,
		HighlightFrame: -1,
	}

	return m
}

// Step advances the machine by exactly one micro-state transition and
// updates the step output.
func (m *Machine) Step() {
	ctx := HookCtx{
		Domain: m,
		Pos:    HookPosBeforeStep,
		Item:   m.state,
	}
	m.InvokeHook(ctx)

	switch m.state {
	case StateStart:
		m.stepStart()
	case StateCheckHit:
		m.stepCheckHit()
	case StateHit:
		m.stepHit()
	case StateFaultStartSearch:
		m.stepFaultStartSearch()
	case StateFaultCheckBit:
		m.stepFaultCheckBit()
	case StateFaultSetBitZero:
		m.stepFaultSetBitZero()
	case StateFaultReplace:
		m.stepFaultReplace()
	case StateDone:
		m.stepDone()
	}

	ctx.Pos = HookPosAfterStep
	ctx.Item = m.output
	m.InvokeHook(ctx)
}

func (m *Machine) stepStart() {
	if m.refIndex >= len(m.refs) {
		m.current = NoPage
		m.state = StateDone
		m.setOutput("Reference stream finished",
			CategoryInfo, -1, ColorNone)

		return
	}

	m.current = m.refs[m.refIndex]
	m.state = StateCheckHit
	m.setOutput(fmt.Sprintf("Accessing page %s", m.current),
		CategoryInfo, -1, ColorNone)
}

func (m *Machine) stepCheckHit() {
	i := m.table.FindPage(m.current)
	if i >= 0 {
		m.hits++
		m.table.SetUseBit(i, true)
		m.state = StateHit
		m.setOutput(
			fmt.Sprintf("Page %s is in frame %d, hit", m.current, i),
			CategoryHit, i, ColorGreen)

		return
	}

	m.faults++
	m.state = StateFaultStartSearch
	m.setOutput(
		fmt.Sprintf("Page %s is not resident, page fault", m.current),
		CategoryFault, -1, ColorNone)
}

// stepHit is a pass-through pause so that every hit stays visible as its own
// step before the next reference begins. The previous output is kept.
func (m *Machine) stepHit() {
	m.refIndex++
	m.state = StateStart
}

func (m *Machine) stepFaultStartSearch() {
	m.state = StateFaultCheckBit
	m.setOutput(
		fmt.Sprintf("Searching for a victim, hand at frame %d", m.pointer),
		CategoryCheck, m.pointer, ColorOrange)
}

func (m *Machine) stepFaultCheckBit() {
	if m.table.UseBit(m.pointer) {
		m.state = StateFaultSetBitZero
		m.setOutput(
			fmt.Sprintf("Frame %d use bit is 1, second chance", m.pointer),
			CategoryCheck, m.pointer, ColorOrange)

		return
	}

	m.state = StateFaultReplace
	m.setOutput(
		fmt.Sprintf("Frame %d use bit is 0, victim found", m.pointer),
		CategoryCheck, m.pointer, ColorOrange)
}

func (m *Machine) stepFaultSetBitZero() {
	cleared := m.pointer

	m.table.SetUseBit(cleared, false)
	m.pointer = (m.pointer + 1) % m.table.NumFrames()
	m.state = StateFaultCheckBit
	m.setOutput(
		fmt.Sprintf("Cleared use bit of frame %d, hand moves to frame %d",
			cleared, m.pointer),
		CategoryCheck, cleared, ColorOrange)
}

func (m *Machine) stepFaultReplace() {
	frame := m.pointer
	victim := m.table.Install(frame, m.current)

	m.pointer = (m.pointer + 1) % m.table.NumFrames()
	m.refIndex++
	m.state = StateStart

	if victim == NoPage {
		m.setOutput(
			fmt.Sprintf("Loaded page %s into empty frame %d",
				m.current, frame),
			CategoryFault, frame, ColorRed)

		return
	}

	m.setOutput(
		fmt.Sprintf("Evicted page %s, loaded page %s into frame %d",
			victim, m.current, frame),
		CategoryFault, frame, ColorRed)
}

func (m *Machine) stepDone() {
	m.setOutput("Simulation complete", CategoryInfo, -1, ColorNone)
}

func (m *Machine) setOutput(
	msg string,
	cat Category,
	frame int,
	color ColorTag,
) {
	m.output = StepOutput{
		Message:        msg,
		Category:       cat,
		HighlightFrame: frame,
		HighlightColor: color,
	}
}

// State returns the current micro-state.
func (m *Machine) State() MicroState {
	return m.state
}

// Done reports whether the reference stream is exhausted.
func (m *Machine) Done() bool {
	return m.state == StateDone
}

// Output returns the observable output of the most recent micro-step.
func (m *Machine) Output() StepOutput {
	return m.output
}

// NumFrames returns the number of physical frames.
func (m *Machine) NumFrames() int {
	return m.table.NumFrames()
}

// Pointer returns the clock hand position.
func (m *Machine) Pointer() int {
	return m.pointer
}

// RefIndex returns the cursor into the reference stream. It equals the
// stream length once the stream is exhausted.
func (m *Machine) RefIndex() int {
	return m.refIndex
}

// RefString returns a copy of the reference stream.
func (m *Machine) RefString() []string {
	refs := make([]string, len(m.refs))
	copy(refs, m.refs)

	return refs
}

// CurrentPage returns the page currently being processed, or NoPage outside
// a reference.
func (m *Machine) CurrentPage() string {
	return m.current
}

// Pages returns a copy of the frame occupant list.
func (m *Machine) Pages() []string {
	return m.table.Pages()
}

// UseBits returns a copy of the use bit list.
func (m *Machine) UseBits() []bool {
	return m.table.UseBits()
}

// Hits returns the number of page hits so far.
func (m *Machine) Hits() int {
	return m.hits
}

// Faults returns the number of page faults so far.
func (m *Machine) Faults() int {
	return m.faults
}

// HitRatio returns hits/(hits+faults), or 0 before any reference completes
// its lookup.
func (m *Machine) HitRatio() float64 {
	total := m.hits + m.faults
	if total == 0 {
		return 0
	}

	return float64(m.hits) / float64(total)
}
