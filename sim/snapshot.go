package sim

// A Snapshot is a complete, independent copy of a machine's mutable state.
// It shares no slices with the live machine, so later machine mutations
// never leak into a stored snapshot. Page identifiers stay exact string
// tokens; no serialization round-trip is involved.
type Snapshot struct {
	Frames   []string
	UseBits  []bool
	Pointer  int
	RefIndex int
	Current  string
	State    MicroState
	Hits     int
	Faults   int
	Output   StepOutput
}

// Snapshot captures the machine's entire mutable state. The reference
// stream is immutable for the life of the machine and is not part of the
// snapshot.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Frames:   m.table.Pages(),
		UseBits:  m.table.UseBits(),
		Pointer:  m.pointer,
		RefIndex: m.refIndex,
		Current:  m.current,
		State:    m.state,
		Hits:     m.hits,
		Faults:   m.faults,
		Output:   m.output,
	}
}

// Restore overwrites the machine's mutable fields from a snapshot taken on
// this machine. The machine's identity and reference stream do not change.
func (m *Machine) Restore(s Snapshot) {
	copy(m.table.frames, s.Frames)
	copy(m.table.useBits, s.UseBits)
	m.pointer = s.Pointer
	m.refIndex = s.RefIndex
	m.current = s.Current
	m.state = s.State
	m.hits = s.Hits
	m.faults = s.Faults
	m.output = s.Output
}
