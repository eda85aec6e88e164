// Package history implements the linear undo stack of the simulator. The
// driver pushes a machine snapshot before each forward micro-step and pops
// one to step backward. There is no redo: a forward step taken after an
// undo simply proceeds from the restored point.
package history

import "github.com/aryaman2603/os-clock-simulator/sim"

// A Stack stores machine snapshots in push order.
type Stack struct {
	snapshots []sim.Snapshot
}

// NewStack creates an empty history stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push records a snapshot taken immediately before a forward step.
func (s *Stack) Push(snap sim.Snapshot) {
	s.snapshots = append(s.snapshots, snap)
}

// Pop removes and returns the most recent snapshot. ok is false when the
// stack is empty, in which case there is nothing to restore.
func (s *Stack) Pop() (snap sim.Snapshot, ok bool) {
	if len(s.snapshots) == 0 {
		return sim.Snapshot{}, false
	}

	snap = s.snapshots[len(s.snapshots)-1]
	s.snapshots = s.snapshots[:len(s.snapshots)-1]

	return snap, true
}

// Len returns the number of stored snapshots. It equals the number of
// forward steps taken since the last reset minus the number of undos.
func (s *Stack) Len() int {
	return len(s.snapshots)
}

// Clear discards all snapshots. A new simulation run starts with an empty
// history.
func (s *Stack) Clear() {
	s.snapshots = nil
}
