// Package transfer implements the two-phase handoff of tile buffers between
// the capture stage (render thread) and the blit stage (UI thread).
//
// The state value is the only synchronisation: a stage touches the buffers
// only while the machine is in its phase, and hands them over with a single
// atomic store. The store/load pair orders every buffer write made before
// the handoff with every read made after it.
package transfer

import "sync/atomic"

type State uint32

const (
	CaptureReady State = iota
	BlitReady
)

func (s State) String() string {
	switch s {
	case CaptureReady:
		return "capture-ready"
	case BlitReady:
		return "blit-ready"
	default:
		return "unknown"
	}
}

// Next is the state that follows s.
func (s State) Next() State {
	if s == CaptureReady {
		return BlitReady
	}
	return CaptureReady
}

// Machine holds the transfer state. The zero value is CaptureReady.
type Machine struct {
	state atomic.Uint32
}

func (m *Machine) State() State { return State(m.state.Load()) }

// Ready reports whether the stage owning phase s may touch the buffers.
func (m *Machine) Ready(s State) bool { return m.State() == s }

// Hand passes ownership from the stage owning phase from to the other one.
// It reports false and leaves the state alone when from is not current.
func (m *Machine) Hand(from State) bool {
	return m.state.CompareAndSwap(uint32(from), uint32(from.Next()))
}
