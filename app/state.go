package app

import (
	"go.uber.org/atomic"
)

// State of a single diagnose request
type State int32

const (
	StateIdle State = iota
	StateImagePersisted
	StateOrchestratorInvoked
	StateResultReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateImagePersisted:
		return "image_persisted"
	case StateOrchestratorInvoked:
		return "orchestrator_invoked"
	case StateResultReady:
		return "result_ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no transition may leave s
func (s State) Terminal() bool {
	return s == StateResultReady || s == StateFailed
}

type request struct {
	id    string
	state *atomic.Int32
	hook  func(id string, s State)
}

func newRequest(id string, hook func(string, State)) *request {
	return &request{id: id, state: atomic.NewInt32(int32(StateIdle)), hook: hook}
}

func (r *request) State() State {
	return State(r.state.Load())
}

// transition moves to next unless the request already reached a terminal state
func (r *request) transition(next State) bool {
	for {
		cur := r.State()
		if cur.Terminal() {
			return false
		}
		if r.state.CompareAndSwap(int32(cur), int32(next)) {
			if r.hook != nil {
				r.hook(r.id, next)
			}
			return true
		}
	}
}
