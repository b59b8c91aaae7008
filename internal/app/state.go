// Package app wires configuration, samples, the collapse engine and the
// terminal renderer into runnable commands.
package app

// State represents the current watch mode state.
type State int

const (
	// StateRunning advances the engine on every tick.
	StateRunning State = iota
	// StatePaused waits for a single-step or resume key.
	StatePaused
	// StateDone means every cell is resolved.
	StateDone
	// StateFailed means the engine returned a fatal error.
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
