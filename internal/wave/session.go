package wave

import "github.com/udisondev/hordewave/internal/model"

// State is the scheduler state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Session is the active spawn loop. A snapshot is returned by
// Scheduler.Session; the live copy is owned by the scheduler.
type Session struct {
	ID          uint64
	MonsterType model.MonsterType
	Interval    float64 // armed cadence, seconds
	Remaining   float64 // countdown until next spawn, seconds
	Running     bool
	Spawned     int // commands emitted by this session
}
