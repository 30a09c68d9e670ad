package wave

import (
	"github.com/udisondev/hordewave/internal/event"
	"github.com/udisondev/hordewave/internal/model"
)

// Events bundles the channels a Scheduler publishes to. It is created by the
// owner of the scheduler and passed in explicitly; there is no global bus.
type Events struct {
	Spawned    *event.Channel[model.SpawnCommand]
	Conditions *event.Channel[Condition]
	State      *event.Value[State]
	Wave       *event.Value[int]
	Monster    *event.Value[model.MonsterType] // currently selected monster
}

// NewEvents creates an empty event bundle.
func NewEvents() *Events {
	return &Events{
		Spawned:    event.NewChannel[model.SpawnCommand]("wave.spawned"),
		Conditions: event.NewChannel[Condition]("wave.conditions"),
		State:      event.NewValue("wave.state", StateIdle),
		Wave:       event.NewValue("wave.index", 0),
		Monster:    event.NewValue[model.MonsterType]("wave.monster", ""),
	}
}
