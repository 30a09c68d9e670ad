package difficulty

import (
	"math"

	"github.com/udisondev/hordewave/internal/model"
)

// MinInterval is the hard floor for spawn intervals, in seconds.
const MinInterval = 0.1

// Interval returns the spawn interval for def at the given difficulty:
// SpawnInterval / (1 + mulSpawnInterval*difficulty), never below MinInterval.
func Interval(def model.MonsterDefinition, difficulty float64) float64 {
	p := difficulty
	if math.IsNaN(p) || p < 0 {
		p = 0
	}

	interval := def.SpawnInterval
	if def.Multipliers.SpawnInterval != 0 {
		interval /= 1 + def.Multipliers.SpawnInterval*p
	}

	// NaN also lands on the floor
	if !(interval >= MinInterval) {
		return MinInterval
	}
	return interval
}
