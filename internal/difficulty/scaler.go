package difficulty

import (
	"math"

	"github.com/udisondev/hordewave/internal/model"
)

// ScaleAll computes scaled stats for every catalog entry.
// Returns nil for an empty catalog ("no catalog", not an error).
// Later entries win if the same type appears twice.
func ScaleAll(difficulty float64, defs []model.MonsterDefinition) map[model.MonsterType]model.ScaledStats {
	if len(defs) == 0 {
		return nil
	}

	result := make(map[model.MonsterType]model.ScaledStats, len(defs))
	for i := range defs {
		result[defs[i].Type] = ScaleOne(defs[i], difficulty)
	}
	return result
}

// ScaleOne scales a single definition. Difficulty is clamped to >= 0.
// Integer stats use round-half-to-even.
func ScaleOne(def model.MonsterDefinition, difficulty float64) model.ScaledStats {
	p := difficulty
	if math.IsNaN(p) || p < 0 {
		p = 0
	}

	return model.ScaledStats{
		Type:   def.Type,
		HP:     roundStat(grow(float64(def.Base.HP), def.Multipliers.HP, p)),
		Damage: roundStat(grow(float64(def.Base.Damage), def.Multipliers.Damage, p)),
		Speed:  grow(def.Base.Speed, def.Multipliers.Speed, p),
	}
}

// grow returns base * (1 + mul*p). A zero base or multiplier keeps base,
// so an infinite p cannot turn it into NaN.
func grow(base, mul, p float64) float64 {
	if base == 0 || mul == 0 {
		return base
	}
	return base * (1 + mul*p)
}

// roundStat rounds half-to-even and saturates into [0, model.MaxStat].
func roundStat(v float64) int {
	r := math.RoundToEven(v)
	switch {
	case math.IsNaN(r) || r <= 0:
		return 0
	case r >= model.MaxStat:
		return model.MaxStat
	default:
		return int(r)
	}
}
