package model

import "math"

// MaxStat is the largest integer stat a monster can carry. Scaled and
// injected HP/damage saturate here instead of wrapping around.
const MaxStat = math.MaxInt32

// ClampStat saturates an integer stat into [0, MaxStat].
func ClampStat(v int) int32 {
	switch {
	case v < 0:
		return 0
	case v > MaxStat:
		return MaxStat
	default:
		return int32(v)
	}
}

// ScaledStats are the combat stats of a monster kind at a given difficulty.
type ScaledStats struct {
	Type   MonsterType `json:"type"`
	HP     int         `json:"hp"`
	Damage int         `json:"damage"`
	Speed  float64     `json:"speed"`
}
