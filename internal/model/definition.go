package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDefinition is returned by MonsterDefinition.Validate.
var ErrInvalidDefinition = errors.New("invalid monster definition")

// MonsterType identifies a monster kind in the catalog (e.g. "slime", "orc").
type MonsterType string

// String implements fmt.Stringer.
func (t MonsterType) String() string {
	return string(t)
}

// BaseStats holds unscaled combat stats of a monster kind.
type BaseStats struct {
	HP     int     `yaml:"hp" json:"hp"`
	Damage int     `yaml:"damage" json:"damage"`
	Speed  float64 `yaml:"speed" json:"speed"`
}

// Multipliers are per-stat difficulty coefficients.
// A stat grows as base * (1 + multiplier * difficulty).
type Multipliers struct {
	HP            float64 `yaml:"hp" json:"hp"`
	Damage        float64 `yaml:"damage" json:"damage"`
	Speed         float64 `yaml:"speed" json:"speed"`
	SpawnInterval float64 `yaml:"spawn_interval" json:"spawn_interval"`
}

// MonsterDefinition is an immutable catalog entry.
type MonsterDefinition struct {
	Type MonsterType `yaml:"type" json:"type"`

	// Template is the instantiation payload handed to the executor
	// (prefab / scene key). Empty means the monster cannot be spawned.
	Template string `yaml:"template" json:"template"`

	Base          BaseStats   `yaml:"base" json:"base"`
	SpawnInterval float64     `yaml:"spawn_interval" json:"spawn_interval"` // seconds
	Multipliers   Multipliers `yaml:"multipliers" json:"multipliers"`
}

// HasTemplate reports whether the definition carries an instantiation payload.
func (d MonsterDefinition) HasTemplate() bool {
	return d.Template != ""
}

// Unscaled returns base stats as ScaledStats (difficulty 0).
func (d MonsterDefinition) Unscaled() ScaledStats {
	return ScaledStats{
		Type:   d.Type,
		HP:     d.Base.HP,
		Damage: d.Base.Damage,
		Speed:  d.Base.Speed,
	}
}

// Validate checks that the definition can be scaled and scheduled.
func (d MonsterDefinition) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("%w: empty monster type", ErrInvalidDefinition)
	}
	if d.Base.HP < 0 || d.Base.Damage < 0 || d.Base.Speed < 0 || math.IsNaN(d.Base.Speed) {
		return fmt.Errorf("%w: %s has negative base stats", ErrInvalidDefinition, d.Type)
	}
	if d.Base.HP > MaxStat || d.Base.Damage > MaxStat {
		return fmt.Errorf("%w: %s base stats exceed %d", ErrInvalidDefinition, d.Type, MaxStat)
	}
	if !(d.SpawnInterval > 0) || math.IsInf(d.SpawnInterval, 0) {
		return fmt.Errorf("%w: %s spawn interval %v must be positive", ErrInvalidDefinition, d.Type, d.SpawnInterval)
	}
	m := d.Multipliers
	for _, v := range []float64{m.HP, m.Damage, m.Speed, m.SpawnInterval} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s has non-finite multiplier", ErrInvalidDefinition, d.Type)
		}
	}
	return nil
}
