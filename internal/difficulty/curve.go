// Package difficulty turns wave-clock progress into a difficulty scalar and
// derives scaled monster stats and spawn cadence from it.
package difficulty

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTuning is returned by Tuning.Validate.
var ErrInvalidTuning = errors.New("invalid difficulty tuning")

// Tuning holds curve weights.
type Tuning struct {
	TimeWeight      float64 `yaml:"time_weight"`       // per elapsed minute
	WaveWeight      float64 `yaml:"wave_weight"`       // per wave index
	GlobalExponent  float64 `yaml:"global_exponent"`   // <1 sub-linear, >1 super-linear
	SoftCapStrength float64 `yaml:"soft_cap_strength"` // 0 disables the cap
}

// DefaultTuning returns the stock curve weights.
func DefaultTuning() Tuning {
	return Tuning{
		TimeWeight:      1.0,
		WaveWeight:      0.75,
		GlobalExponent:  0.9,
		SoftCapStrength: 0.15,
	}
}

// Validate rejects negative or non-finite weights.
func (t Tuning) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"time_weight", t.TimeWeight},
		{"wave_weight", t.WaveWeight},
		{"global_exponent", t.GlobalExponent},
		{"soft_cap_strength", t.SoftCapStrength},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidTuning, f.name, f.v)
		}
	}
	if t.GlobalExponent == 0 {
		return fmt.Errorf("%w: global_exponent must be positive", ErrInvalidTuning)
	}
	return nil
}

// Curve maps (elapsed time, wave index) to a difficulty value.
// Curve is stateless; callers cache the result if they need to.
type Curve struct {
	tuning Tuning
}

// NewCurve creates a curve with the given tuning.
func NewCurve(tuning Tuning) *Curve {
	return &Curve{tuning: tuning}
}

// Tuning returns curve weights.
func (c *Curve) Tuning() Tuning {
	return c.tuning
}

// Measure returns difficulty for the given clock state. Result is >= 0 and
// never exceeds Ceiling; non-finite input saturates instead of yielding NaN.
//
//	p = max(0, minutes*timeWeight + waves*waveWeight)
//	p = p^exponent            (skipped when exponent == 1)
//	p = p / (1 + softCap*p)   (skipped when softCap == 0)
func (c *Curve) Measure(elapsedSeconds float64, waveIndex int) float64 {
	minutes := math.Max(0, elapsedSeconds) / 60
	waves := float64(max(0, waveIndex))

	p := minutes*c.tuning.TimeWeight + waves*c.tuning.WaveWeight
	if math.IsNaN(p) || p < 0 {
		p = 0
	}

	if c.tuning.GlobalExponent != 1 {
		p = math.Pow(p, c.tuning.GlobalExponent)
	}

	if c.tuning.SoftCapStrength > 0 {
		// Inf/(1+s*Inf) is NaN; the limit is the ceiling
		if math.IsInf(p, 1) {
			return c.Ceiling()
		}
		p = p / (1 + c.tuning.SoftCapStrength*p)
	}

	return p
}

// Ceiling returns the asymptotic upper bound of Measure
// (+Inf when the soft cap is disabled).
func (c *Curve) Ceiling() float64 {
	if c.tuning.SoftCapStrength <= 0 {
		return math.Inf(1)
	}
	return 1 / c.tuning.SoftCapStrength
}
