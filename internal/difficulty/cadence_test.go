package difficulty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/hordewave/internal/model"
)

func cadenceDef(base, mul float64) model.MonsterDefinition {
	return model.MonsterDefinition{
		Type:          "c",
		SpawnInterval: base,
		Multipliers:   model.Multipliers{SpawnInterval: mul},
	}
}

func TestInterval(t *testing.T) {
	tests := []struct {
		name string
		def  model.MonsterDefinition
		d    float64
		want float64
	}{
		{"unclamped", cadenceDef(2.0, 1.0), 3, 0.5},
		{"clamped to floor", cadenceDef(0.05, 10), 100, MinInterval},
		{"zero difficulty is base", cadenceDef(3, 5), 0, 3},
		{"negative difficulty clamped", cadenceDef(3, 5), -2, 3},
		{"zero multiplier ignores difficulty", cadenceDef(1.5, 0), 50, 1.5},
		{"base below floor", cadenceDef(0.01, 0), 0, MinInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Interval(tt.def, tt.d), 1e-12)
		})
	}
}

func TestInterval_FloorAndMonotonic(t *testing.T) {
	for _, mul := range []float64{0, 0.1, 1, 10, 250} {
		for _, base := range []float64{0.01, 0.5, 2, 30} {
			def := cadenceDef(base, mul)
			prev := Interval(def, 0)
			for d := 0.0; d <= 500; d += 0.75 {
				got := Interval(def, d)
				assert.GreaterOrEqual(t, got, MinInterval)
				assert.LessOrEqual(t, got, prev, "mul=%v base=%v d=%v", mul, base, d)
				prev = got
			}
		}
	}
}

func TestInterval_NonFiniteDifficulty(t *testing.T) {
	assert.Equal(t, MinInterval, Interval(cadenceDef(2, 1), math.Inf(1)))
	assert.Equal(t, 2.0, Interval(cadenceDef(2, 0), math.Inf(1)))
	assert.Equal(t, 2.0, Interval(cadenceDef(2, 1), math.NaN()))
}
