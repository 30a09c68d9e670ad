package wave

import "math/rand/v2"

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

// uniformPicker uses the global math/rand/v2 source.
type uniformPicker struct{}

func (uniformPicker) IntN(n int) int {
	return rand.IntN(n)
}

// UniformPicker returns the default unweighted picker.
func UniformPicker() Picker {
	return uniformPicker{}
}
