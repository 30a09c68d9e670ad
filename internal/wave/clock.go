package wave

import "math"

// minWaveDuration disables wave progression for degenerate durations.
const minWaveDuration = 0.1

// Clock is the wave clock: elapsed play time and the wave index derived from it.
type Clock struct {
	ElapsedSeconds float64
	WaveIndex      int
}

// advance moves the clock forward by delta seconds (negative treated as 0) and
// recomputes the wave index. Returns true if the wave index changed.
func (c *Clock) advance(delta, waveDuration float64) bool {
	if delta > 0 {
		c.ElapsedSeconds += delta
	}

	if waveDuration <= minWaveDuration {
		return false
	}

	next := int(math.Floor(c.ElapsedSeconds / waveDuration))
	if next <= c.WaveIndex {
		return false
	}
	c.WaveIndex = next
	return true
}
