package model

// Position is a point in world space where a monster materialises.
// Value type, passed by value (immutable).
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// NewPosition creates a Position with the given coordinates.
func NewPosition(x, y, z float64) Position {
	return Position{X: x, Y: y, Z: z}
}

// WithCoordinates returns a new Position with updated coordinates (immutable pattern).
func (p Position) WithCoordinates(x, y, z float64) Position {
	p.X = x
	p.Y = y
	p.Z = z
	return p
}

// DistanceSquared returns the squared distance to another point (no sqrt).
func (p Position) DistanceSquared(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// IsZero reports whether the position is the origin.
func (p Position) IsZero() bool {
	return p == Position{}
}
