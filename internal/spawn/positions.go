package spawn

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/udisondev/hordewave/internal/model"
)

// PositionPolicy selects which spawn point is used next.
type PositionPolicy string

const (
	PolicyCycle    PositionPolicy = "cycle"    // round-robin over points
	PolicyRandom   PositionPolicy = "random"   // uniform random point
	PolicyExternal PositionPolicy = "external" // index set from outside via SetNextIndex
)

// ParsePositionPolicy parses a policy name. Empty string means PolicyCycle.
func ParsePositionPolicy(s string) (PositionPolicy, error) {
	switch PositionPolicy(s) {
	case "", PolicyCycle:
		return PolicyCycle, nil
	case PolicyRandom, PolicyExternal:
		return PositionPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown position policy %q", s)
	}
}

// Points is a position provider over a fixed list of spawn points.
// Points never validates positions; an empty list logs an error and yields
// the zero position.
type Points struct {
	mu        sync.Mutex
	policy    PositionPolicy
	points    []model.Position
	cycleIdx  int
	externIdx int
	rnd       func(n int) int
}

// NewPoints creates a provider with the given policy and points.
func NewPoints(policy PositionPolicy, points []model.Position) *Points {
	p := &Points{
		policy: policy,
		rnd:    rand.IntN,
	}
	p.SetPoints(points)
	return p
}

// SetPoints replaces the point list and resets the cycle.
func (p *Points) SetPoints(points []model.Position) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.points = append([]model.Position(nil), points...)
	p.cycleIdx = 0
}

// SetNextIndex sets the point used next under PolicyExternal.
// Out-of-range indices are clamped.
func (p *Points) SetNextIndex(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.externIdx = idx
}

// Len returns number of points.
func (p *Points) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.points)
}

// Next implements wave.PositionProvider.
func (p *Points) Next() model.Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.points) == 0 {
		slog.Error("cannot pick spawn position: no spawn points configured")
		return model.Position{}
	}

	var idx int
	switch p.policy {
	case PolicyRandom:
		idx = p.rnd(len(p.points))
	case PolicyExternal:
		idx = min(max(p.externIdx, 0), len(p.points)-1)
	default:
		idx = p.cycleIdx
		p.cycleIdx = (p.cycleIdx + 1) % len(p.points)
	}

	return p.points[idx]
}
