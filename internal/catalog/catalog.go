// Package catalog holds the read-only set of monster definitions.
package catalog

import (
	"errors"
	"fmt"

	"github.com/udisondev/hordewave/internal/model"
)

// ErrDuplicateType is returned when two definitions share a monster type.
var ErrDuplicateType = errors.New("duplicate monster type")

// Provider exposes an ordered, non-mutating list of monster definitions.
// An empty result means "no catalog".
type Provider interface {
	Definitions() []model.MonsterDefinition
}

// Catalog is an immutable ordered set of monster definitions, one per type.
type Catalog struct {
	defs   []model.MonsterDefinition
	byType map[model.MonsterType]int
}

// New validates defs and builds a catalog. The input slice is copied.
func New(defs []model.MonsterDefinition) (*Catalog, error) {
	c := &Catalog{
		defs:   make([]model.MonsterDefinition, 0, len(defs)),
		byType: make(map[model.MonsterType]int, len(defs)),
	}

	for i, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, ok := c.byType[def.Type]; ok {
			return nil, fmt.Errorf("catalog entry %d: %w: %s", i, ErrDuplicateType, def.Type)
		}
		c.byType[def.Type] = len(c.defs)
		c.defs = append(c.defs, def)
	}

	return c, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(defs []model.MonsterDefinition) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Definitions returns a copy of all definitions in catalog order.
// Nil catalog yields nil.
func (c *Catalog) Definitions() []model.MonsterDefinition {
	if c == nil || len(c.defs) == 0 {
		return nil
	}
	out := make([]model.MonsterDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns definition by type.
func (c *Catalog) Lookup(t model.MonsterType) (model.MonsterDefinition, bool) {
	if c == nil {
		return model.MonsterDefinition{}, false
	}
	idx, ok := c.byType[t]
	if !ok {
		return model.MonsterDefinition{}, false
	}
	return c.defs[idx], true
}

// Len returns number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// Types returns monster types in catalog order.
func (c *Catalog) Types() []model.MonsterType {
	if c == nil {
		return nil
	}
	types := make([]model.MonsterType, len(c.defs))
	for i, d := range c.defs {
		types[i] = d.Type
	}
	return types
}
