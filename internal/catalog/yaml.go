package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/hordewave/internal/model"
)

// file is the on-disk layout of a catalog:
//
//	monsters:
//	  - type: slime
//	    template: prefabs/slime
//	    base: {hp: 100, damage: 10, speed: 2.0}
//	    spawn_interval: 2.0
//	    multipliers: {hp: 0.5, damage: 0.25, speed: 0.1, spawn_interval: 1.0}
type file struct {
	Monsters []model.MonsterDefinition `yaml:"monsters"`
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(f.Monsters)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes the catalog back to YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(file{Monsters: c.Definitions()})
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return data, nil
}
