package testutil

import "github.com/udisondev/hordewave/internal/model"

// Fixtures содержит тестовые определения монстров, чтобы не дублировать их в тестах.
var Fixtures = struct {
	Slime model.MonsterDefinition
	Bat   model.MonsterDefinition
	Golem model.MonsterDefinition

	// NoTemplate has no instantiation payload and must not start a wave.
	NoTemplate model.MonsterDefinition
}{
	Slime: model.MonsterDefinition{
		Type:          "slime",
		Template:      "prefabs/slime",
		Base:          model.BaseStats{HP: 100, Damage: 10, Speed: 2},
		SpawnInterval: 2,
		Multipliers:   model.Multipliers{HP: 0.5, Damage: 0.25, Speed: 0.1, SpawnInterval: 1},
	},
	Bat: model.MonsterDefinition{
		Type:          "bat",
		Template:      "prefabs/bat",
		Base:          model.BaseStats{HP: 30, Damage: 4, Speed: 6},
		SpawnInterval: 1,
		Multipliers:   model.Multipliers{HP: 0.3, Damage: 0.2, Speed: 0.05, SpawnInterval: 0.5},
	},
	Golem: model.MonsterDefinition{
		Type:          "golem",
		Template:      "prefabs/golem",
		Base:          model.BaseStats{HP: 800, Damage: 40, Speed: 0.8},
		SpawnInterval: 8,
		Multipliers:   model.Multipliers{HP: 0.8, Damage: 0.4, Speed: 0, SpawnInterval: 0.2},
	},
	NoTemplate: model.MonsterDefinition{
		Type:          "ghost",
		Base:          model.BaseStats{HP: 10, Damage: 1, Speed: 1},
		SpawnInterval: 1,
	},
}

// Definitions returns the standard fixture catalog (slime, bat, golem).
func Definitions() []model.MonsterDefinition {
	return []model.MonsterDefinition{Fixtures.Slime, Fixtures.Bat, Fixtures.Golem}
}
