package model

import (
	"math"
	"sync/atomic"
)

// Monster is a live monster instance created by the spawn executor.
// Current stats are injected once via Init right after creation;
// HP then changes through ApplyDamage/SetCurrentHP.
type Monster struct {
	objectID    uint32
	monsterType MonsterType
	template    string
	position    Position
	sequence    uint64 // spawn command that created this instance

	currentHP     atomic.Int32
	currentDamage atomic.Int32
	currentSpeed  atomic.Uint64 // math.Float64bits
	degraded      atomic.Bool
}

// NewMonster creates a Monster instance from a spawn command.
// Stats are not injected yet; call Init.
func NewMonster(objectID uint32, cmd SpawnCommand) *Monster {
	return &Monster{
		objectID:    objectID,
		monsterType: cmd.MonsterType,
		template:    cmd.Template,
		position:    cmd.Position,
		sequence:    cmd.Sequence,
	}
}

// Init injects current stats. Scaling happens on the caller side.
func (m *Monster) Init(stats ScaledStats, degraded bool) {
	m.currentHP.Store(ClampStat(stats.HP))
	m.currentDamage.Store(ClampStat(stats.Damage))
	m.currentSpeed.Store(math.Float64bits(stats.Speed))
	m.degraded.Store(degraded)
}

// ObjectID returns unique object ID
func (m *Monster) ObjectID() uint32 {
	return m.objectID
}

// Type returns monster type
func (m *Monster) Type() MonsterType {
	return m.monsterType
}

// Template returns instantiation template key
func (m *Monster) Template() string {
	return m.template
}

// Position returns spawn position
func (m *Monster) Position() Position {
	return m.position
}

// Sequence returns sequence number of the spawn command that created the instance.
func (m *Monster) Sequence() uint64 {
	return m.sequence
}

// CurrentHP returns current HP (atomic read)
func (m *Monster) CurrentHP() int {
	return int(m.currentHP.Load())
}

// CurrentDamage returns current damage (atomic read)
func (m *Monster) CurrentDamage() int {
	return int(m.currentDamage.Load())
}

// CurrentSpeed returns current movement speed (atomic read)
func (m *Monster) CurrentSpeed() float64 {
	return math.Float64frombits(m.currentSpeed.Load())
}

// Degraded reports whether the instance was created with unscaled fallback stats.
func (m *Monster) Degraded() bool {
	return m.degraded.Load()
}

// SetCurrentHP overwrites current HP (saturated into [0, MaxStat]).
func (m *Monster) SetCurrentHP(hp int) {
	m.currentHP.Store(ClampStat(hp))
}

// ApplyDamage subtracts damage from HP (floored at 0) and returns remaining HP.
func (m *Monster) ApplyDamage(damage int) int {
	if damage <= 0 {
		return m.CurrentHP()
	}
	dmg := ClampStat(damage)
	for {
		cur := m.currentHP.Load()
		next := cur - dmg
		if next < 0 {
			next = 0
		}
		if m.currentHP.CompareAndSwap(cur, next) {
			return int(next)
		}
	}
}

// IsDead reports whether HP dropped to zero.
func (m *Monster) IsDead() bool {
	return m.currentHP.Load() <= 0
}
