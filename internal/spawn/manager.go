package spawn

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/udisondev/hordewave/internal/event"
	"github.com/udisondev/hordewave/internal/model"
)

// firstObjectID is where monster object IDs start.
const firstObjectID = 100000

// Recorder receives a record of every executed spawn command.
// JournalWriter implements it; Enqueue must not block.
type Recorder interface {
	Enqueue(rec Record)
}

// Manager is the spawn executor: it turns spawn commands into live monster
// instances with injected stats and keeps track of them.
type Manager struct {
	monsters sync.Map // objectID → *model.Monster
	recorder Recorder

	spawned *event.Channel[*model.Monster]
	removed *event.Channel[*model.Monster]

	objectIDCounter atomic.Uint32 // for generating unique objectIDs
	monsterCount    atomic.Int32  // cached count of live monsters (O(1) access)
	totalSpawned    atomic.Uint64
	degradedSpawned atomic.Uint64
}

// NewManager creates new spawn manager. Recorder may be nil.
func NewManager(recorder Recorder) *Manager {
	mgr := &Manager{
		recorder: recorder,
		spawned:  event.NewChannel[*model.Monster]("spawn.spawned"),
		removed:  event.NewChannel[*model.Monster]("spawn.removed"),
	}
	mgr.objectIDCounter.Store(firstObjectID)
	return mgr
}

// Execute implements wave.Executor. Fire-and-forget: nothing is returned to
// the scheduler.
func (m *Manager) Execute(cmd model.SpawnCommand) {
	objectID := m.objectIDCounter.Add(1)

	monster := model.NewMonster(objectID, cmd)
	monster.Init(cmd.Stats, cmd.Degraded)

	m.monsters.Store(objectID, monster)
	m.monsterCount.Add(1)
	m.totalSpawned.Add(1)
	if cmd.Degraded {
		m.degradedSpawned.Add(1)
		slog.Warn("monster spawned with unscaled stats",
			"objectID", objectID,
			"monsterType", cmd.MonsterType)
	}

	if m.recorder != nil {
		m.recorder.Enqueue(NewRecord(objectID, cmd))
	}

	slog.Debug("monster spawned",
		"objectID", objectID,
		"monsterType", cmd.MonsterType,
		"hp", cmd.Stats.HP,
		"damage", cmd.Stats.Damage,
		"speed", cmd.Stats.Speed,
		"position", cmd.Position,
		"sequence", cmd.Sequence)

	m.spawned.Publish(monster)
}

// Despawn removes a monster. Returns false if it is not tracked.
func (m *Manager) Despawn(objectID uint32) bool {
	value, ok := m.monsters.LoadAndDelete(objectID)
	if !ok {
		return false
	}
	m.monsterCount.Add(-1)

	monster := value.(*model.Monster)
	slog.Debug("monster despawned",
		"objectID", objectID,
		"monsterType", monster.Type())

	m.removed.Publish(monster)
	return true
}

// ApplyDamage damages a tracked monster and despawns it when HP reaches zero.
// Returns remaining HP and false if the monster is unknown.
func (m *Manager) ApplyDamage(objectID uint32, damage int) (int, bool) {
	monster, ok := m.Get(objectID)
	if !ok {
		return 0, false
	}

	hp := monster.ApplyDamage(damage)
	if hp == 0 {
		m.Despawn(objectID)
	}
	return hp, true
}

// Get returns monster by objectID.
func (m *Manager) Get(objectID uint32) (*model.Monster, bool) {
	value, ok := m.monsters.Load(objectID)
	if !ok {
		return nil, false
	}
	return value.(*model.Monster), true
}

// Count returns number of live monsters (O(1) cached count).
func (m *Manager) Count() int {
	return int(m.monsterCount.Load())
}

// TotalSpawned returns number of monsters spawned since start.
func (m *Manager) TotalSpawned() uint64 {
	return m.totalSpawned.Load()
}

// DegradedSpawned returns number of monsters spawned with fallback stats.
func (m *Manager) DegradedSpawned() uint64 {
	return m.degradedSpawned.Load()
}

// ForEach calls fn for every live monster until fn returns false.
func (m *Manager) ForEach(fn func(*model.Monster) bool) {
	m.monsters.Range(func(_, value any) bool {
		return fn(value.(*model.Monster))
	})
}

// OnSpawned subscribes to newly created monsters.
func (m *Manager) OnSpawned(fn func(*model.Monster)) (unsubscribe func()) {
	return m.spawned.Subscribe(fn)
}

// OnRemoved subscribes to despawned monsters.
func (m *Manager) OnRemoved(fn func(*model.Monster)) (unsubscribe func()) {
	return m.removed.Subscribe(fn)
}
