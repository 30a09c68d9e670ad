// Package wave drives the spawn loop: it owns the wave clock, re-derives
// difficulty, keeps the scaled-stats cache and emits spawn commands at the
// derived cadence.
//
// The Scheduler is single-threaded: Tick, StartWave, StopWave and
// ChangeMonsterAndRestart must be called from one goroutine (see Driver).
package wave

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/udisondev/hordewave/internal/catalog"
	"github.com/udisondev/hordewave/internal/difficulty"
	"github.com/udisondev/hordewave/internal/model"
)

const (
	// intervalEpsilon is the minimum cadence change that re-arms the timer.
	intervalEpsilon = 0.001

	// fireTolerance absorbs float drift when deltas sum exactly to the interval.
	fireTolerance = 1e-9
)

// Executor materialises spawn commands. The call is fire-and-forget:
// the scheduler does not wait for or check instantiation.
type Executor interface {
	Execute(cmd model.SpawnCommand)
}

// PositionProvider supplies a spawn position per command.
type PositionProvider interface {
	Next() model.Position
}

// Measurer maps clock state to difficulty. *difficulty.Curve satisfies it.
type Measurer interface {
	Measure(elapsedSeconds float64, waveIndex int) float64
}

// RearmPolicy decides what happens to a running countdown when the cadence changes.
type RearmPolicy string

const (
	// RearmRestart starts a fresh countdown with the new interval.
	RearmRestart RearmPolicy = "restart"
	// RearmProportional keeps the elapsed fraction of the wait.
	RearmProportional RearmPolicy = "proportional"
	// RearmDeferred keeps the current countdown; the new interval applies to the next wait.
	RearmDeferred RearmPolicy = "deferred"
)

// ParseRearmPolicy parses a policy name. Empty string means RearmRestart.
func ParseRearmPolicy(s string) (RearmPolicy, error) {
	switch RearmPolicy(s) {
	case "", RearmRestart:
		return RearmRestart, nil
	case RearmProportional, RearmDeferred:
		return RearmPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown rearm policy %q", s)
	}
}

// Options tune scheduler behaviour.
type Options struct {
	WaveDurationSeconds float64
	MaxSpawnsPerTick    int // 0 = unlimited
	Rearm               RearmPolicy
	SpawnOnStart        bool // emit one command immediately when a session starts
}

// DefaultOptions returns scheduler defaults.
func DefaultOptions() Options {
	return Options{
		WaveDurationSeconds: 30,
		MaxSpawnsPerTick:    8,
		Rearm:               RearmRestart,
		SpawnOnStart:        true,
	}
}

// Deps are the scheduler collaborators. Any of them may be nil; StartWave
// reports ConfigurationMissing until the required ones are set.
type Deps struct {
	Catalog   catalog.Provider
	Curve     Measurer
	Executor  Executor
	Positions PositionProvider
	Picker    Picker  // default: UniformPicker
	Events    *Events // default: NewEvents
}

// Scheduler is the wave scheduler state machine: Idle -> Running -> Idle.
type Scheduler struct {
	catalog   catalog.Provider
	curve     Measurer
	executor  Executor
	positions PositionProvider
	picker    Picker
	events    *Events
	opts      Options

	state State
	clock Clock

	difficulty float64
	cache      map[model.MonsterType]model.ScaledStats
	cacheValid bool
	cacheAt    float64                   // difficulty the cache was built for
	cacheDefs  []model.MonsterDefinition // catalog contents the cache was built from

	selected model.MonsterDefinition
	session  Session

	nextSessionID uint64
	nextSequence  uint64
}

// NewScheduler creates an idle scheduler.
func NewScheduler(deps Deps, opts Options) *Scheduler {
	if deps.Picker == nil {
		deps.Picker = UniformPicker()
	}
	if deps.Events == nil {
		deps.Events = NewEvents()
	}
	if opts.Rearm == "" {
		opts.Rearm = RearmRestart
	}

	return &Scheduler{
		catalog:   deps.Catalog,
		curve:     deps.Curve,
		executor:  deps.Executor,
		positions: deps.Positions,
		picker:    deps.Picker,
		events:    deps.Events,
		opts:      opts,
		state:     StateIdle,
	}
}

// StartWave picks a monster and starts a new spawn session, superseding any
// running one. On a failed precondition it reports ConfigurationMissing,
// leaves the state unchanged and returns the condition.
func (s *Scheduler) StartWave() error {
	const op = "start_wave"

	def, err := s.pickMonster(op)
	if err != nil {
		return err
	}

	if s.state == StateRunning {
		slog.Debug("superseding running spawn session", "sessionID", s.session.ID)
	}

	s.beginSession(def)
	return nil
}

// StopWave cancels the armed countdown and returns to Idle. Idempotent.
func (s *Scheduler) StopWave() {
	if s.state == StateIdle {
		return
	}

	prev := s.session
	s.session = Session{}
	s.setState(StateIdle)

	slog.Info("wave stopped",
		"sessionID", prev.ID,
		"monsterType", prev.MonsterType,
		"spawned", prev.Spawned,
		"elapsed", s.clock.ElapsedSeconds)
}

// ChangeMonsterAndRestart re-picks the monster and restarts the countdown
// immediately, discarding any in-flight wait. Called while Idle it starts a
// session, same as StartWave.
func (s *Scheduler) ChangeMonsterAndRestart() error {
	const op = "change_monster"

	def, err := s.pickMonster(op)
	if err != nil {
		return err
	}

	prev := s.session
	s.beginSession(def)

	slog.Info("monster changed",
		"from", prev.MonsterType,
		"to", def.Type,
		"interval", s.session.Interval)
	return nil
}

// Tick advances the wave clock by deltaSeconds, refreshes difficulty, the
// stats cache and the cadence, and fires due spawns. Negative and
// non-finite deltas count as 0.
func (s *Scheduler) Tick(deltaSeconds float64) {
	if !(deltaSeconds > 0) || math.IsInf(deltaSeconds, 1) {
		if deltaSeconds != 0 {
			slog.Debug("tick delta ignored", "delta", deltaSeconds)
		}
		deltaSeconds = 0
	}

	if s.clock.advance(deltaSeconds, s.opts.WaveDurationSeconds) {
		s.events.Wave.Set(s.clock.WaveIndex)
		slog.Info("wave advanced",
			"wave", s.clock.WaveIndex,
			"elapsed", s.clock.ElapsedSeconds)
	}

	if s.curve == nil {
		return
	}

	d := s.measure()
	if defs := s.definitions(); !s.cacheValid || d != s.cacheAt || !slices.Equal(defs, s.cacheDefs) {
		s.refreshCache(d, defs)
	}

	if s.state != StateRunning {
		return
	}

	if s.retune(d) {
		return
	}
	s.countdown(deltaSeconds)
}

// State returns current state.
func (s *Scheduler) State() State {
	return s.state
}

// Clock returns a copy of the wave clock.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Difficulty returns the most recently measured difficulty.
func (s *Scheduler) Difficulty() float64 {
	return s.difficulty
}

// Session returns a snapshot of the active session.
func (s *Scheduler) Session() (Session, bool) {
	if s.state != StateRunning {
		return Session{}, false
	}
	return s.session, true
}

// ScaledStats returns a copy of the cached stats for a monster type.
func (s *Scheduler) ScaledStats(t model.MonsterType) (model.ScaledStats, bool) {
	stats, ok := s.cache[t]
	return stats, ok
}

// CacheSize returns number of cached monster types.
func (s *Scheduler) CacheSize() int {
	return len(s.cache)
}

// Events returns the event bundle the scheduler publishes to.
func (s *Scheduler) Events() *Events {
	return s.events
}

// pickMonster validates preconditions and picks a monster uniformly.
func (s *Scheduler) pickMonster(op string) (model.MonsterDefinition, error) {
	var none model.MonsterDefinition

	switch {
	case s.catalog == nil:
		return none, s.report(ConditionConfigurationMissing, op, "catalog provider is not set")
	case s.curve == nil:
		return none, s.report(ConditionConfigurationMissing, op, "difficulty curve is not set")
	case s.executor == nil:
		return none, s.report(ConditionConfigurationMissing, op, "spawn executor is not set")
	case s.positions == nil:
		return none, s.report(ConditionConfigurationMissing, op, "position provider is not set")
	}

	defs := s.definitions()
	if len(defs) == 0 {
		return none, s.report(ConditionConfigurationMissing, op, "monster catalog is empty")
	}

	def := defs[s.picker.IntN(len(defs))]
	if !def.HasTemplate() {
		return none, s.report(ConditionConfigurationMissing, op,
			fmt.Sprintf("monster %s has no spawn template", def.Type))
	}
	return def, nil
}

// beginSession arms a fresh countdown for def. Any prior countdown is discarded.
func (s *Scheduler) beginSession(def model.MonsterDefinition) {
	d := s.measure()
	s.refreshCache(d, s.definitions())

	interval := difficulty.Interval(def, d)

	s.selected = def
	s.nextSessionID++
	s.session = Session{
		ID:          s.nextSessionID,
		MonsterType: def.Type,
		Interval:    interval,
		Remaining:   interval,
		Running:     true,
	}
	s.setState(StateRunning)
	s.events.Monster.Set(def.Type)

	slog.Info("spawn session started",
		"sessionID", s.session.ID,
		"monsterType", def.Type,
		"difficulty", d,
		"interval", interval,
		"wave", s.clock.WaveIndex)

	if s.opts.SpawnOnStart {
		s.fire()
	}
}

// retune recomputes cadence for the selected monster and applies the re-arm
// policy. Returns true when the countdown was restarted this tick.
func (s *Scheduler) retune(d float64) bool {
	next := difficulty.Interval(s.selected, d)
	prev := s.session.Interval
	if math.Abs(next-prev) <= intervalEpsilon {
		return false
	}

	s.session.Interval = next

	restarted := false
	switch s.opts.Rearm {
	case RearmProportional:
		s.session.Remaining *= next / prev
	case RearmDeferred:
		// countdown keeps running; next wait uses the new interval
	default:
		s.session.Remaining = next
		restarted = true
	}

	slog.Debug("spawn cadence changed",
		"sessionID", s.session.ID,
		"from", prev,
		"to", next,
		"policy", s.opts.Rearm,
		"remaining", s.session.Remaining)
	return restarted
}

// countdown consumes delta and fires every due spawn, capped per tick.
func (s *Scheduler) countdown(delta float64) {
	s.session.Remaining -= delta

	fired := 0
	for s.session.Remaining <= fireTolerance {
		if s.opts.MaxSpawnsPerTick > 0 && fired >= s.opts.MaxSpawnsPerTick {
			slog.Warn("spawn backlog dropped",
				"sessionID", s.session.ID,
				"fired", fired,
				"overdue", -s.session.Remaining)
			s.session.Remaining = s.session.Interval
			return
		}

		s.fire()
		fired++
		s.session.Remaining += s.session.Interval
	}
}

// fire emits one spawn command for the selected monster.
func (s *Scheduler) fire() {
	stats, ok := s.cache[s.selected.Type]
	degraded := false
	if !ok {
		stats = s.selected.Unscaled()
		degraded = true
		s.report(ConditionCacheMiss, "spawn",
			fmt.Sprintf("no scaled stats for monster %s", s.selected.Type))
	}

	s.nextSequence++
	cmd := model.SpawnCommand{
		Sequence:    s.nextSequence,
		SessionID:   s.session.ID,
		MonsterType: s.selected.Type,
		Template:    s.selected.Template,
		Position:    s.positions.Next(),
		Stats:       stats,
		Degraded:    degraded,
		Wave:        s.clock.WaveIndex,
		Elapsed:     s.clock.ElapsedSeconds,
	}
	s.session.Spawned++

	s.executor.Execute(cmd)
	s.events.Spawned.Publish(cmd)
}

func (s *Scheduler) measure() float64 {
	s.difficulty = s.curve.Measure(s.clock.ElapsedSeconds, s.clock.WaveIndex)
	return s.difficulty
}

// refreshCache replaces the whole cache. An empty catalog keeps the old one.
// defs must not be mutated afterwards; catalog.Provider returns copies.
func (s *Scheduler) refreshCache(d float64, defs []model.MonsterDefinition) {
	scaled := difficulty.ScaleAll(d, defs)
	if scaled == nil {
		return
	}
	s.cache = scaled
	s.cacheAt = d
	s.cacheDefs = defs
	s.cacheValid = true
}

func (s *Scheduler) definitions() []model.MonsterDefinition {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Definitions()
}

func (s *Scheduler) setState(state State) {
	s.state = state
	s.events.State.Set(state)
}

// report logs and publishes a condition and returns it as an error.
func (s *Scheduler) report(kind ConditionKind, op, detail string) error {
	c := Condition{Kind: kind, Operation: op, Detail: detail}

	slog.Warn("wave condition",
		"kind", kind,
		"operation", op,
		"detail", detail,
		"state", s.state)

	s.events.Conditions.Publish(c)
	return c
}
