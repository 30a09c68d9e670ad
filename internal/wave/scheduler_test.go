package wave

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/hordewave/internal/catalog"
	"github.com/udisondev/hordewave/internal/difficulty"
	"github.com/udisondev/hordewave/internal/model"
	"github.com/udisondev/hordewave/internal/testutil"
)

// fixedCurve returns a difficulty controlled by the test.
type fixedCurve struct {
	d float64
}

func (c *fixedCurve) Measure(float64, int) float64 {
	return c.d
}

type harness struct {
	sched      *Scheduler
	exec       *testutil.RecordingExecutor
	curve      *fixedCurve
	conditions []Condition
}

func newHarness(t *testing.T, provider catalog.Provider, picker Picker, mutate func(*Options)) *harness {
	t.Helper()

	opts := DefaultOptions()
	opts.SpawnOnStart = false
	opts.MaxSpawnsPerTick = 0
	if mutate != nil {
		mutate(&opts)
	}

	h := &harness{
		exec:  testutil.NewRecordingExecutor(),
		curve: &fixedCurve{},
	}
	h.sched = NewScheduler(Deps{
		Catalog:   provider,
		Curve:     h.curve,
		Executor:  h.exec,
		Positions: testutil.StaticPositions{Pos: model.NewPosition(5, 0, -5)},
		Picker:    picker,
	}, opts)
	h.sched.Events().Conditions.Subscribe(func(c Condition) {
		h.conditions = append(h.conditions, c)
	})
	return h
}

func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(testutil.Definitions())
	require.NoError(t, err)
	return c
}

func TestScheduler_StartWave_EmptyCatalog(t *testing.T) {
	h := newHarness(t, catalog.MustNew(nil), testutil.NewSequencePicker(0), nil)

	err := h.sched.StartWave()

	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Equal(t, StateIdle, h.sched.State())
	_, ok := h.sched.Session()
	assert.False(t, ok, "no timer must be armed")
	require.Len(t, h.conditions, 1)
	assert.Equal(t, ConditionConfigurationMissing, h.conditions[0].Kind)
	assert.Equal(t, "start_wave", h.conditions[0].Operation)

	h.sched.Tick(100)
	assert.Equal(t, 0, h.exec.Count())
}

func TestScheduler_StartWave_MissingCollaborators(t *testing.T) {
	cat := fixtureCatalog(t)
	exec := testutil.NewRecordingExecutor()
	pos := testutil.StaticPositions{}
	curve := &fixedCurve{}

	tests := []struct {
		name string
		deps Deps
	}{
		{"no catalog", Deps{Curve: curve, Executor: exec, Positions: pos}},
		{"no curve", Deps{Catalog: cat, Executor: exec, Positions: pos}},
		{"no executor", Deps{Catalog: cat, Curve: curve, Positions: pos}},
		{"no positions", Deps{Catalog: cat, Curve: curve, Executor: exec}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.deps, DefaultOptions())
			err := s.StartWave()
			assert.ErrorIs(t, err, ErrConfigurationMissing)
			assert.Equal(t, StateIdle, s.State())
		})
	}
	assert.Equal(t, 0, exec.Count())
}

func TestScheduler_StartWave_NoTemplate(t *testing.T) {
	provider := testutil.NewMutableCatalog(testutil.Fixtures.NoTemplate)
	h := newHarness(t, provider, testutil.NewSequencePicker(0), nil)

	err := h.sched.StartWave()

	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Contains(t, err.Error(), "ghost")
	assert.Equal(t, StateIdle, h.sched.State())
}

func TestScheduler_StartWave(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)

	var states []State
	h.sched.Events().State.Subscribe(func(s State) { states = append(states, s) })

	require.NoError(t, h.sched.StartWave())

	assert.Equal(t, StateRunning, h.sched.State())
	sess, ok := h.sched.Session()
	require.True(t, ok)
	assert.Equal(t, uint64(1), sess.ID)
	assert.Equal(t, model.MonsterType("slime"), sess.MonsterType)
	assert.Equal(t, 2.0, sess.Interval)
	assert.Equal(t, 2.0, sess.Remaining)
	assert.True(t, sess.Running)
	assert.Equal(t, 3, h.sched.CacheSize())
	assert.Equal(t, 0, h.exec.Count(), "spawn on start disabled")
	assert.Equal(t, []State{StateRunning}, states)
	assert.Equal(t, model.MonsterType("slime"), h.sched.Events().Monster.Get())
}

func TestScheduler_StartWave_SpawnOnStart(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(1), func(o *Options) {
		o.SpawnOnStart = true
	})
	h.curve.d = 2

	require.NoError(t, h.sched.StartWave())

	require.Equal(t, 1, h.exec.Count())
	cmd, _ := h.exec.Last()
	assert.Equal(t, model.MonsterType("bat"), cmd.MonsterType)
	assert.Equal(t, uint64(1), cmd.Sequence)
	assert.Equal(t, difficulty.ScaleOne(testutil.Fixtures.Bat, 2), cmd.Stats)

	sess, _ := h.sched.Session()
	assert.Equal(t, sess.Interval, sess.Remaining, "first wait starts after the immediate spawn")
}

func TestScheduler_Tick_FiresAtCadence(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)
	require.NoError(t, h.sched.StartWave())

	for range 3 {
		h.sched.Tick(0.5)
	}
	assert.Equal(t, 0, h.exec.Count())

	h.sched.Tick(0.5)
	assert.Equal(t, 1, h.exec.Count())

	h.sched.Tick(2)
	assert.Equal(t, 2, h.exec.Count())

	sess, _ := h.sched.Session()
	assert.Equal(t, 2, sess.Spawned)
}

func TestScheduler_SpawnCommandPayload(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)
	h.curve.d = 2
	require.NoError(t, h.sched.StartWave())

	// slime interval at d=2: 2 / (1 + 1*2)
	sess, _ := h.sched.Session()
	require.InDelta(t, 2.0/3.0, sess.Interval, 1e-12)

	h.sched.Tick(1)

	require.Equal(t, 1, h.exec.Count())
	cmd, _ := h.exec.Last()
	assert.Equal(t, uint64(1), cmd.Sequence)
	assert.Equal(t, uint64(1), cmd.SessionID)
	assert.Equal(t, model.MonsterType("slime"), cmd.MonsterType)
	assert.Equal(t, "prefabs/slime", cmd.Template)
	assert.Equal(t, model.NewPosition(5, 0, -5), cmd.Position)
	assert.Equal(t, 200, cmd.Stats.HP)
	assert.Equal(t, 15, cmd.Stats.Damage)
	assert.InDelta(t, 2.4, cmd.Stats.Speed, 1e-12)
	assert.False(t, cmd.Degraded)
	assert.Equal(t, 1.0, cmd.Elapsed)
}

func TestScheduler_SpawnedEvent(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)

	var published []model.SpawnCommand
	h.sched.Events().Spawned.Subscribe(func(c model.SpawnCommand) { published = append(published, c) })

	require.NoError(t, h.sched.StartWave())
	h.sched.Tick(2)

	require.Len(t, published, 1)
	assert.Equal(t, h.exec.Commands(), published)
}

func TestScheduler_ChangeMonsterAndRestart(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0, 1), nil)
	require.NoError(t, h.sched.StartWave())

	h.sched.Tick(1) // slime countdown half-way
	require.NoError(t, h.sched.ChangeMonsterAndRestart())

	sess, ok := h.sched.Session()
	require.True(t, ok)
	assert.Equal(t, uint64(2), sess.ID)
	assert.Equal(t, model.MonsterType("bat"), sess.MonsterType)
	assert.Equal(t, 1.0, sess.Remaining, "previous countdown discarded")
	assert.Equal(t, StateRunning, h.sched.State())

	h.sched.Tick(0.5)
	assert.Equal(t, 0, h.exec.Count())

	h.sched.Tick(0.5)
	require.Equal(t, 1, h.exec.Count())
	cmd, _ := h.exec.Last()
	assert.Equal(t, model.MonsterType("bat"), cmd.MonsterType)
	assert.Equal(t, uint64(2), cmd.SessionID)
}

func TestScheduler_ChangeMonster_FromIdleStarts(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(2), nil)

	require.NoError(t, h.sched.ChangeMonsterAndRestart())

	assert.Equal(t, StateRunning, h.sched.State())
	sess, _ := h.sched.Session()
	assert.Equal(t, model.MonsterType("golem"), sess.MonsterType)
}

func TestScheduler_ChangeMonster_FailureKeepsSession(t *testing.T) {
	provider := testutil.NewMutableCatalog(testutil.Definitions()...)
	h := newHarness(t, provider, testutil.NewSequencePicker(0), nil)
	require.NoError(t, h.sched.StartWave())
	h.sched.Tick(0.5)

	provider.Set()
	err := h.sched.ChangeMonsterAndRestart()

	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Equal(t, StateRunning, h.sched.State())
	sess, _ := h.sched.Session()
	assert.Equal(t, uint64(1), sess.ID)
	assert.Equal(t, model.MonsterType("slime"), sess.MonsterType)
	assert.Equal(t, 1.5, sess.Remaining)
}

func TestScheduler_StartWave_Supersedes(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0, 0), nil)
	require.NoError(t, h.sched.StartWave())
	h.sched.Tick(1.5)

	require.NoError(t, h.sched.StartWave())

	sess, _ := h.sched.Session()
	assert.Equal(t, uint64(2), sess.ID)
	assert.Equal(t, 2.0, sess.Remaining)

	h.sched.Tick(0.5)
	assert.Equal(t, 0, h.exec.Count(), "old countdown must not fire")
}

func TestScheduler_StopWave(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)

	h.sched.StopWave() // no-op while idle
	assert.Equal(t, StateIdle, h.sched.State())

	require.NoError(t, h.sched.StartWave())
	h.sched.Tick(1.5)
	h.sched.StopWave()
	h.sched.StopWave()

	assert.Equal(t, StateIdle, h.sched.State())
	_, ok := h.sched.Session()
	assert.False(t, ok)

	h.sched.Tick(10)
	assert.Equal(t, 0, h.exec.Count())
	assert.Equal(t, 11.5, h.sched.Clock().ElapsedSeconds, "clock keeps running while idle")
}

func TestScheduler_Rearm(t *testing.T) {
	tests := []struct {
		name   string
		policy RearmPolicy
		// after d changes to 1 (slime interval 2 -> 1)
		ticks     []float64
		wantFires []int // cumulative fires after each tick
	}{
		{
			name:      "restart discards elapsed wait",
			policy:    RearmRestart,
			ticks:     []float64{0.25, 0.75, 0.25},
			wantFires: []int{0, 0, 1},
		},
		{
			name:      "proportional keeps elapsed fraction",
			policy:    RearmProportional,
			ticks:     []float64{0.25, 0.5, 0.5},
			wantFires: []int{1, 1, 2},
		},
		{
			name:      "deferred applies from next wait",
			policy:    RearmDeferred,
			ticks:     []float64{0.25, 0.25, 0.5, 0.5},
			wantFires: []int{0, 1, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), func(o *Options) {
				o.Rearm = tt.policy
			})
			require.NoError(t, h.sched.StartWave())
			h.sched.Tick(1.5) // remaining 0.5 at interval 2

			h.curve.d = 1
			for i, delta := range tt.ticks {
				h.sched.Tick(delta)
				assert.Equal(t, tt.wantFires[i], h.exec.Count(), "after tick %d", i)
			}

			sess, _ := h.sched.Session()
			assert.Equal(t, 1.0, sess.Interval)
		})
	}
}

func TestScheduler_Rearm_BelowEpsilon(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)
	require.NoError(t, h.sched.StartWave())
	h.sched.Tick(1)

	h.curve.d = 0.00025 // slime interval 2 -> ~1.9995
	h.sched.Tick(0.5)

	sess, _ := h.sched.Session()
	assert.Equal(t, 2.0, sess.Interval)
	assert.Equal(t, 0.5, sess.Remaining)

	stats, ok := h.sched.ScaledStats("slime")
	require.True(t, ok)
	assert.Equal(t, difficulty.ScaleOne(testutil.Fixtures.Slime, 0.00025), stats,
		"cache reflects the latest difficulty even without a re-arm")
}

func TestScheduler_CatchUp(t *testing.T) {
	t.Run("unlimited", func(t *testing.T) {
		h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)
		require.NoError(t, h.sched.StartWave())

		h.sched.Tick(6)

		assert.Equal(t, 3, h.exec.Count())
		sess, _ := h.sched.Session()
		assert.Equal(t, 2.0, sess.Remaining)
	})

	t.Run("capped per tick", func(t *testing.T) {
		h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), func(o *Options) {
			o.MaxSpawnsPerTick = 3
		})
		require.NoError(t, h.sched.StartWave())

		h.sched.Tick(100)

		assert.Equal(t, 3, h.exec.Count())
		sess, _ := h.sched.Session()
		assert.Equal(t, sess.Interval, sess.Remaining, "backlog dropped, countdown re-armed")
	})
}

func TestScheduler_CacheMiss(t *testing.T) {
	provider := testutil.NewMutableCatalog(testutil.Fixtures.Slime)
	h := newHarness(t, provider, testutil.NewSequencePicker(0), nil)
	require.NoError(t, h.sched.StartWave())

	// каталог изменился: кэш перестраивается без slime
	provider.Set(testutil.Fixtures.Bat)
	h.curve.d = 1
	h.sched.Tick(0.1) // re-arm: slime interval 2 -> 1
	h.sched.Tick(1)

	require.Equal(t, 1, h.exec.Count())
	cmd, _ := h.exec.Last()
	assert.True(t, cmd.Degraded)
	assert.Equal(t, testutil.Fixtures.Slime.Unscaled(), cmd.Stats)
	assert.Equal(t, model.MonsterType("slime"), cmd.MonsterType)

	require.Len(t, h.conditions, 1)
	assert.Equal(t, ConditionCacheMiss, h.conditions[0].Kind)
	assert.ErrorIs(t, h.conditions[0], ErrCacheMiss)
	assert.Equal(t, StateRunning, h.sched.State())
}

func TestScheduler_CatalogChangeAtSameDifficulty(t *testing.T) {
	t.Run("type removed", func(t *testing.T) {
		provider := testutil.NewMutableCatalog(testutil.Fixtures.Slime)
		h := newHarness(t, provider, testutil.NewSequencePicker(0), nil)
		require.NoError(t, h.sched.StartWave())

		provider.Set(testutil.Fixtures.Bat)
		h.sched.Tick(2)

		require.Equal(t, 1, h.exec.Count())
		cmd, _ := h.exec.Last()
		assert.True(t, cmd.Degraded)
		assert.Equal(t, model.MonsterType("slime"), cmd.MonsterType)

		require.Len(t, h.conditions, 1)
		assert.Equal(t, ConditionCacheMiss, h.conditions[0].Kind)
	})

	t.Run("stats changed", func(t *testing.T) {
		provider := testutil.NewMutableCatalog(testutil.Fixtures.Slime)
		h := newHarness(t, provider, testutil.NewSequencePicker(0), nil)
		require.NoError(t, h.sched.StartWave())

		buffed := testutil.Fixtures.Slime
		buffed.Base.HP = 250
		provider.Set(buffed)
		h.sched.Tick(2)

		require.Equal(t, 1, h.exec.Count())
		cmd, _ := h.exec.Last()
		assert.False(t, cmd.Degraded)
		assert.Equal(t, 250, cmd.Stats.HP)
		assert.Empty(t, h.conditions)
	})
}

func TestScheduler_TickNonFiniteDelta(t *testing.T) {
	opts := DefaultOptions()
	opts.SpawnOnStart = false
	opts.MaxSpawnsPerTick = 0
	opts.Rearm = RearmDeferred
	exec := testutil.NewRecordingExecutor()
	s := NewScheduler(Deps{
		Catalog:   fixtureCatalog(t),
		Curve:     difficulty.NewCurve(difficulty.DefaultTuning()),
		Executor:  exec,
		Positions: testutil.StaticPositions{},
		Picker:    testutil.NewSequencePicker(0),
	}, opts)
	require.NoError(t, s.StartWave())
	before, _ := s.Session()

	for range 3 {
		s.Tick(math.Inf(1))
		s.Tick(math.NaN())
		s.Tick(math.Inf(-1))
	}

	assert.Equal(t, 0.0, s.Clock().ElapsedSeconds)
	assert.Equal(t, 0, s.Clock().WaveIndex)
	assert.False(t, math.IsNaN(s.Difficulty()))
	assert.Equal(t, 0, exec.Count())
	after, _ := s.Session()
	assert.Equal(t, before.Remaining, after.Remaining)

	s.Tick(before.Remaining)
	require.Equal(t, 1, exec.Count())
	cmd, _ := exec.Last()
	assert.Positive(t, cmd.Stats.HP)
	assert.False(t, math.IsNaN(cmd.Stats.Speed))
}

func TestScheduler_TickNegativeDelta(t *testing.T) {
	h := newHarness(t, fixtureCatalog(t), testutil.NewSequencePicker(0), nil)
	require.NoError(t, h.sched.StartWave())

	h.sched.Tick(-5)
	h.sched.Tick(0)

	assert.Equal(t, 0.0, h.sched.Clock().ElapsedSeconds)
	sess, _ := h.sched.Session()
	assert.Equal(t, 2.0, sess.Remaining)
}

func TestScheduler_WaveIndex(t *testing.T) {
	cat := fixtureCatalog(t)
	s := NewScheduler(Deps{
		Catalog:   cat,
		Curve:     difficulty.NewCurve(difficulty.DefaultTuning()),
		Executor:  testutil.NewRecordingExecutor(),
		Positions: testutil.StaticPositions{},
	}, Options{WaveDurationSeconds: 30})

	var waves []int
	s.Events().Wave.Subscribe(func(w int) { waves = append(waves, w) })

	s.Tick(10)
	s.Tick(10)
	assert.Equal(t, 0, s.Clock().WaveIndex)

	s.Tick(10)
	assert.Equal(t, 1, s.Clock().WaveIndex)

	s.Tick(35)
	assert.Equal(t, 2, s.Clock().WaveIndex)
	assert.Equal(t, []int{1, 2}, waves)

	// 65s, wave 2: difficulty follows the curve
	want := difficulty.NewCurve(difficulty.DefaultTuning()).Measure(65, 2)
	assert.Equal(t, want, s.Difficulty())
	bat, ok := s.ScaledStats("bat")
	require.True(t, ok)
	assert.Equal(t, difficulty.ScaleOne(testutil.Fixtures.Bat, want), bat)
}

func TestScheduler_WaveIndex_DegenerateDuration(t *testing.T) {
	s := NewScheduler(Deps{}, Options{WaveDurationSeconds: 0.05})

	s.Tick(100)

	assert.Equal(t, 0, s.Clock().WaveIndex)
	assert.Equal(t, 100.0, s.Clock().ElapsedSeconds)
}

func TestParseRearmPolicy(t *testing.T) {
	for in, want := range map[string]RearmPolicy{
		"":             RearmRestart,
		"restart":      RearmRestart,
		"proportional": RearmProportional,
		"deferred":     RearmDeferred,
	} {
		got, err := ParseRearmPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseRearmPolicy("sometimes")
	assert.Error(t, err)
}

func TestCondition_Error(t *testing.T) {
	c := Condition{Kind: ConditionConfigurationMissing, Operation: "start_wave", Detail: "monster catalog is empty"}

	assert.ErrorIs(t, c, ErrConfigurationMissing)
	assert.NotErrorIs(t, c, ErrCacheMiss)
	assert.Equal(t, "start_wave: configuration missing: monster catalog is empty", c.Error())
	assert.Equal(t, "configuration_missing", c.Kind.String())
	assert.Equal(t, "cache_miss", ConditionCacheMiss.String())
}
