package wave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrDriverStopped is returned by Submit after the driver loop has exited.
	ErrDriverStopped = errors.New("wave driver stopped")
	// ErrDriverStarted is returned by Start when the loop was already started.
	ErrDriverStarted = errors.New("wave driver already started")
)

// DriverOptions configure the real-time clock driver.
type DriverOptions struct {
	TickInterval time.Duration // default 1/60 s
	MaxDelta     time.Duration // clamp for long stalls (GC, suspend); 0 = no clamp
	SwapOnWave   bool          // re-pick the monster whenever the wave index advances
	AutoStart    bool          // call StartWave when the loop starts
}

// DefaultDriverOptions returns driver defaults.
func DefaultDriverOptions() DriverOptions {
	return DriverOptions{
		TickInterval: time.Second / 60,
		MaxDelta:     250 * time.Millisecond,
		AutoStart:    true,
	}
}

type request struct {
	fn   func(*Scheduler) error
	done chan error
}

// Driver owns a Scheduler and is its only caller: it ticks it from a
// time.Ticker and runs submitted operations between ticks on the same goroutine.
type Driver struct {
	sched *Scheduler
	opts  DriverOptions
	now   func() time.Time

	requests chan request
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
	started  atomic.Bool

	waveChanged bool
}

// NewDriver creates a driver for sched.
func NewDriver(sched *Scheduler, opts DriverOptions) *Driver {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second / 60
	}
	d := &Driver{
		sched:    sched,
		opts:     opts,
		now:      time.Now,
		requests: make(chan request),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	if opts.SwapOnWave {
		// published from Tick, i.e. on the driver goroutine
		sched.Events().Wave.Subscribe(func(int) { d.waveChanged = true })
	}
	return d
}

// Start runs the tick loop (blocks until context is canceled or Stop is called).
// A driver runs once; further calls return ErrDriverStarted.
func (d *Driver) Start(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return ErrDriverStarted
	}
	defer close(d.doneCh)

	ticker := time.NewTicker(d.opts.TickInterval)
	defer ticker.Stop()

	if d.opts.AutoStart {
		if err := d.sched.StartWave(); err != nil {
			slog.Warn("wave auto-start failed", "error", err)
		}
	}

	slog.Info("wave driver started", "interval", d.opts.TickInterval)

	last := d.now()
	for {
		select {
		case <-ctx.Done():
			d.sched.StopWave()
			slog.Info("wave driver stopping")
			return ctx.Err()

		case <-d.stopCh:
			d.sched.StopWave()
			slog.Info("wave driver stopped")
			return nil

		case req := <-d.requests:
			req.done <- req.fn(d.sched)

		case <-ticker.C:
			now := d.now()
			delta := now.Sub(last)
			last = now
			if d.opts.MaxDelta > 0 && delta > d.opts.MaxDelta {
				slog.Debug("wave driver delta clamped", "delta", delta, "max", d.opts.MaxDelta)
				delta = d.opts.MaxDelta
			}
			d.step(delta.Seconds())
		}
	}
}

// Stop stops the tick loop.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// Submit runs fn on the driver goroutine between ticks and returns its error.
func (d *Driver) Submit(ctx context.Context, fn func(*Scheduler) error) error {
	req := request{fn: fn, done: make(chan error, 1)}

	select {
	case d.requests <- req:
	case <-d.doneCh:
		return ErrDriverStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartWave submits Scheduler.StartWave.
func (d *Driver) StartWave(ctx context.Context) error {
	return d.Submit(ctx, (*Scheduler).StartWave)
}

// StopWave submits Scheduler.StopWave.
func (d *Driver) StopWave(ctx context.Context) error {
	return d.Submit(ctx, func(s *Scheduler) error {
		s.StopWave()
		return nil
	})
}

// ChangeMonster submits Scheduler.ChangeMonsterAndRestart.
func (d *Driver) ChangeMonster(ctx context.Context) error {
	return d.Submit(ctx, (*Scheduler).ChangeMonsterAndRestart)
}

// step ticks the scheduler once; a wave change observed during the tick
// triggers a monster swap after the tick completes.
func (d *Driver) step(delta float64) {
	d.sched.Tick(delta)

	if !d.waveChanged {
		return
	}
	d.waveChanged = false

	if d.sched.State() != StateRunning {
		return
	}
	if err := d.sched.ChangeMonsterAndRestart(); err != nil {
		slog.Warn("monster swap on wave change failed", "error", err)
	}
}
