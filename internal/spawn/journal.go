package spawn

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/hordewave/internal/model"
)

// Defaults for JournalWriter.
const (
	DefaultFlushInterval = 1 * time.Second
	DefaultQueueSize     = 1024
	DefaultBatchSize     = 256

	finalFlushTimeout = 5 * time.Second
)

// Record is one executed spawn command as persisted in the spawn journal.
type Record struct {
	ObjectID    uint32
	SessionID   uint64
	Sequence    uint64
	MonsterType model.MonsterType
	Wave        int
	Elapsed     float64
	HP          int
	Damage      int
	Speed       float64
	Degraded    bool
	Position    model.Position
	SpawnedAt   time.Time
}

// NewRecord builds a journal record for a spawned monster.
func NewRecord(objectID uint32, cmd model.SpawnCommand) Record {
	return Record{
		ObjectID:    objectID,
		SessionID:   cmd.SessionID,
		Sequence:    cmd.Sequence,
		MonsterType: cmd.MonsterType,
		Wave:        cmd.Wave,
		Elapsed:     cmd.Elapsed,
		HP:          cmd.Stats.HP,
		Damage:      cmd.Stats.Damage,
		Speed:       cmd.Stats.Speed,
		Degraded:    cmd.Degraded,
		Position:    cmd.Position,
		SpawnedAt:   time.Now().UTC(),
	}
}

// Journal persists spawn records.
type Journal interface {
	RecordBatch(ctx context.Context, records []Record) error
}

// JournalWriter buffers spawn records and flushes them to a Journal on a timer.
// Enqueue never blocks the spawn path: records are dropped when the queue is full.
type JournalWriter struct {
	journal   Journal
	interval  time.Duration
	batchSize int

	queue  chan Record
	stopCh chan struct{}
	once   sync.Once

	mu      sync.Mutex
	pending []Record

	written atomic.Uint64
	dropped atomic.Uint64
}

// NewJournalWriter creates journal writer. Zero values fall back to defaults.
func NewJournalWriter(journal Journal, interval time.Duration, queueSize, batchSize int) *JournalWriter {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &JournalWriter{
		journal:   journal,
		interval:  interval,
		batchSize: batchSize,
		queue:     make(chan Record, queueSize),
		stopCh:    make(chan struct{}),
	}
}

// Enqueue implements Recorder.
func (w *JournalWriter) Enqueue(rec Record) {
	select {
	case w.queue <- rec:
	default:
		if w.dropped.Add(1) == 1 {
			slog.Warn("spawn journal queue full, dropping records",
				"queueSize", cap(w.queue))
		}
	}
}

// Start runs the writer (blocks until context is canceled or Stop is called).
// Pending records are flushed before it returns.
func (w *JournalWriter) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("spawn journal writer started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.finalFlush(ctx)
			slog.Info("spawn journal writer stopping")
			return ctx.Err()

		case <-w.stopCh:
			w.finalFlush(ctx)
			slog.Info("spawn journal writer stopped")
			return nil

		case rec := <-w.queue:
			w.add(rec)
			if w.pendingLen() >= w.batchSize {
				w.Flush(ctx)
			}

		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Stop stops the writer. Safe to call more than once.
func (w *JournalWriter) Stop() {
	w.once.Do(func() { close(w.stopCh) })
}

// Flush drains the queue and writes everything pending in batches.
// Failed batches are logged and discarded.
func (w *JournalWriter) Flush(ctx context.Context) {
	w.drain()

	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	for len(pending) > 0 {
		n := min(len(pending), w.batchSize)
		batch := pending[:n]
		pending = pending[n:]

		if err := w.journal.RecordBatch(ctx, batch); err != nil {
			slog.Error("writing spawn journal batch",
				"records", len(batch),
				"error", err)
			continue
		}
		w.written.Add(uint64(len(batch)))
	}
}

// Written returns number of records persisted.
func (w *JournalWriter) Written() uint64 {
	return w.written.Load()
}

// Dropped returns number of records dropped on a full queue.
func (w *JournalWriter) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *JournalWriter) finalFlush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
	defer cancel()
	w.Flush(flushCtx)
}

func (w *JournalWriter) add(rec Record) {
	w.mu.Lock()
	w.pending = append(w.pending, rec)
	w.mu.Unlock()
}

func (w *JournalWriter) pendingLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *JournalWriter) drain() {
	for {
		select {
		case rec := <-w.queue:
			w.add(rec)
		default:
			return
		}
	}
}
