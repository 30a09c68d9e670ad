package feed

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/udisondev/hordewave/internal/model"
	"github.com/udisondev/hordewave/internal/wave"
)

// Hub fans scheduler events out to websocket subscribers.
// Broadcast never blocks, so it is safe to call from the driver goroutine.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	// last known values, replayed to new subscribers as a status message
	statusMu sync.Mutex
	status   statusMessage
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		status: statusMessage{Type: TypeStatus, State: wave.StateIdle.String()},
	}
}

// Attach subscribes the hub to a scheduler's events. The returned function
// detaches it again.
func (h *Hub) Attach(events *wave.Events) (detach func()) {
	unsubs := []func(){
		events.Spawned.Subscribe(func(cmd model.SpawnCommand) {
			h.Broadcast(spawnMessage{Type: TypeSpawn, Command: cmd})
		}),
		events.Wave.Subscribe(func(w int) {
			h.updateStatus(func(s *statusMessage) { s.Wave = w })
			h.Broadcast(waveMessage{Type: TypeWave, Wave: w})
		}),
		events.State.Subscribe(func(st wave.State) {
			h.updateStatus(func(s *statusMessage) { s.State = st.String() })
			h.Broadcast(stateMessage{Type: TypeState, State: st.String()})
		}),
		events.Monster.Subscribe(func(t model.MonsterType) {
			h.updateStatus(func(s *statusMessage) { s.Monster = t })
			h.Broadcast(monsterMessage{Type: TypeMonster, Monster: t})
		}),
		events.Conditions.Subscribe(func(c wave.Condition) {
			h.Broadcast(newConditionMessage(c))
		}),
	}

	h.updateStatus(func(s *statusMessage) {
		s.State = events.State.Get().String()
		s.Wave = events.Wave.Get()
		s.Monster = events.Monster.Get()
	})

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Broadcast marshals msg once and queues it for every subscriber.
func (h *Hub) Broadcast(msg any) {
	frame, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling feed message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		sub.send(frame)
	}
}

// Count returns number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		sub.close()
		delete(h.subs, sub)
	}
}

// add queues the status snapshot and registers sub under one write lock, so
// no Broadcast can land between the two and the snapshot always comes first.
func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.statusMu.Lock()
	status := h.status
	h.statusMu.Unlock()

	if frame, err := json.Marshal(status); err == nil {
		sub.send(frame)
	}
	h.subs[sub] = struct{}{}

	slog.Info("feed subscriber connected", "remote", sub.remote)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	sub.close()
	if ok {
		slog.Info("feed subscriber disconnected",
			"remote", sub.remote,
			"dropped", sub.dropped.Load())
	}
}

func (h *Hub) updateStatus(fn func(*statusMessage)) {
	h.statusMu.Lock()
	fn(&h.status)
	h.statusMu.Unlock()
}
