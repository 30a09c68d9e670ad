package testutil

import (
	"sync"

	"github.com/udisondev/hordewave/internal/model"
)

// RecordingExecutor: executor, который запоминает все полученные команды.
// Safe for concurrent use (driver goroutine writes, test goroutine reads).
type RecordingExecutor struct {
	mu       sync.Mutex
	commands []model.SpawnCommand
}

// NewRecordingExecutor creates an empty recorder.
func NewRecordingExecutor() *RecordingExecutor {
	return &RecordingExecutor{}
}

// Execute records cmd.
func (e *RecordingExecutor) Execute(cmd model.SpawnCommand) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, cmd)
}

// Commands returns a copy of recorded commands.
func (e *RecordingExecutor) Commands() []model.SpawnCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.SpawnCommand, len(e.commands))
	copy(out, e.commands)
	return out
}

// Count returns number of recorded commands.
func (e *RecordingExecutor) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.commands)
}

// Last returns the most recent command.
func (e *RecordingExecutor) Last() (model.SpawnCommand, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.commands) == 0 {
		return model.SpawnCommand{}, false
	}
	return e.commands[len(e.commands)-1], true
}

// Reset drops recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = nil
}

// StaticPositions always returns the same position.
type StaticPositions struct {
	Pos model.Position
}

// Next implements wave.PositionProvider.
func (p StaticPositions) Next() model.Position {
	return p.Pos
}

// SequencePicker returns scripted indices in order, then repeats the last one.
// Indices are reduced modulo n.
type SequencePicker struct {
	mu      sync.Mutex
	indices []int
	pos     int
}

// NewSequencePicker creates a picker with the given script.
func NewSequencePicker(indices ...int) *SequencePicker {
	return &SequencePicker{indices: indices}
}

// IntN implements wave.Picker.
func (p *SequencePicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.indices) == 0 {
		return 0
	}
	idx := p.indices[min(p.pos, len(p.indices)-1)]
	p.pos++
	return idx % n
}

// MutableCatalog is a catalog provider whose contents can be swapped in tests.
type MutableCatalog struct {
	mu   sync.Mutex
	defs []model.MonsterDefinition
}

// NewMutableCatalog creates a provider with defs.
func NewMutableCatalog(defs ...model.MonsterDefinition) *MutableCatalog {
	return &MutableCatalog{defs: defs}
}

// Definitions implements catalog.Provider.
func (c *MutableCatalog) Definitions() []model.MonsterDefinition {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.defs) == 0 {
		return nil
	}
	out := make([]model.MonsterDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Set replaces provider contents.
func (c *MutableCatalog) Set(defs ...model.MonsterDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs = defs
}
