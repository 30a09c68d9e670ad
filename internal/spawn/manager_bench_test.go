package spawn

import (
	"testing"

	"github.com/udisondev/hordewave/internal/model"
)

func BenchmarkManager_Execute(b *testing.B) {
	mgr := NewManager(nil)
	cmd := slimeCommand(1)

	b.ReportAllocs()
	for b.Loop() {
		mgr.Execute(cmd)
	}
}

func BenchmarkManager_ExecuteWithJournal(b *testing.B) {
	w := NewJournalWriter(&journalStub{}, 0, 1<<16, 0)
	mgr := NewManager(w)
	cmd := slimeCommand(1)

	b.ReportAllocs()
	for b.Loop() {
		mgr.Execute(cmd)
	}
}

func BenchmarkPoints_Next(b *testing.B) {
	points := NewPoints(PolicyCycle, []model.Position{{X: 1}, {X: 2}, {X: 3}})

	b.ReportAllocs()
	for b.Loop() {
		_ = points.Next()
	}
}
