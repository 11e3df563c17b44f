package memory

import (
	"context"
	"testing"

	"tripcal/internal/core"
)

func TestStoreAppendSnapshot(t *testing.T) {
	s := New()
	for i, total := range []float64{10, 20} {
		ref, err := s.AppendSnapshot(context.Background(), core.BudgetSnapshot{ID: int64(i + 1), Summary: core.BudgetSummary{Total: total}})
		if err != nil {
			t.Fatalf("AppendSnapshot() error = %v", err)
		}
		if want := []string{"mem:1", "mem:2"}[i]; ref != want {
			t.Errorf("ref = %q, want %q", ref, want)
		}
	}

	got := s.Snapshots()
	if len(got) != 2 || got[1].Summary.Total != 20 {
		t.Fatalf("snapshots = %+v", got)
	}
	got[0].ID = 99
	if s.Snapshots()[0].ID != 1 {
		t.Error("Snapshots shares its backing slice")
	}
}
