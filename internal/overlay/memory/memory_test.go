package memory

import (
	"context"
	"errors"
	"testing"

	"tripcal/internal/core"
)

func TestStoreAddAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.AddActivity(ctx, "2026-02-02", core.ActivityItem{ID: "u1", Name: "Dinner"}); err != nil {
		t.Fatalf("AddActivity() error = %v", err)
	}
	if err := s.AddActivity(ctx, "2026-02-02", core.ActivityItem{ID: "u2"}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := s.AddActivity(ctx, "", core.ActivityItem{ID: "u3", Name: "x"}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	ov, _ := s.ReadOverlay(ctx)
	if got := ov.Added["2026-02-02"]; len(got) != 1 || !got[0].IsUserAdded {
		t.Fatalf("added = %+v", got)
	}

	// user-added activity is removed outright
	if err := s.DeleteActivity(ctx, "2026-02-02", "u1"); err != nil {
		t.Fatal(err)
	}
	// projected activity is recorded once
	for i := 0; i < 2; i++ {
		if err := s.DeleteActivity(ctx, "2026-02-02", "s1"); err != nil {
			t.Fatal(err)
		}
	}
	ov, _ = s.ReadOverlay(ctx)
	if len(ov.Added) != 0 {
		t.Errorf("added = %+v, want empty", ov.Added)
	}
	if got := ov.Deleted["2026-02-02"]; len(got) != 1 || got[0] != "s1" {
		t.Errorf("deleted = %v", got)
	}
	if !ov.IsDeleted("2026-02-02", "s1") {
		t.Error("IsDeleted should report s1")
	}

	if err := s.DeleteActivity(ctx, "2026-02-02", " "); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("blank id err = %v", err)
	}
}

func TestReadOverlayReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.AddActivity(ctx, "2026-02-02", core.ActivityItem{ID: "u1", Name: "Dinner"})

	ov, _ := s.ReadOverlay(ctx)
	ov.Added["2026-02-02"][0].Name = "changed"
	ov.Deleted["2026-02-02"] = []string{"x"}

	again, _ := s.ReadOverlay(ctx)
	if again.Added["2026-02-02"][0].Name != "Dinner" {
		t.Error("store shares its activity slice with callers")
	}
	if len(again.Deleted) != 0 {
		t.Error("store shares its deleted map with callers")
	}
}
