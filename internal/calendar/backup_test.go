package calendar

import (
	"testing"

	"tripcal/internal/core"
)

func TestBackupPlan(t *testing.T) {
	tests := []struct {
		name    string
		segType string
		status  core.Status
		want    bool
	}{
		{"flight without status", "flight", core.StatusNone, true},
		{"booked flight", "flight", core.StatusBooked, true},
		{"flight to book", "Flight", core.StatusToBook, true},
		{"planned flight", "flight", core.StatusPlanned, false},
		{"planned warn flight", "flight", core.StatusPlannedWarn, false},
		{"unset flight", "flight", core.StatusUnset, false},
		{"booked bus", "bus", core.StatusBooked, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BackupPlan(core.Segment{ID: "f1", Type: tt.segType, Status: tt.status})
			if (plan != nil) != tt.want {
				t.Fatalf("BackupPlan() = %v, want plan=%v", plan, tt.want)
			}
		})
	}

	plan := BackupPlan(core.Segment{ID: "f1", Type: "flight"})
	if len(plan) != 3 {
		t.Fatalf("expected 3 options, got %d", len(plan))
	}
	for i, opt := range plan {
		if opt.Priority != i+1 {
			t.Errorf("option %d priority = %d", i, opt.Priority)
		}
		if opt.Status != core.StatusToBook {
			t.Errorf("option %d status = %q", i, opt.Status)
		}
	}
	if plan[0].ID != "f1-backup-1" || plan[2].ID != "f1-backup-3" {
		t.Errorf("unexpected ids: %s, %s", plan[0].ID, plan[2].ID)
	}
}
