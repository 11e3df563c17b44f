package calendar

import (
	"fmt"

	"tripcal/internal/core"
)

var backupOptions = [...]string{
	"Rebook next available flight on the same route",
	"Alternate route via a different hub",
	"Ground transportation alternative",
}

// BackupPlan returns the fixed fallback options for a flight whose status is
// absent, BOOKED or TO_BOOK. Every other segment gets nil.
func BackupPlan(seg core.Segment) []core.BackupOption {
	if seg.Category() != core.CategoryFlight {
		return nil
	}
	switch seg.Status {
	case core.StatusNone, core.StatusBooked, core.StatusToBook:
	default:
		return nil
	}

	plan := make([]core.BackupOption, 0, len(backupOptions))
	for i, desc := range backupOptions {
		priority := i + 1
		plan = append(plan, core.BackupOption{
			ID:          fmt.Sprintf("%s-backup-%d", seg.ID, priority),
			Priority:    priority,
			Description: desc,
			Status:      core.StatusToBook,
		})
	}
	return plan
}
