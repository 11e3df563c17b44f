// Package overlay holds the user edits layered over a projected calendar:
// activities a user added to a day and projected activities a user hid.
package overlay

import (
	"context"

	"tripcal/internal/core"
)

// Ports for overlay persistence adapters.
type (
	ActivityWriter interface {
		// AddActivity stores a user-added activity on the date.
		AddActivity(ctx context.Context, dateKey string, item core.ActivityItem) error
		// DeleteActivity hides the activity with id on the date. A user-added
		// activity is removed outright; a projected one is recorded as deleted.
		DeleteActivity(ctx context.Context, dateKey, id string) error
	}

	OverlayReader interface {
		ReadOverlay(ctx context.Context) (core.Overlay, error)
	}

	Store interface {
		ActivityWriter
		OverlayReader
	}
)
