package sheets

import (
	"context"

	"tripcal/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// SnapshotWriter appends a budget snapshot as one spreadsheet row.
	SnapshotWriter interface {
		AppendSnapshot(ctx context.Context, snap core.BudgetSnapshot) (rowRef string, err error)
	}
)
