package memory

import (
	"context"
	"fmt"
	"sync"

	"tripcal/internal/core"
)

// Store records appended snapshots in memory. It stands in for the
// spreadsheet when none is configured.
type Store struct {
	mu    sync.Mutex
	items []core.BudgetSnapshot
}

func New() *Store {
	return &Store{}
}

// AppendSnapshot stores the snapshot and returns a synthetic row reference.
func (s *Store) AppendSnapshot(_ context.Context, snap core.BudgetSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, snap)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Snapshots returns a copy of everything appended so far.
func (s *Store) Snapshots() []core.BudgetSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetSnapshot(nil), s.items...)
}
