package memory

import (
	"context"
	"strings"
	"sync"

	"tripcal/internal/core"
)

// Store keeps the overlay in process memory. It is the default backend and
// the fake used by service tests.
type Store struct {
	mu      sync.Mutex
	added   map[string][]core.ActivityItem
	deleted map[string][]string
}

func New() *Store {
	return &Store{
		added:   make(map[string][]core.ActivityItem),
		deleted: make(map[string][]string),
	}
}

// AddActivity stores the activity under the date.
func (s *Store) AddActivity(_ context.Context, dateKey string, item core.ActivityItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(dateKey) == "" {
		return core.ErrInvalidDate
	}
	item.IsUserAdded = true
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added[dateKey] = append(s.added[dateKey], item)
	return nil
}

// DeleteActivity removes a user-added activity, or records the id as a
// deleted projected activity when no user-added one matches.
func (s *Store) DeleteActivity(_ context.Context, dateKey, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.added[dateKey]
	for i, it := range items {
		if it.ID == id {
			s.added[dateKey] = append(items[:i:i], items[i+1:]...)
			if len(s.added[dateKey]) == 0 {
				delete(s.added, dateKey)
			}
			return nil
		}
	}
	for _, d := range s.deleted[dateKey] {
		if d == id {
			return nil
		}
	}
	s.deleted[dateKey] = append(s.deleted[dateKey], id)
	return nil
}

// ReadOverlay returns a deep copy of the stored overlay.
func (s *Store) ReadOverlay(_ context.Context) (core.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ov := core.Overlay{
		Added:   make(map[string][]core.ActivityItem, len(s.added)),
		Deleted: make(map[string][]string, len(s.deleted)),
	}
	for k, v := range s.added {
		ov.Added[k] = append([]core.ActivityItem(nil), v...)
	}
	for k, v := range s.deleted {
		ov.Deleted[k] = append([]string(nil), v...)
	}
	return ov, nil
}
