package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"tripcal/internal/budget"
	"tripcal/internal/cache"
	"tripcal/internal/calendar"
	"tripcal/internal/core"
	"tripcal/internal/document"
	"tripcal/internal/metrics"
	"tripcal/internal/overlay"
)

// Publisher announces overlay changes to other processes.
type Publisher interface {
	PublishOverlayChanged(ctx context.Context, op, dateKey, activityID string) error
}

// Options configures an ItineraryService. Zero values are usable.
type Options struct {
	ReferenceCurrency string
	Rates             budget.Rates
	CacheSize         int
	CacheTTL          time.Duration
	Publisher         Publisher
	Metrics           *metrics.Collector
}

// ItineraryService serves the projected calendar with the user overlay
// merged in, and the budget roll-up over both.
type ItineraryService struct {
	source    DocumentSource
	overlays  overlay.Store
	publisher Publisher
	metrics   *metrics.Collector
	rates     budget.Rates
	currency  string

	cache *cache.LRUCache[[]core.DayEntry]
	group singleflight.Group
	now   func() time.Time
}

func NewItineraryService(source DocumentSource, overlays overlay.Store, opts Options) *ItineraryService {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	return &ItineraryService{
		source:    source,
		overlays:  overlays,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		rates:     opts.Rates,
		currency:  core.NormalizeCurrency(opts.ReferenceCurrency, budget.DefaultCurrency),
		cache:     cache.NewLRUCache[[]core.DayEntry](opts.CacheSize, opts.CacheTTL),
		now:       time.Now,
	}
}

// Cache exposes the projection cache for periodic cleanup.
func (s *ItineraryService) Cache() cache.Cleaner {
	return s.cache
}

// Document loads the current document and its content hash.
func (s *ItineraryService) Document(ctx context.Context) (*core.Document, string, error) {
	doc, err := s.source.Load(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load document: %w", err)
	}
	hash, err := document.Hash(doc)
	if err != nil {
		return nil, "", err
	}
	return doc, hash, nil
}

// Ready reports whether the document can be loaded.
func (s *ItineraryService) Ready(ctx context.Context) error {
	_, _, err := s.Document(ctx)
	return err
}

// Days returns the projection of the current document without the overlay.
// The returned entries are shared with the cache and must not be modified.
func (s *ItineraryService) Days(ctx context.Context) ([]core.DayEntry, error) {
	doc, hash, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, doc, hash)
}

func (s *ItineraryService) project(ctx context.Context, doc *core.Document, hash string) ([]core.DayEntry, error) {
	if days, ok := s.cache.Get(hash); ok {
		s.metrics.CacheHit()
		return days, nil
	}
	s.metrics.CacheMiss()

	v, err, _ := s.group.Do(hash, func() (any, error) {
		start := time.Now()
		days, err := calendar.Project(doc, calendar.Options{})
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveProjection(time.Since(start).Seconds(), len(days))
		if empty := calendar.EmptySpans(doc.Trips); len(empty) > 0 {
			slog.WarnContext(ctx, "Segments with empty or malformed spans were skipped", "ids", empty)
		}
		s.cache.Set(hash, days)
		return days, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.DayEntry), nil
}

// Calendar returns the days with the user overlay merged in. When today is a
// date key the matching day is flagged.
func (s *ItineraryService) Calendar(ctx context.Context, today string) ([]core.DayEntry, error) {
	days, err := s.Days(ctx)
	if err != nil {
		return nil, err
	}
	ov, err := s.overlays.ReadOverlay(ctx)
	if err != nil {
		return nil, fmt.Errorf("read overlay: %w", err)
	}
	out := overlay.ApplyAll(days, ov)
	if today != "" {
		for i := range out {
			out[i].IsToday = out[i].DateKey == today
		}
	}
	return out, nil
}

// Budget rolls up the current calendar and overlay. A non-nil total
// overrides the document's budget.
func (s *ItineraryService) Budget(ctx context.Context, total *float64) (core.BudgetSummary, error) {
	summary, _, err := s.budget(ctx, total)
	return summary, err
}

func (s *ItineraryService) budget(ctx context.Context, total *float64) (core.BudgetSummary, string, error) {
	doc, hash, err := s.Document(ctx)
	if err != nil {
		return core.BudgetSummary{}, "", err
	}
	days, err := s.project(ctx, doc, hash)
	if err != nil {
		return core.BudgetSummary{}, "", err
	}
	ov, err := s.overlays.ReadOverlay(ctx)
	if err != nil {
		return core.BudgetSummary{}, "", fmt.Errorf("read overlay: %w", err)
	}

	b := core.Budget{Currency: s.currency}
	if doc.Budget != nil {
		b.Total = doc.Budget.Total
		b.Currency = core.NormalizeCurrency(doc.Budget.Currency, s.currency)
	}
	if total != nil {
		b.Total = *total
	}
	summary := budget.Rollup(days, ov, b, s.rates)
	s.metrics.ObserveBudget(summary.Total, summary.PercentUsed)
	return summary, hash, nil
}

// Snapshot computes a budget snapshot ready to be stored.
func (s *ItineraryService) Snapshot(ctx context.Context, trigger string) (core.BudgetSnapshot, error) {
	summary, hash, err := s.budget(ctx, nil)
	if err != nil {
		return core.BudgetSnapshot{}, err
	}
	return core.BudgetSnapshot{
		TakenAt:      s.now().UTC(),
		Trigger:      trigger,
		DocumentHash: hash,
		Summary:      summary,
	}, nil
}

// AddActivity stores a user activity on the date and announces the change.
// An activity without an id gets a random one.
func (s *ItineraryService) AddActivity(ctx context.Context, dateKey string, item core.ActivityItem) (core.ActivityItem, error) {
	if _, ok := calendar.ParseDay(dateKey); !ok {
		return core.ActivityItem{}, core.ErrInvalidDate
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Currency = core.NormalizeCurrency(item.Currency, "")
	item.IsUserAdded = true
	if err := item.Validate(); err != nil {
		return core.ActivityItem{}, err
	}
	if err := s.overlays.AddActivity(ctx, dateKey, item); err != nil {
		return core.ActivityItem{}, fmt.Errorf("add activity: %w", err)
	}
	s.metrics.OverlayChanged("add")
	s.publish(ctx, "add", dateKey, item.ID)
	return item, nil
}

// DeleteActivity hides an activity on the date and announces the change.
func (s *ItineraryService) DeleteActivity(ctx context.Context, dateKey, id string) error {
	if _, ok := calendar.ParseDay(dateKey); !ok {
		return core.ErrInvalidDate
	}
	if err := s.overlays.DeleteActivity(ctx, dateKey, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	s.metrics.OverlayChanged("delete")
	s.publish(ctx, "delete", dateKey, id)
	return nil
}

// publish never fails the caller: the overlay is already persisted.
func (s *ItineraryService) publish(ctx context.Context, op, dateKey, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping overlay change event")
		return
	}
	if err := s.publisher.PublishOverlayChanged(ctx, op, dateKey, id); err != nil {
		s.metrics.PublishFailed()
		slog.ErrorContext(ctx, "Failed to publish overlay change",
			"op", op, "date", dateKey, "activity_id", id, "error", err)
	}
}
