// Package worker records budget snapshots: on every overlay change
// announced over AMQP, on a cron schedule, and once at startup when the
// stored history is behind the current document.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"tripcal/internal/amqp"
	"tripcal/internal/core"
	"tripcal/internal/metrics"
)

// Snapshot triggers.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerOverlay  = "overlay"
)

// Snapshotter computes the current budget snapshot.
type Snapshotter interface {
	Snapshot(ctx context.Context, trigger string) (core.BudgetSnapshot, error)
}

// SnapshotStore persists snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap core.BudgetSnapshot) (int64, error)
	LatestSnapshot(ctx context.Context) (core.BudgetSnapshot, error)
}

type SnapshotWorker struct {
	source  Snapshotter
	store   SnapshotStore
	metrics *metrics.Collector
}

func NewSnapshotWorker(source Snapshotter, store SnapshotStore, m *metrics.Collector) *SnapshotWorker {
	return &SnapshotWorker{source: source, store: store, metrics: m}
}

// TakeSnapshot computes and stores a snapshot.
func (w *SnapshotWorker) TakeSnapshot(ctx context.Context, trigger string) (core.BudgetSnapshot, error) {
	snap, err := w.source.Snapshot(ctx, trigger)
	if err != nil {
		w.metrics.SnapshotFailed()
		return core.BudgetSnapshot{}, fmt.Errorf("compute snapshot: %w", err)
	}
	id, err := w.store.SaveSnapshot(ctx, snap)
	if err != nil {
		w.metrics.SnapshotFailed()
		return core.BudgetSnapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	snap.ID = id
	w.metrics.SnapshotStored(trigger)

	slog.InfoContext(ctx, "Stored budget snapshot",
		"snapshot_id", id,
		"trigger", trigger,
		"total", snap.Summary.Total,
		"currency", snap.Summary.Currency,
		"percent_used", snap.Summary.PercentUsed)
	return snap, nil
}

// HandleOverlayChanged processes a single overlay change message from AMQP.
// A returned error makes the consumer requeue the message.
func (w *SnapshotWorker) HandleOverlayChanged(ctx context.Context, msg *amqp.OverlayChangedMessage) error {
	slog.InfoContext(ctx, "Processing overlay change",
		"op", msg.Op,
		"date", msg.DateKey,
		"activity_id", msg.ActivityID)

	_, err := w.TakeSnapshot(ctx, TriggerOverlay)
	return err
}

// StartupCheck stores a snapshot when none exists yet or the latest one no
// longer matches the current document and its user edits. It returns
// whether one was stored.
func (w *SnapshotWorker) StartupCheck(ctx context.Context) (bool, error) {
	current, err := w.source.Snapshot(ctx, TriggerStartup)
	if err != nil {
		return false, fmt.Errorf("compute snapshot: %w", err)
	}

	latest, err := w.store.LatestSnapshot(ctx)
	switch {
	case errors.Is(err, core.ErrNotFound):
		slog.InfoContext(ctx, "No budget snapshot found on startup")
	case err != nil:
		return false, fmt.Errorf("latest snapshot: %w", err)
	case latest.DocumentHash != current.DocumentHash:
		slog.InfoContext(ctx, "Document changed since the latest snapshot",
			"snapshot_id", latest.ID)
	case !sameTotals(latest.Summary, current.Summary):
		// overlay edits made while the worker was down
		slog.InfoContext(ctx, "Budget changed since the latest snapshot",
			"snapshot_id", latest.ID,
			"previous_total", latest.Summary.Total,
			"total", current.Summary.Total)
	default:
		slog.InfoContext(ctx, "Latest budget snapshot is current",
			"snapshot_id", latest.ID,
			"taken_at", latest.TakenAt)
		return false, nil
	}

	if _, err := w.TakeSnapshot(ctx, TriggerStartup); err != nil {
		return false, err
	}
	return true, nil
}

func sameTotals(a, b core.BudgetSummary) bool {
	return a.Currency == b.Currency &&
		a.ItemCount == b.ItemCount &&
		core.ToCents(a.Total) == core.ToCents(b.Total)
}

// RunSchedule takes a snapshot on every tick of the cron spec until ctx is
// cancelled, then waits for a running snapshot to finish.
func (w *SnapshotWorker) RunSchedule(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := w.TakeSnapshot(ctx, TriggerSchedule); err != nil {
			slog.ErrorContext(ctx, "Scheduled snapshot failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}

	c.Start()
	slog.InfoContext(ctx, "Snapshot schedule started", "schedule", spec)

	<-ctx.Done()
	<-c.Stop().Done()
	slog.InfoContext(ctx, "Snapshot schedule stopped")
	return nil
}
