package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tripcal/internal/core"
	"tripcal/internal/metrics"
	"tripcal/internal/sheets"
)

// SnapshotQueue is the storage side of the snapshot sync: snapshots not yet
// exported and a way to mark them done.
type SnapshotQueue interface {
	PendingSnapshots(ctx context.Context, limit int) ([]core.BudgetSnapshot, error)
	MarkSnapshotSynced(ctx context.Context, id int64) error
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending snapshots (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of snapshots exported per poll (default: 10)
	BatchSize int
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// SyncProcessor exports stored budget snapshots to a spreadsheet. Snapshots
// that fail stay pending and are retried on the next poll.
type SyncProcessor struct {
	queue   SnapshotQueue
	writer  sheets.SnapshotWriter
	metrics *metrics.Collector
	config  SyncProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor
func NewSyncProcessor(queue SnapshotQueue, writer sheets.SnapshotWriter, m *metrics.Collector, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSyncProcessorConfig().BatchSize
	}
	return &SyncProcessor{
		queue:   queue,
		writer:  writer,
		metrics: m,
		config:  config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Snapshot sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Snapshot sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Pick up snapshots left pending by a previous run
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch exports one batch of pending snapshots and returns how many
// were synced. It stops at the first export failure since the rest of the
// batch would hit the same spreadsheet.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	snaps, err := p.queue.PendingSnapshots(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read pending snapshots", "error", err)
		return 0
	}
	if len(snaps) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing snapshot batch", "count", len(snaps))

	synced := 0
	for _, snap := range snaps {
		if ctx.Err() != nil {
			return synced
		}

		ref, err := p.writer.AppendSnapshot(ctx, snap)
		if err != nil {
			p.metrics.SnapshotFailed()
			slog.WarnContext(ctx, "Snapshot export failed, will retry",
				"snapshot_id", snap.ID, "error", err)
			return synced
		}

		if err := p.queue.MarkSnapshotSynced(ctx, snap.ID); err != nil {
			// row is appended; it stays pending and may be exported twice
			slog.ErrorContext(ctx, "Failed to mark snapshot synced",
				"snapshot_id", snap.ID, "error", err)
			continue
		}

		p.metrics.SnapshotSynced()
		synced++
		slog.InfoContext(ctx, "Exported budget snapshot",
			"snapshot_id", snap.ID, "sheets_ref", ref)
	}
	return synced
}
