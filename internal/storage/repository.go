package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripcal/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the user overlay and budget snapshots.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AddActivity implements overlay.ActivityWriter. Activities without an id
// get a random one.
func (r *SQLiteRepository) AddActivity(ctx context.Context, dateKey string, item core.ActivityItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(dateKey) == "" {
		return core.ErrInvalidDate
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.IsUserAdded = true

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_activities (id, date_key, payload) VALUES (?, ?, ?)`,
		item.ID, dateKey, string(payload))
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	slog.InfoContext(ctx, "Activity saved to SQLite", "id", item.ID, "date", dateKey, "name", item.Name)
	return nil
}

// DeleteActivity implements overlay.ActivityWriter. A user-added activity is
// removed; any other id is recorded as a deleted projected activity.
func (r *SQLiteRepository) DeleteActivity(ctx context.Context, dateKey, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_activities WHERE date_key = ? AND id = ?`, dateKey, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "User activity removed", "id", id, "date", dateKey)
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO deleted_activities (date_key, activity_id) VALUES (?, ?)`, dateKey, id)
	if err != nil {
		return fmt.Errorf("record deleted activity: %w", err)
	}
	slog.InfoContext(ctx, "Projected activity hidden", "id", id, "date", dateKey)
	return nil
}

// ReadOverlay implements overlay.OverlayReader.
func (r *SQLiteRepository) ReadOverlay(ctx context.Context) (core.Overlay, error) {
	ov := core.Overlay{
		Added:   make(map[string][]core.ActivityItem),
		Deleted: make(map[string][]string),
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT date_key, payload FROM user_activities ORDER BY date_key, created_at, rowid`)
	if err != nil {
		return ov, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dateKey, payload string
		if err := rows.Scan(&dateKey, &payload); err != nil {
			return ov, fmt.Errorf("scan activity: %w", err)
		}
		var item core.ActivityItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return ov, fmt.Errorf("decode activity: %w", err)
		}
		ov.Added[dateKey] = append(ov.Added[dateKey], item)
	}
	if err := rows.Err(); err != nil {
		return ov, fmt.Errorf("iterate activities: %w", err)
	}

	drows, err := r.db.QueryContext(ctx,
		`SELECT date_key, activity_id FROM deleted_activities ORDER BY date_key, deleted_at, rowid`)
	if err != nil {
		return ov, fmt.Errorf("query deleted activities: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		var dateKey, id string
		if err := drows.Scan(&dateKey, &id); err != nil {
			return ov, fmt.Errorf("scan deleted activity: %w", err)
		}
		ov.Deleted[dateKey] = append(ov.Deleted[dateKey], id)
	}
	if err := drows.Err(); err != nil {
		return ov, fmt.Errorf("iterate deleted activities: %w", err)
	}
	return ov, nil
}

// SaveSnapshot stores a budget snapshot and returns its id.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snap core.BudgetSnapshot) (int64, error) {
	summary, err := json.Marshal(snap.Summary)
	if err != nil {
		return 0, fmt.Errorf("encode summary: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_snapshots (taken_at, trigger_name, document_hash, currency, total_cents, summary)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.TakenAt.UTC().Format(time.RFC3339Nano), snap.Trigger, snap.DocumentHash,
		snap.Summary.Currency, core.ToCents(snap.Summary.Total), string(summary))
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	slog.InfoContext(ctx, "Budget snapshot saved to SQLite",
		"id", id,
		"trigger", snap.Trigger,
		"total", snap.Summary.Total,
		"currency", snap.Summary.Currency)
	return id, nil
}

// LatestSnapshot returns the most recent snapshot or core.ErrNotFound.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context) (core.BudgetSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, taken_at, trigger_name, document_hash, summary
		 FROM budget_snapshots ORDER BY id DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetSnapshot{}, core.ErrNotFound
	}
	if err != nil {
		return core.BudgetSnapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snap, nil
}

// PendingSnapshots returns snapshots not yet appended to the spreadsheet,
// oldest first.
func (r *SQLiteRepository) PendingSnapshots(ctx context.Context, limit int) ([]core.BudgetSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, taken_at, trigger_name, document_hash, summary
		 FROM budget_snapshots WHERE synced_at IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending snapshots: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// MarkSnapshotSynced records a successful spreadsheet append.
func (r *SQLiteRepository) MarkSnapshotSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE budget_snapshots SET synced_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("mark snapshot synced: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot marked as synced", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (core.BudgetSnapshot, error) {
	var (
		snap    core.BudgetSnapshot
		takenAt string
		summary string
	)
	if err := s.Scan(&snap.ID, &takenAt, &snap.Trigger, &snap.DocumentHash, &summary); err != nil {
		return snap, err
	}
	t, err := time.Parse(time.RFC3339Nano, takenAt)
	if err != nil {
		return snap, fmt.Errorf("parse taken_at: %w", err)
	}
	snap.TakenAt = t
	if err := json.Unmarshal([]byte(summary), &snap.Summary); err != nil {
		return snap, fmt.Errorf("decode summary: %w", err)
	}
	return snap, nil
}
