package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection and provides methods for interacting with run history.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunEntry represents a record in the run_history table.
type RunEntry struct {
	ID        int64
	RunID     string
	Mode      string
	StartTime time.Time
	EndTime   sql.NullTime
	Status    string
	Succeeded int
	Failed    int
}

// ItemEntry represents a record in the run_items table.
type ItemEntry struct {
	RunID    string
	Target   string
	Stage    string
	Status   string
	FilePath sql.NullString
	Link     sql.NullString
	Records  int
	Attempts int
	Error    sql.NullString
	Diff     sql.NullString
}

// NewDB initializes a new DB connection and ensures the schema is set up.
func NewDB(dataSourceName string, logger zerolog.Logger) (*DB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()
	logger.Info().Str("db_path", dataSourceName).Msg("Initializing history database connection")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// sqlite allows a single writer.
	dbInstance.SetMaxOpenConns(1)

	db := &DB{
		db:     dbInstance,
		logger: logger,
	}

	if err := db.InitSchema(); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("Failed to initialize database schema")
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", dataSourceName).Msg("Database initialized and schema verified")
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the run_history and run_items tables if they don't already exist.
func (d *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE NOT NULL,
		mode TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		status TEXT NOT NULL,
		succeeded INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS run_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		target TEXT NOT NULL,
		stage TEXT NOT NULL,
		status TEXT NOT NULL,
		file_path TEXT,
		link TEXT,
		records INTEGER DEFAULT 0,
		attempts INTEGER DEFAULT 0,
		error TEXT,
		diff TEXT,
		duration_ms INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_run_items_run_id ON run_items(run_id);
	`
	if _, err := d.db.Exec(query); err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a new run with status STARTED and returns its row ID.
func (d *DB) RecordRunStart(ctx context.Context, runID, mode string, startTime time.Time) (int64, error) {
	query := `INSERT INTO run_history (run_id, mode, start_time, status) VALUES (?, ?, ?, ?)`
	result, err := d.db.ExecContext(ctx, query, runID, mode, startTime, string(models.RunStarted))
	if err != nil {
		d.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record run start")
		return 0, fmt.Errorf("failed to insert run start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	d.logger.Info().Int64("db_id", id).Str("run_id", runID).Msg("Recorded run start")
	return id, nil
}

// RecordRunCompletion stores the final summary and its items in one transaction.
func (d *DB) RecordRunCompletion(ctx context.Context, summary *models.RunSummary) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE run_history SET end_time = ?, status = ?, succeeded = ?, failed = ? WHERE run_id = ?`
	res, err := tx.ExecContext(ctx, query, summary.EndTime, string(summary.Status), summary.Succeeded(), summary.Failed(), summary.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run completion for %s: %w", summary.RunID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s was never started", summary.RunID)
	}

	itemQuery := `INSERT INTO run_items (run_id, target, stage, status, file_path, link, records, attempts, error, diff, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, item := range summary.Items {
		var diff sql.NullString
		if item.Diff != nil {
			raw, err := json.Marshal(item.Diff)
			if err != nil {
				return fmt.Errorf("failed to encode diff for %s: %w", item.Target, err)
			}
			diff = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, itemQuery,
			summary.RunID, item.Target, item.Stage, string(item.Status),
			nullString(item.FilePath), nullString(item.Link),
			item.Records, item.Attempts, nullString(item.Error), diff,
			item.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", summary.RunID, err)
	}
	d.logger.Info().Str("run_id", summary.RunID).Str("status", string(summary.Status)).Int("items", len(summary.Items)).Msg("Recorded run completion")
	return nil
}

// GetRun returns a run by its run ID.
func (d *DB) GetRun(ctx context.Context, runID string) (*RunEntry, error) {
	query := `SELECT id, run_id, mode, start_time, end_time, status, succeeded, failed FROM run_history WHERE run_id = ?`
	var entry RunEntry
	err := d.db.QueryRowContext(ctx, query, runID).Scan(
		&entry.ID, &entry.RunID, &entry.Mode, &entry.StartTime, &entry.EndTime,
		&entry.Status, &entry.Succeeded, &entry.Failed,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetItems returns the items recorded for a run in insertion order.
func (d *DB) GetItems(ctx context.Context, runID string) ([]ItemEntry, error) {
	query := `SELECT run_id, target, stage, status, file_path, link, records, attempts, error, diff FROM run_items WHERE run_id = ? ORDER BY id`
	rows, err := d.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for %s: %w", runID, err)
	}
	defer rows.Close()

	var items []ItemEntry
	for rows.Next() {
		var item ItemEntry
		if err := rows.Scan(&item.RunID, &item.Target, &item.Stage, &item.Status, &item.FilePath, &item.Link, &item.Records, &item.Attempts, &item.Error, &item.Diff); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetLastSuccessTime retrieves the start time of the most recent fully completed run.
// sql.ErrNoRows is returned as is when there is none.
func (d *DB) GetLastSuccessTime(ctx context.Context) (*time.Time, error) {
	query := `SELECT start_time FROM run_history WHERE status = ? ORDER BY start_time DESC LIMIT 1`
	var startTime time.Time
	err := d.db.QueryRowContext(ctx, query, string(models.RunCompleted)).Scan(&startTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query last run start time: %w", err)
	}
	return &startTime, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
