// Package journal keeps an append-only SQLite record of every exchange with
// the accelerator. Nothing in a run reads the journal back; it exists for
// operators comparing runs.
package journal

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pixelstream/internal/monitoring"
)

// OutcomeOK marks a run that wrote its output image. Failed runs store the
// fault kind name instead.
const OutcomeOK = "ok"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the run journal.
type DB struct {
	*sql.DB
}

// Run is one journal row.
type Run struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	Port          string
	BaudRate      int
	Width         int
	Height        int
	InputPath     string
	OutputPath    string
	ExpectedBytes int
	ReceivedBytes int
	Outcome       string
	ErrorMessage  string
}

// Open opens (creating if needed) the journal at path and applies pending
// migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to configure journal %s: %w", path, err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	version, _, err := db.MigrateVersion()
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to read journal schema version: %w", err)
	}
	monitoring.Logf("journal %s at schema version %d", path, version)
	return db, nil
}

// Record inserts r. An empty RunID is replaced with a new UUID.
func (db *DB) Record(r *Run) error {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if r.Outcome == "" {
		return errors.New("journal: run outcome is required")
	}

	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, started_at, duration_ms, port, baud_rate, width, height,
			input_path, output_path, expected_bytes, received_bytes, outcome, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt.UnixNano(), r.Duration.Milliseconds(), r.Port, r.BaudRate,
		r.Width, r.Height, r.InputPath, r.OutputPath, r.ExpectedBytes, r.ReceivedBytes,
		r.Outcome, r.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (db *DB) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := db.Query(`
		SELECT run_id, started_at, duration_ms, port, baud_rate, width, height,
			input_path, output_path, expected_bytes, received_bytes, outcome, error_message
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, durationMs int64
		if err := rows.Scan(&r.RunID, &startedAt, &durationMs, &r.Port, &r.BaudRate, &r.Width, &r.Height,
			&r.InputPath, &r.OutputPath, &r.ExpectedBytes, &r.ReceivedBytes, &r.Outcome, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, startedAt)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
