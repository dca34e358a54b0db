// Package archive provides durable sinks for log entries evicted from the
// in-memory audit store.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/helios-hq/meridian/pkg/audit"
)

// SQLiteArchive persists evicted log entries to a SQLite database. It is
// suitable for single-instance deployments where the bounded in-memory
// window is not enough history.
//
// The database is opened in write-ahead log (WAL) mode. Archiving the
// same entry ID twice is a no-op, so replayed batches are safe.
type SQLiteArchive struct {
	db        *sql.DB
	dbPath    string
	mu        sync.Mutex
	closeOnce sync.Once

	insertStmt *sql.Stmt
}

// SQLiteArchiveConfig configures the SQLite archive.
type SQLiteArchiveConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteArchive creates a SQLite archive with default settings.
func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	return NewSQLiteArchiveWithConfig(SQLiteArchiveConfig{
		DBPath:      dbPath,
		BusyTimeout: 5 * time.Second,
	})
}

// NewSQLiteArchiveWithConfig creates a SQLite archive with custom
// configuration.
func NewSQLiteArchiveWithConfig(cfg SQLiteArchiveConfig) (*SQLiteArchive, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports a single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	a := &SQLiteArchive{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	a.insertStmt, err = db.Prepare(`
		INSERT INTO log_entries (id, rule_id, rule_name, campaign_id, action_type, triggered, reason, metadata, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return a, nil
}

func (a *SQLiteArchive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS log_entries (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL,
		rule_name TEXT,
		campaign_id TEXT NOT NULL,
		action_type TEXT NOT NULL,
		triggered INTEGER NOT NULL,
		reason TEXT,
		metadata TEXT,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_log_entries_rule ON log_entries(rule_id);
	CREATE INDEX IF NOT EXISTS idx_log_entries_campaign ON log_entries(campaign_id);
	CREATE INDEX IF NOT EXISTS idx_log_entries_recorded ON log_entries(recorded_at);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Archive inserts the given entries in a single transaction. Entries
// whose ID is already present are skipped.
func (a *SQLiteArchive) Archive(ctx context.Context, entries []*audit.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt := tx.StmtContext(ctx, a.insertStmt)
	for _, entry := range entries {
		if entry == nil {
			continue
		}

		var metadataJSON []byte
		if entry.Metadata != nil {
			metadataJSON, err = json.Marshal(entry.Metadata)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to marshal metadata: %w", err)
			}
		}

		triggered := 0
		if entry.Triggered {
			triggered = 1
		}

		if _, err := stmt.ExecContext(ctx,
			entry.ID,
			entry.RuleID,
			entry.RuleName,
			entry.CampaignID,
			entry.ActionType,
			triggered,
			entry.Reason,
			string(metadataJSON),
			entry.Timestamp.UnixNano(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert log entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Count returns the number of archived entries.
func (a *SQLiteArchive) Count(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var count int64
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Recent returns up to limit archived entries, newest first.
func (a *SQLiteArchive) Recent(ctx context.Context, limit int) ([]*audit.LogEntry, error) {
	if limit <= 0 {
		limit = audit.DefaultQueryLimit
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, rule_id, rule_name, campaign_id, action_type, triggered, reason, metadata, recorded_at
		FROM log_entries
		ORDER BY recorded_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*audit.LogEntry
	for rows.Next() {
		var (
			entry        audit.LogEntry
			triggered    int
			metadataJSON string
			recordedAt   int64
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.RuleID,
			&entry.RuleName,
			&entry.CampaignID,
			&entry.ActionType,
			&triggered,
			&entry.Reason,
			&metadataJSON,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		entry.Triggered = triggered != 0
		entry.Timestamp = time.Unix(0, recordedAt)
		if metadataJSON != "" {
			entry.Metadata = make(map[string]string)
			if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return entries, nil
}

// Close releases database resources. Close is idempotent and safe to
// call multiple times.
func (a *SQLiteArchive) Close() error {
	var closeErr error

	a.closeOnce.Do(func() {
		if a.insertStmt != nil {
			a.insertStmt.Close()
		}
		if a.db != nil {
			_, _ = a.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = a.db.Close()
		}
	})

	return closeErr
}
