// Package sqlite implements the change journal on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// Journal stores received messages in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal at path and applies the schema.
//
// The database is configured with:
//   - WAL mode so the CLI can read while a feed is writing
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append stores msg and returns its row id.
func (j *Journal) Append(ctx context.Context, msg domain.Message, receivedAt time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO change_events (received_at, topic, event, ref, frame)
		VALUES (?, ?, ?, ?, ?)
	`,
		receivedAt.UnixNano(),
		msg.Topic,
		msg.Event,
		msg.Ref,
		string(msg.Raw),
	)
	if err != nil {
		return 0, fmt.Errorf("append journal entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append journal entry: %w", err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, received_at, topic, event, ref, frame
		FROM change_events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			e        domain.JournalEntry
			received int64
			frame    string
		)
		if err := rows.Scan(&e.ID, &received, &e.Topic, &e.Event, &e.Ref, &frame); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.ReceivedAt = time.Unix(0, received).UTC()
		e.Frame = []byte(frame)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// Prune deletes entries received before cutoff.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`DELETE FROM change_events WHERE received_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return n, nil
}

// Count returns the number of stored entries.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM change_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}

var _ ports.Journal = (*Journal)(nil)
