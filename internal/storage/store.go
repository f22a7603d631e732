// Package storage archives rendered runs in SQLite so they can be listed
// and viewed again later.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nixlim/chatprint/internal/messages"
	"github.com/nixlim/chatprint/internal/transcript"
)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run describes one archived replay of a transcript.
type Run struct {
	ID           int64
	Source       string
	CreatedAt    time.Time
	MessageCount int
}

// Archive is a SQLite-backed store of rendered runs.
type Archive struct {
	db  *sql.DB
	now func() time.Time
}

func NewArchive(dbPath string) (*Archive, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Archive{db: db, now: time.Now}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveRun stores entries as a new run and returns its id.
func (a *Archive) SaveRun(ctx context.Context, source string, entries []transcript.Entry) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (source, created_at, message_count) VALUES (?, ?, ?)",
		source, a.now().UTC().Format(timeLayout), len(entries))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (run_id, seq, kind, sender, output) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, runID, e.Seq, string(e.Kind), e.Sender, e.Output); err != nil {
			return 0, fmt.Errorf("inserting entry %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns up to limit runs, newest first.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT id, source, created_at, message_count FROM runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Source, &created, &r.MessageCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entries loads the entries of a run in replay order. An unknown run
// yields no entries.
func (a *Archive) Entries(ctx context.Context, runID int64) ([]transcript.Entry, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT seq, kind, sender, output FROM entries WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []transcript.Entry
	for rows.Next() {
		var e transcript.Entry
		var kind string
		var sender sql.NullString
		if err := rows.Scan(&e.Seq, &kind, &sender, &e.Output); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Kind = messages.Kind(kind)
		e.Sender = sender.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
