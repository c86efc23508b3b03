package persist

import (
	"context"
	"fmt"
	"time"
)

// JournalEntry is one row of haunt_journal.
type JournalEntry struct {
	Kind    string // "activate", "deactivate", "reload", "creation_failed"
	MapName string
	Detail  string
	At      time.Time
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// InsertBatch writes entries in a single transaction.
func (r *JournalRepo) InsertBatch(ctx context.Context, entries []JournalEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO haunt_journal (kind, map_name, detail, created_at)
			 VALUES ($1, $2, $3, $4)`,
			e.Kind, e.MapName, e.Detail, e.At,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
