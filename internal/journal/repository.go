package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-trip-planner/internal/database"
)

// Repository stores one journal per trip.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts or replaces the journal of j.TripID. The Ghost post id is
// kept unless j carries a new one.
func (r *Repository) Save(ctx context.Context, j Journal) error {
	entries, err := json.Marshal(j.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode journal entries: %w", err)
	}

	now := database.FormatTime(time.Now())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO journals (trip_id, title, summary, entries, ghost_post_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trip_id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			entries = excluded.entries,
			ghost_post_id = CASE WHEN excluded.ghost_post_id = '' THEN journals.ghost_post_id ELSE excluded.ghost_post_id END,
			updated_at = excluded.updated_at`,
		j.TripID, j.Title, j.Summary, string(entries), j.GhostPostID, now, now)
	if err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	return nil
}

// Get returns the journal of a trip or ErrNotFound.
func (r *Repository) Get(ctx context.Context, tripID int64) (*Journal, error) {
	var (
		j                Journal
		entries, updated string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT trip_id, title, summary, entries, ghost_post_id, updated_at FROM journals WHERE trip_id = ?`, tripID,
	).Scan(&j.TripID, &j.Title, &j.Summary, &entries, &j.GhostPostID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	if err := json.Unmarshal([]byte(entries), &j.Entries); err != nil {
		return nil, fmt.Errorf("failed to decode journal entries: %w", err)
	}
	if j.UpdatedAt, err = database.ParseTime(updated); err != nil {
		return nil, err
	}
	return &j, nil
}

// PurgeTrip deletes the journal of a trip. Deleting a missing journal is not an error.
func (r *Repository) PurgeTrip(ctx context.Context, tripID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM journals WHERE trip_id = ?`, tripID); err != nil {
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	return nil
}
