package itinerary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ai-trip-planner/internal/database"
)

// Record is the stored model output for a trip.
type Record struct {
	TripID    int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository stores one itinerary per trip.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts or replaces the itinerary of a trip.
func (r *Repository) Save(ctx context.Context, tripID int64, content string) error {
	now := database.FormatTime(time.Now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO itineraries (trip_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(trip_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		tripID, content, now, now)
	if err != nil {
		return fmt.Errorf("failed to save itinerary: %w", err)
	}
	return nil
}

// Get returns the itinerary of a trip, or nil when none was generated yet.
func (r *Repository) Get(ctx context.Context, tripID int64) (*Record, error) {
	var (
		rec              Record
		created, updated string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT trip_id, content, created_at, updated_at FROM itineraries WHERE trip_id = ?`, tripID,
	).Scan(&rec.TripID, &rec.Content, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load itinerary: %w", err)
	}

	if rec.CreatedAt, err = database.ParseTime(created); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = database.ParseTime(updated); err != nil {
		return nil, err
	}
	return &rec, nil
}

// PurgeTrip deletes the itinerary of a removed trip.
func (r *Repository) PurgeTrip(ctx context.Context, tripID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM itineraries WHERE trip_id = ?`, tripID); err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return nil
}
