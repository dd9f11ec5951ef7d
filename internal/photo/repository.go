package photo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ai-trip-planner/internal/database"
)

// Repository stores photo metadata.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts photo metadata.
func (r *Repository) Create(ctx context.Context, p Photo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO photos (id, trip_id, original_name, object_key, mime_type, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TripID, p.OriginalName, p.ObjectKey, p.MimeType, p.Size, database.FormatTime(p.UploadedAt))
	if err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

// Get returns a photo by id.
func (r *Repository) Get(ctx context.Context, id string) (*Photo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, trip_id, original_name, object_key, mime_type, size, uploaded_at
		FROM photos WHERE id = ?`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListByTrip returns a trip's photos in upload order.
func (r *Repository) ListByTrip(ctx context.Context, tripID int64) ([]Photo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trip_id, original_name, object_key, mime_type, size, uploaded_at
		FROM photos WHERE trip_id = ? ORDER BY uploaded_at, rowid`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

// Delete removes photo metadata.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func scanPhoto(s interface{ Scan(...any) error }) (*Photo, error) {
	var (
		p        Photo
		uploaded string
	)
	if err := s.Scan(&p.ID, &p.TripID, &p.OriginalName, &p.ObjectKey, &p.MimeType, &p.Size, &uploaded); err != nil {
		return nil, err
	}
	t, err := database.ParseTime(uploaded)
	if err != nil {
		return nil, err
	}
	p.UploadedAt = t
	return &p, nil
}
