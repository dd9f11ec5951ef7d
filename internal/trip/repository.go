package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/wizard"
)

// Repository handles trip persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const tripColumns = `id, user_id, destination, start_date, end_date, number_of_travelers,
	interests, accommodation_style, budget_tier, travel_style, dietary_needs,
	must_try_foods, inspiration_url, created_at, updated_at`

// Create inserts a trip and fills in its ID and timestamps.
func (r *Repository) Create(ctx context.Context, t *Trip) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO trips (user_id, destination, start_date, end_date, number_of_travelers,
			interests, accommodation_style, budget_tier, travel_style, dietary_needs,
			must_try_foods, inspiration_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Destination,
		t.StartDate.Format(wizard.DateLayout), t.EndDate.Format(wizard.DateLayout),
		t.NumberOfTravelers, t.Interests, t.AccommodationStyle, t.BudgetTier,
		t.TravelStyle, t.DietaryNeeds, t.MustTryFoods, t.InspirationURL,
		database.FormatTime(now), database.FormatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read trip id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// Get returns the trip with id when owned by userID.
func (r *Repository) Get(ctx context.Context, userID string, id int64) (*Trip, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = ? AND user_id = ?`, id, userID)

	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByUser returns a user's trips, soonest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Trip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE user_id = ? ORDER BY start_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

// Update overwrites the editable fields of a trip.
func (r *Repository) Update(ctx context.Context, t *Trip) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, `
		UPDATE trips SET destination = ?, start_date = ?, end_date = ?, number_of_travelers = ?,
			interests = ?, accommodation_style = ?, budget_tier = ?, travel_style = ?,
			dietary_needs = ?, must_try_foods = ?, inspiration_url = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Destination, t.StartDate.Format(wizard.DateLayout), t.EndDate.Format(wizard.DateLayout),
		t.NumberOfTravelers, t.Interests, t.AccommodationStyle, t.BudgetTier, t.TravelStyle,
		t.DietaryNeeds, t.MustTryFoods, t.InspirationURL, database.FormatTime(now),
		t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	t.UpdatedAt = now
	return nil
}

// Delete removes a trip owned by userID.
func (r *Repository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(s scanner) (*Trip, error) {
	var (
		t                Trip
		start, end       string
		created, updated string
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Destination, &start, &end, &t.NumberOfTravelers,
		&t.Interests, &t.AccommodationStyle, &t.BudgetTier, &t.TravelStyle, &t.DietaryNeeds,
		&t.MustTryFoods, &t.InspirationURL, &created, &updated)
	if err != nil {
		return nil, err
	}

	if t.StartDate, err = time.Parse(wizard.DateLayout, start); err != nil {
		return nil, fmt.Errorf("invalid start date on trip %d: %w", t.ID, err)
	}
	if t.EndDate, err = time.Parse(wizard.DateLayout, end); err != nil {
		return nil, fmt.Errorf("invalid end date on trip %d: %w", t.ID, err)
	}
	if t.CreatedAt, err = database.ParseTime(created); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = database.ParseTime(updated); err != nil {
		return nil, err
	}
	return &t, nil
}
