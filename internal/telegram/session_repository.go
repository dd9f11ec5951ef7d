package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/wizard"
)

// Session types.
const (
	SessionWizard = "wizard"
	SessionAdapt  = "adapt"
)

// Session states.
const (
	StateEditing       = "editing"
	StateAwaitingInput = "awaiting_input"
)

// Session represents an active conversation (the trip wizard or an adaptation request).
type Session struct {
	ID          int64
	UserID      string
	SessionType string
	State       string
	ContextData string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// SessionContextData holds structured data stored in the context_data JSON field.
type SessionContextData struct {
	Wizard    wizard.State `json:"wizard"`
	Awaiting  wizard.Field `json:"awaiting,omitempty"`
	MessageID int          `json:"message_id,omitempty"`
	TripID    int64        `json:"trip_id,omitempty"`
}

// SessionRepository provides access to session persistence operations.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session and returns its ID.
func (sr *SessionRepository) Create(ctx context.Context, userID, sessionType, state string, contextData SessionContextData, ttl time.Duration) (int64, error) {
	jsonData, err := json.Marshal(contextData)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	res, err := sr.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, session_type, state, context_data, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, sessionType, state, string(jsonData), database.FormatTime(now.Add(ttl)), database.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return res.LastInsertId()
}

// GetActive retrieves the most recent non-expired session for a user, or nil.
func (sr *SessionRepository) GetActive(ctx context.Context, userID string, now time.Time) (*Session, error) {
	var (
		s                Session
		expires, created string
	)
	err := sr.db.QueryRowContext(ctx, `
		SELECT id, user_id, session_type, state, context_data, expires_at, created_at
		FROM sessions
		WHERE user_id = ? AND expires_at > ?
		ORDER BY id DESC
		LIMIT 1`, userID, database.FormatTime(now),
	).Scan(&s.ID, &s.UserID, &s.SessionType, &s.State, &s.ContextData, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if s.ExpiresAt, err = database.ParseTime(expires); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = database.ParseTime(created); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetContextData unmarshals the context_data JSON field.
func (s *Session) GetContextData() (SessionContextData, error) {
	var data SessionContextData
	err := json.Unmarshal([]byte(s.ContextData), &data)
	return data, err
}

// Update updates the state and context_data for a session and extends its expiry.
func (sr *SessionRepository) Update(ctx context.Context, sessionID int64, state string, contextData SessionContextData, ttl time.Duration) error {
	jsonData, err := json.Marshal(contextData)
	if err != nil {
		return err
	}

	_, err = sr.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, context_data = ?, expires_at = ? WHERE id = ?`,
		state, string(jsonData), database.FormatTime(time.Now().Add(ttl)), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (sr *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	_, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteForUser removes every session of a user.
func (sr *SessionRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// CleanupExpired removes all expired sessions and reports how many were dropped.
func (sr *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, database.FormatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return res.RowsAffected()
}
