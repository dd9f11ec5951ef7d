// Package session carries the authenticated caller through request handling.
// A Session is created once at the edge (HTTP middleware, bot update, CLI
// bootstrap) and passed explicitly to services.
package session

import (
	"context"
	"strconv"
)

// Session identifies the user on whose behalf an operation runs.
type Session struct {
	UserID   string
	Username string
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.UserID != ""
}

// ForTelegram builds the session for an allow-listed Telegram user.
func ForTelegram(telegramID int64, username string) Session {
	return Session{
		UserID:   "tg:" + strconv.FormatInt(telegramID, 10),
		Username: username,
	}
}
