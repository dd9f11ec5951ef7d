package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"ai-trip-planner/internal/auth"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/journal"
	"ai-trip-planner/internal/photo"
	"ai-trip-planner/internal/trip"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes v with Content-Type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func tripIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tripID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trip id %q", chi.URLParam(r, "tripID"))
	}
	return id, nil
}

// statusFor maps service errors onto HTTP statuses. Unknown errors are
// internal and their message is not exposed.
func statusFor(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, trip.ErrNotFound),
		errors.Is(err, photo.ErrNotFound),
		errors.Is(err, journal.ErrNotFound),
		errors.Is(err, itinerary.ErrNotGenerated):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, trip.ErrInvalid),
		errors.Is(err, itinerary.ErrEmptyFeedback),
		errors.Is(err, journal.ErrNoPhotos),
		errors.Is(err, journal.ErrInvalidJournal),
		errors.Is(err, photo.ErrUnsupportedType),
		errors.As(err, &verrs):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, journal.ErrPublishingDisabled):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
