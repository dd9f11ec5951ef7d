package trip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/wizard"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Purger removes data attached to a trip when the trip is deleted.
type Purger interface {
	PurgeTrip(ctx context.Context, tripID int64) error
}

// Service enforces ownership and validation on top of the Repository.
type Service struct {
	repo     *Repository
	validate *validator.Validate
	purgers  []Purger
	log      zerolog.Logger
}

// NewService creates a new trip Service.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("component", "trip").Logger(),
	}
}

// OnDelete registers p to run after a trip is deleted.
func (s *Service) OnDelete(p Purger) {
	s.purgers = append(s.purgers, p)
}

// Create validates req and stores a new trip for the session user.
func (s *Service) Create(ctx context.Context, sess session.Session, req wizard.Request) (*Trip, error) {
	t, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	t.UserID = sess.UserID

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().Int64("trip_id", t.ID).Str("user_id", sess.UserID).Str("destination", t.Destination).Msg("trip created")
	return t, nil
}

// Get returns one of the session user's trips.
func (s *Service) Get(ctx context.Context, sess session.Session, id int64) (*Trip, error) {
	return s.repo.Get(ctx, sess.UserID, id)
}

// List returns all trips of the session user.
func (s *Service) List(ctx context.Context, sess session.Session) ([]Trip, error) {
	return s.repo.ListByUser(ctx, sess.UserID)
}

// Update replaces the trip details with req.
func (s *Service) Update(ctx context.Context, sess session.Session, id int64, req wizard.Request) (*Trip, error) {
	existing, err := s.repo.Get(ctx, sess.UserID, id)
	if err != nil {
		return nil, err
	}

	t, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	t.ID = existing.ID
	t.UserID = existing.UserID
	t.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the trip and everything attached to it. Purge failures are
// logged; the trip itself is already gone at that point.
func (s *Service) Delete(ctx context.Context, sess session.Session, id int64) error {
	if err := s.repo.Delete(ctx, sess.UserID, id); err != nil {
		return err
	}
	for _, p := range s.purgers {
		if err := p.PurgeTrip(ctx, id); err != nil {
			s.log.Warn().Err(err).Int64("trip_id", id).Msg("failed to purge trip data")
		}
	}
	s.log.Info().Int64("trip_id", id).Str("user_id", sess.UserID).Msg("trip deleted")
	return nil
}

func (s *Service) fromRequest(req wizard.Request) (*Trip, error) {
	req.Destination = strings.TrimSpace(req.Destination)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)
	req.InspirationURL = strings.TrimSpace(req.InspirationURL)

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("%w: %s failed on %s", ErrInvalid, fe.Field(), fe.Tag())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	start, _ := time.Parse(wizard.DateLayout, req.StartDate)
	end, _ := time.Parse(wizard.DateLayout, req.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalid)
	}

	return &Trip{
		Destination:        req.Destination,
		StartDate:          start,
		EndDate:            end,
		NumberOfTravelers:  req.NumberOfTravelers,
		Interests:          req.Interests,
		AccommodationStyle: req.AccommodationStyle,
		BudgetTier:         req.BudgetTier,
		TravelStyle:        req.TravelStyle,
		DietaryNeeds:       req.DietaryNeeds,
		MustTryFoods:       req.MustTryFoods,
		InspirationURL:     req.InspirationURL,
	}, nil
}
