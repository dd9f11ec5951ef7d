package itinerary

import (
	"context"
	"errors"
	"time"

	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/trip"

	"github.com/rs/zerolog"
)

// ErrNotGenerated is returned when a trip has no itinerary yet.
var ErrNotGenerated = errors.New("itinerary not generated yet")

// PageFetcher returns the readable text of a web page.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// MetaRecorder persists agent execution metadata.
type MetaRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// View is a stored itinerary together with its normalized form.
type View struct {
	TripID    int64             `json:"tripId"`
	Content   string            `json:"content"`
	Result    Result            `json:"result"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Meta      *shared.AgentMeta `json:"-"`
}

// Service generates, adapts and serves itineraries for the session user's trips.
type Service struct {
	trips   *trip.Service
	repo    *Repository
	gen     *Generator
	pages   PageFetcher
	metrics MetaRecorder
	log     zerolog.Logger
}

// NewService creates a new itinerary Service. pages may be nil.
func NewService(trips *trip.Service, repo *Repository, gen *Generator, pages PageFetcher, metrics MetaRecorder, log zerolog.Logger) *Service {
	return &Service{
		trips:   trips,
		repo:    repo,
		gen:     gen,
		pages:   pages,
		metrics: metrics,
		log:     log.With().Str("component", "itinerary").Logger(),
	}
}

// Generate drafts a fresh itinerary for the trip and stores it, replacing
// any previous one.
func (s *Service) Generate(ctx context.Context, sess session.Session, tripID int64) (*View, error) {
	t, err := s.trips.Get(ctx, sess, tripID)
	if err != nil {
		return nil, err
	}

	res, err := s.gen.Generate(ctx, *t, s.inspiration(ctx, t))
	if err != nil {
		return nil, err
	}
	return s.store(ctx, tripID, res)
}

// Regenerate is Generate for a trip that already has an itinerary.
func (s *Service) Regenerate(ctx context.Context, sess session.Session, tripID int64) (*View, error) {
	return s.Generate(ctx, sess, tripID)
}

// Adapt revises the stored itinerary with free-text context.
func (s *Service) Adapt(ctx context.Context, sess session.Session, tripID int64, feedback string) (*View, error) {
	t, err := s.trips.Get(ctx, sess, tripID)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotGenerated
	}

	res, err := s.gen.Adapt(ctx, *t, rec.Content, feedback)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, tripID, res)
}

// Get returns the stored itinerary of a trip.
func (s *Service) Get(ctx context.Context, sess session.Session, tripID int64) (*View, error) {
	if _, err := s.trips.Get(ctx, sess, tripID); err != nil {
		return nil, err
	}

	rec, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotGenerated
	}

	return &View{
		TripID:    tripID,
		Content:   rec.Content,
		Result:    Normalize(ParseContent(rec.Content)),
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (s *Service) store(ctx context.Context, tripID int64, res GenerateResult) (*View, error) {
	if s.metrics != nil {
		if err := s.metrics.RecordMeta(res.Meta); err != nil {
			s.log.Warn().Err(err).Str("agent", res.Meta.AgentName).Msg("failed to record metrics")
		}
	}

	if err := s.repo.Save(ctx, tripID, res.Content); err != nil {
		return nil, err
	}

	result := Normalize(ParseContent(res.Content))
	s.log.Info().
		Int64("trip_id", tripID).
		Str("agent", res.Meta.AgentName).
		Str("shape", string(result.Shape)).
		Int("prompt_tokens", res.Meta.Usage.PromptTokens).
		Dur("latency", res.Meta.Latency).
		Msg("itinerary stored")

	meta := res.Meta
	return &View{
		TripID:    tripID,
		Content:   res.Content,
		Result:    result,
		UpdatedAt: time.Now().UTC(),
		Meta:      &meta,
	}, nil
}

func (s *Service) inspiration(ctx context.Context, t *trip.Trip) string {
	if t.InspirationURL == "" || s.pages == nil {
		return ""
	}
	text, err := s.pages.FetchText(ctx, t.InspirationURL)
	if err != nil {
		s.log.Warn().Err(err).Str("url", t.InspirationURL).Msg("skipping inspiration page")
		return ""
	}
	return text
}
