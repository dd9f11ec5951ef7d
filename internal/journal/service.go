package journal

import (
	"context"
	"fmt"
	"strings"

	"ai-trip-planner/internal/ghost"
	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/photo"
	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/trip"

	"github.com/rs/zerolog"
)

// MetaRecorder persists agent execution metadata.
type MetaRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// Service generates, edits and publishes journals for the session user's trips.
type Service struct {
	trips   *trip.Service
	photos  *photo.Service
	repo    *Repository
	gen     *Generator
	blog    ghost.Client
	metrics MetaRecorder
	log     zerolog.Logger
}

// NewService creates a new journal Service. blog and metrics may be nil.
func NewService(trips *trip.Service, photos *photo.Service, repo *Repository, gen *Generator, blog ghost.Client, metrics MetaRecorder, log zerolog.Logger) *Service {
	return &Service{
		trips:   trips,
		photos:  photos,
		repo:    repo,
		gen:     gen,
		blog:    blog,
		metrics: metrics,
		log:     log.With().Str("component", "journal").Logger(),
	}
}

// Generate writes a journal from the trip's photos and stores it.
func (s *Service) Generate(ctx context.Context, sess session.Session, tripID int64) (*Journal, error) {
	t, err := s.trips.Get(ctx, sess, tripID)
	if err != nil {
		return nil, err
	}

	photos, err := s.photos.List(ctx, sess, tripID)
	if err != nil {
		return nil, err
	}

	images := make([]llm.Image, 0, len(photos))
	for _, p := range photos {
		data, _, err := s.photos.Data(ctx, sess, p.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("photo_id", p.ID).Msg("skipping unreadable photo")
			continue
		}
		images = append(images, llm.Image{MIMEType: p.MimeType, Data: data})
	}

	res, err := s.gen.Generate(ctx, *t, images)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if err := s.metrics.RecordMeta(res.Meta); err != nil {
			s.log.Warn().Err(err).Msg("failed to record metrics")
		}
	}

	if err := s.repo.Save(ctx, res.Journal); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("trip_id", tripID).
		Int("photos", len(images)).
		Int("entries", len(res.Journal.Entries)).
		Dur("latency", res.Meta.Latency).
		Msg("journal generated")

	return s.repo.Get(ctx, tripID)
}

// Get returns the journal of a trip.
func (s *Service) Get(ctx context.Context, sess session.Session, tripID int64) (*Journal, error) {
	if _, err := s.trips.Get(ctx, sess, tripID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, tripID)
}

// Save stores a manually edited journal.
func (s *Service) Save(ctx context.Context, sess session.Session, tripID int64, j Journal) (*Journal, error) {
	if _, err := s.trips.Get(ctx, sess, tripID); err != nil {
		return nil, err
	}

	j.TripID = tripID
	j.Title = strings.TrimSpace(j.Title)
	j.Summary = strings.TrimSpace(j.Summary)
	if j.Entries == nil {
		j.Entries = []Entry{}
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, j); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, tripID)
}

// Delete removes the journal of a trip.
func (s *Service) Delete(ctx context.Context, sess session.Session, tripID int64) error {
	if _, err := s.trips.Get(ctx, sess, tripID); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, tripID); err != nil {
		return err
	}
	return s.repo.PurgeTrip(ctx, tripID)
}

// Publish posts the journal to the configured Ghost blog and remembers the post id.
func (s *Service) Publish(ctx context.Context, sess session.Session, tripID int64) (*ghost.Post, error) {
	if s.blog == nil {
		return nil, ErrPublishingDisabled
	}

	t, err := s.trips.Get(ctx, sess, tripID)
	if err != nil {
		return nil, err
	}
	j, err := s.repo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	post, err := s.blog.CreatePost(ctx, j.Title, RenderHTML(*j), []string{t.Destination}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to publish journal: %w", err)
	}

	j.GhostPostID = post.ID
	if err := s.repo.Save(ctx, *j); err != nil {
		return nil, err
	}

	s.log.Info().Int64("trip_id", tripID).Str("post_id", post.ID).Str("url", post.URL).Msg("journal published")
	return post, nil
}

// PurgeTrip deletes the journal of a removed trip.
func (s *Service) PurgeTrip(ctx context.Context, tripID int64) error {
	return s.repo.PurgeTrip(ctx, tripID)
}
