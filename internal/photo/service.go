package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/storage"
	"ai-trip-planner/internal/trip"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service manages trip photos for the session user.
type Service struct {
	trips *trip.Service
	repo  *Repository
	blobs storage.BlobStore
	log   zerolog.Logger
}

// NewService creates a new photo Service.
func NewService(trips *trip.Service, repo *Repository, blobs storage.BlobStore, log zerolog.Logger) *Service {
	return &Service{
		trips: trips,
		repo:  repo,
		blobs: blobs,
		log:   log.With().Str("component", "photo").Logger(),
	}
}

// Upload stores every non-empty file and returns the created photos. The
// batch is all or nothing: types are checked before anything is written, and
// a storage failure removes the photos already stored by this call.
func (s *Service) Upload(ctx context.Context, sess session.Session, tripID int64, files []Upload) ([]Photo, error) {
	if _, err := s.trips.Get(ctx, sess, tripID); err != nil {
		return nil, err
	}

	type pending struct {
		photo Photo
		data  []byte
	}
	var batch []pending
	for _, f := range files {
		if len(f.Data) == 0 {
			continue
		}

		mimeType := f.ContentType
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(f.Data)
		}
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, f.Filename, mimeType)
		}

		id := uuid.NewString()
		batch = append(batch, pending{
			photo: Photo{
				ID:           id,
				TripID:       tripID,
				OriginalName: filepath.Base(f.Filename),
				ObjectKey:    fmt.Sprintf("trips/%d/%s%s", tripID, id, strings.ToLower(filepath.Ext(f.Filename))),
				MimeType:     mimeType,
				Size:         int64(len(f.Data)),
				UploadedAt:   time.Now().UTC().Truncate(time.Second),
			},
			data: f.Data,
		})
	}

	var saved []Photo
	for _, item := range batch {
		p := item.photo
		if err := s.blobs.Put(ctx, p.ObjectKey, bytes.NewReader(item.data), p.Size, p.MimeType); err != nil {
			s.rollback(ctx, saved)
			return nil, fmt.Errorf("failed to store %s: %w", p.OriginalName, err)
		}
		if err := s.repo.Create(ctx, p); err != nil {
			s.removeBlob(ctx, p)
			s.rollback(ctx, saved)
			return nil, err
		}
		saved = append(saved, p)
	}

	s.log.Info().Int64("trip_id", tripID).Int("count", len(saved)).Msg("photos uploaded")
	return saved, nil
}

// rollback removes photos stored earlier in a failed upload.
func (s *Service) rollback(ctx context.Context, photos []Photo) {
	for _, p := range photos {
		if err := s.repo.Delete(ctx, p.ID); err != nil {
			s.log.Warn().Err(err).Str("photo_id", p.ID).Msg("failed to roll back photo row")
		}
		s.removeBlob(ctx, p)
	}
}

// List returns the photos of one of the session user's trips.
func (s *Service) List(ctx context.Context, sess session.Session, tripID int64) ([]Photo, error) {
	if _, err := s.trips.Get(ctx, sess, tripID); err != nil {
		return nil, err
	}
	return s.repo.ListByTrip(ctx, tripID)
}

// Data returns the bytes and metadata of a photo.
func (s *Service) Data(ctx context.Context, sess session.Session, photoID string) ([]byte, *Photo, error) {
	p, err := s.owned(ctx, sess, photoID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, p.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load photo %s: %w", photoID, err)
	}
	return data, p, nil
}

// Delete removes a photo. The row goes first; a blob that cannot be
// removed is only logged.
func (s *Service) Delete(ctx context.Context, sess session.Session, photoID string) error {
	p, err := s.owned(ctx, sess, photoID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, photoID); err != nil {
		return err
	}
	s.removeBlob(ctx, *p)
	return nil
}

// PurgeTrip deletes all photos of a removed trip.
func (s *Service) PurgeTrip(ctx context.Context, tripID int64) error {
	photos, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return err
	}
	for _, p := range photos {
		if err := s.repo.Delete(ctx, p.ID); err != nil {
			return err
		}
		s.removeBlob(ctx, p)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, sess session.Session, photoID string) (*Photo, error) {
	p, err := s.repo.Get(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if _, err := s.trips.Get(ctx, sess, p.TripID); err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) removeBlob(ctx context.Context, p Photo) {
	if err := s.blobs.Delete(ctx, p.ObjectKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn().Err(err).Str("photo_id", p.ID).Str("key", p.ObjectKey).Msg("failed to delete photo blob")
	}
}
