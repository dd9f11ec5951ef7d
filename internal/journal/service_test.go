package journal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/ghost"
	"ai-trip-planner/internal/photo"
	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/storage"
	"ai-trip-planner/internal/trip"
	"ai-trip-planner/internal/wizard"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBlog struct{ mock.Mock }

func (m *mockBlog) CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*ghost.Post, error) {
	args := m.Called(ctx, title, html, tags, publish)
	if p, ok := args.Get(0).(*ghost.Post); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type recorder struct{ metas []shared.AgentMeta }

func (r *recorder) RecordMeta(meta shared.AgentMeta) error {
	r.metas = append(r.metas, meta)
	return nil
}

var (
	owner    = session.Session{UserID: "alice"}
	stranger = session.Session{UserID: "eve"}
)

type fixture struct {
	svc     *Service
	trips   *trip.Service
	photos  *photo.Service
	vision  *MockVisionGenerator
	blog    *mockBlog
	metrics *recorder
	trip    *trip.Trip
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "trips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewFileStore(filepath.Join(dir, "photos"))
	require.NoError(t, err)

	f := &fixture{
		trips:   trip.NewService(trip.NewRepository(db.SQL), zerolog.Nop()),
		vision:  &MockVisionGenerator{Response: validJournal},
		blog:    &mockBlog{},
		metrics: &recorder{},
	}
	f.photos = photo.NewService(f.trips, photo.NewRepository(db.SQL), files, zerolog.Nop())
	f.svc = NewService(f.trips, f.photos, NewRepository(db.SQL), NewGenerator(f.vision), f.blog, f.metrics, zerolog.Nop())
	f.trips.OnDelete(f.svc)

	f.trip, err = f.trips.Create(context.Background(), owner, wizard.Request{
		Destination:       "Kochi",
		NumberOfTravelers: 2,
		StartDate:         "2025-07-01",
		EndDate:           "2025-07-04",
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) upload(t *testing.T) {
	t.Helper()
	_, err := f.photos.Upload(context.Background(), owner, f.trip.ID, []photo.Upload{
		{Filename: "boat.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\nboat")},
	})
	require.NoError(t, err)
}

func TestService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.upload(t)

		j, err := f.svc.Generate(ctx, owner, f.trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "Backwaters", j.Title)
		assert.Equal(t, f.trip.ID, j.TripID)
		require.Len(t, f.vision.Images, 1)
		assert.Equal(t, "image/png", f.vision.Images[0][0].MIMEType)
		require.Len(t, f.metrics.metas, 1)
		assert.Equal(t, "Journal", f.metrics.metas[0].AgentName)

		stored, err := f.svc.Get(ctx, owner, f.trip.ID)
		require.NoError(t, err)
		assert.Equal(t, j.Entries, stored.Entries)
	})

	t.Run("NoPhotos", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Generate(ctx, owner, f.trip.ID)
		assert.ErrorIs(t, err, ErrNoPhotos)
	})

	t.Run("OtherUsersTrip", func(t *testing.T) {
		f := newFixture(t)
		f.upload(t)
		_, err := f.svc.Generate(ctx, stranger, f.trip.ID)
		assert.ErrorIs(t, err, trip.ErrNotFound)
		assert.Empty(t, f.vision.Prompts)
	})
}

func TestService_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Get(ctx, owner, f.trip.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Save(ctx, owner, f.trip.ID, Journal{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidJournal)

	saved, err := f.svc.Save(ctx, owner, f.trip.ID, Journal{Title: " Edited ", Summary: "By hand"})
	require.NoError(t, err)
	assert.Equal(t, "Edited", saved.Title)
	assert.Equal(t, []Entry{}, saved.Entries)

	assert.ErrorIs(t, f.svc.Delete(ctx, stranger, f.trip.ID), trip.ErrNotFound)
	require.NoError(t, f.svc.Delete(ctx, owner, f.trip.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, owner, f.trip.ID), ErrNotFound)
}

func TestService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Save(ctx, owner, f.trip.ID, Journal{
			Title:   "Backwaters",
			Summary: "Slow days",
			Entries: []Entry{{Date: "2025-07-02", Content: "Houseboat"}},
		})
		require.NoError(t, err)

		f.blog.On("CreatePost", mock.Anything, "Backwaters", mock.MatchedBy(func(html string) bool {
			return strings.Contains(html, "<h2>2025-07-02</h2>")
		}), []string{"Kochi"}, true).Return(&ghost.Post{ID: "post-1", URL: "http://blog/backwaters"}, nil)

		post, err := f.svc.Publish(ctx, owner, f.trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "post-1", post.ID)

		stored, err := f.svc.Get(ctx, owner, f.trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "post-1", stored.GhostPostID)

		// Later edits keep the post id.
		_, err = f.svc.Save(ctx, owner, f.trip.ID, Journal{Title: "Renamed", Summary: "Slow days"})
		require.NoError(t, err)
		stored, err = f.svc.Get(ctx, owner, f.trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "post-1", stored.GhostPostID)
		f.blog.AssertExpectations(t)
	})

	t.Run("BlogError", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Save(ctx, owner, f.trip.ID, Journal{Title: "t", Summary: "s"})
		require.NoError(t, err)
		f.blog.On("CreatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).Return(nil, errors.New("503"))

		_, err = f.svc.Publish(ctx, owner, f.trip.ID)
		assert.ErrorContains(t, err, "failed to publish journal")
	})

	t.Run("Disabled", func(t *testing.T) {
		f := newFixture(t)
		f.svc.blog = nil
		_, err := f.svc.Publish(ctx, owner, f.trip.ID)
		assert.ErrorIs(t, err, ErrPublishingDisabled)
	})
}

func TestService_PurgedWithTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Save(ctx, owner, f.trip.ID, Journal{Title: "t", Summary: "s"})
	require.NoError(t, err)

	require.NoError(t, f.trips.Delete(ctx, owner, f.trip.ID))

	j, err := f.svc.repo.Get(ctx, f.trip.ID)
	assert.Nil(t, j)
	assert.ErrorIs(t, err, ErrNotFound)
}
