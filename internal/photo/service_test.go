package photo

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/storage"
	"ai-trip-planner/internal/trip"
	"ai-trip-planner/internal/wizard"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// flakyStore fails deletes, or the Nth put, while keeping everything else on disk.
type flakyStore struct {
	storage.BlobStore
	failDelete bool
	failPutAt  int
	puts       int
	deleted    []string
}

func (f *flakyStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.puts++
	if f.failPutAt > 0 && f.puts == f.failPutAt {
		return errors.New("disk full")
	}
	return f.BlobStore.Put(ctx, key, r, size, contentType)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("bucket unavailable")
	}
	f.deleted = append(f.deleted, key)
	return f.BlobStore.Delete(ctx, key)
}

type fixture struct {
	svc   *Service
	trips *trip.Service
	blobs *flakyStore
	trip  *trip.Trip
}

var (
	owner    = session.Session{UserID: "alice"}
	stranger = session.Session{UserID: "eve"}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "trips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewFileStore(filepath.Join(dir, "photos"))
	require.NoError(t, err)

	f := &fixture{
		trips: trip.NewService(trip.NewRepository(db.SQL), zerolog.Nop()),
		blobs: &flakyStore{BlobStore: files},
	}
	f.svc = NewService(f.trips, NewRepository(db.SQL), f.blobs, zerolog.Nop())

	f.trip, err = f.trips.Create(context.Background(), owner, wizard.Request{
		Destination: "Kochi", NumberOfTravelers: 1, StartDate: "2025-01-01", EndDate: "2025-01-02",
	})
	require.NoError(t, err)
	return f
}

func TestService_UploadListData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Upload(ctx, owner, f.trip.ID, []Upload{
		{Filename: "Beach.JPG", ContentType: "image/jpeg", Data: []byte("jpeg")},
		{Filename: "empty.png", ContentType: "image/png"},
		{Filename: "sniffed.png", Data: pngHeader},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.Equal(t, "Beach.JPG", saved[0].OriginalName)
	assert.Regexp(t, `^trips/\d+/[0-9a-f-]{36}\.jpg$`, saved[0].ObjectKey)
	assert.Equal(t, int64(4), saved[0].Size)
	assert.Equal(t, "image/png", saved[1].MimeType)

	list, err := f.svc.List(ctx, owner, f.trip.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	data, p, err := f.svc.Data(ctx, owner, saved[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
	assert.Equal(t, saved[0].ID, p.ID)
}

func TestService_RejectsNonImages(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), owner, f.trip.ID, []Upload{
		{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
	})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestService_UploadMixedBatchStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Upload(ctx, owner, f.trip.ID, []Upload{
		{Filename: "a.png", Data: pngHeader},
		{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
	})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Nil(t, saved)
	assert.Zero(t, f.blobs.puts)

	list, err := f.svc.List(ctx, owner, f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_UploadRollsBackOnStorageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.blobs.failPutAt = 2

	saved, err := f.svc.Upload(ctx, owner, f.trip.ID, []Upload{
		{Filename: "a.png", Data: pngHeader},
		{Filename: "b.png", Data: pngHeader},
	})
	require.Error(t, err)
	assert.Nil(t, saved)
	assert.Len(t, f.blobs.deleted, 1)

	list, err := f.svc.List(ctx, owner, f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, stranger, f.trip.ID, []Upload{{Filename: "a.png", Data: pngHeader}})
	assert.ErrorIs(t, err, trip.ErrNotFound)

	saved, err := f.svc.Upload(ctx, owner, f.trip.ID, []Upload{{Filename: "a.png", Data: pngHeader}})
	require.NoError(t, err)

	_, _, err = f.svc.Data(ctx, stranger, saved[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, stranger, saved[0].ID), ErrNotFound)

	_, err = f.svc.List(ctx, stranger, f.trip.ID)
	assert.ErrorIs(t, err, trip.ErrNotFound)
}

func TestService_DeleteIsBestEffortOnBlobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Upload(ctx, owner, f.trip.ID, []Upload{{Filename: "a.png", Data: pngHeader}})
	require.NoError(t, err)

	f.blobs.failDelete = true
	require.NoError(t, f.svc.Delete(ctx, owner, saved[0].ID))

	list, err := f.svc.List(ctx, owner, f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, f.svc.Delete(ctx, owner, "missing"), ErrNotFound)
}

func TestService_PurgeTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.trips.OnDelete(f.svc)

	saved, err := f.svc.Upload(ctx, owner, f.trip.ID, []Upload{{Filename: "a.png", Data: pngHeader}})
	require.NoError(t, err)

	require.NoError(t, f.trips.Delete(ctx, owner, f.trip.ID))

	_, err = f.blobs.Get(ctx, saved[0].ObjectKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
