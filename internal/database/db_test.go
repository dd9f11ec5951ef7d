package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trips.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "trips", "itineraries", "journals", "photos", "sessions", "execution_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestNewDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Second run sees ErrNoChange.
	db, err = NewDB(path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("X", 3600))

	s := FormatTime(ts)
	assert.Equal(t, "2025-03-14 08:26:53", s)

	back, err := ParseTime(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(ts))

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}
