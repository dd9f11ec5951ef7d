package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore_RecordAndUsage(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.RecordMeta(shared.AgentMeta{
		AgentName: "Planner",
		Usage:     shared.TokenUsage{PromptTokens: 1000, CompletionTokens: 200, Model: "gemini"},
		Latency:   2 * time.Second,
	}))
	require.NoError(t, s.RecordMeta(shared.AgentMeta{
		AgentName: "Planner",
		Usage:     shared.TokenUsage{PromptTokens: 500, CompletionTokens: 100},
		Latency:   time.Second,
	}))
	require.NoError(t, s.RecordMeta(shared.AgentMeta{AgentName: "Adapter"}), "empty usage is skipped")
	require.NoError(t, s.Record(ctx, ExecutionMetric{
		AgentName:    "Journal",
		PromptTokens: 50,
		Timestamp:    time.Now().AddDate(0, 0, -20),
	}))

	daily, err := s.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), daily[0].Date)
	assert.Equal(t, 1500, daily[0].TotalPrompt)
	assert.Equal(t, 300, daily[0].TotalCompletion)
	assert.Equal(t, 2, daily[0].TotalExecution)

	agents, err := s.GetAgentUsage(ctx, 30)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "Journal", agents[0].AgentName)
	assert.Equal(t, "Planner", agents[1].AgentName)
	assert.Equal(t, int64(1500), agents[1].AvgLatencyMS)

	removed, err := s.Cleanup(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	agents, err = s.GetAgentUsage(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, agents, 1)
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), make([]byte, 2048), 0o644))

	h := GetSysHealth(filepath.Join(dir, "missing.db"), dir)
	assert.Equal(t, "0 B", h.DatabaseSize)
	assert.Equal(t, "2.0 KB", h.PhotosSize)
	assert.Greater(t, h.Goroutines, 0)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "3.0 MB", HumanSize(3*1024*1024))
}
