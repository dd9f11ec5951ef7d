package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockVisionGenerator records prompts and replays a canned reply.
type MockVisionGenerator struct {
	Response    string
	ShouldError bool
	Prompts     []string
	Images      [][]llm.Image
}

func (m *MockVisionGenerator) GenerateFromImages(ctx context.Context, prompt string, images []llm.Image) (llm.ContentResponse, error) {
	m.Prompts = append(m.Prompts, prompt)
	m.Images = append(m.Images, images)
	if m.ShouldError {
		return llm.ContentResponse{}, errors.New("mock ai error")
	}
	return llm.ContentResponse{
		Content: m.Response,
		Usage:   shared.TokenUsage{PromptTokens: 1500, CompletionTokens: 400, TotalTokens: 1900, Model: "mock"},
	}, nil
}

const validJournal = `{"title": "Backwaters", "summary": "Slow days on the water.", "entries": [{"date": "2025-07-02", "content": "Houseboat at dawn."}]}`

func kochi() trip.Trip {
	return trip.Trip{
		ID:          3,
		Destination: "Kochi",
		StartDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerator_Generate(t *testing.T) {
	images := []llm.Image{{MIMEType: "image/png", Data: []byte("png")}}

	t.Run("Success", func(t *testing.T) {
		vision := &MockVisionGenerator{Response: validJournal}
		res, err := NewGenerator(vision).Generate(context.Background(), kochi(), images)
		require.NoError(t, err)

		assert.Equal(t, int64(3), res.Journal.TripID)
		assert.Equal(t, "Backwaters", res.Journal.Title)
		require.Len(t, res.Journal.Entries, 1)
		assert.Equal(t, "2025-07-02", res.Journal.Entries[0].Date)
		assert.Equal(t, "Journal", res.Meta.AgentName)
		assert.Equal(t, 1500, res.Meta.Usage.PromptTokens)

		require.Len(t, vision.Prompts, 1)
		assert.True(t, strings.Contains(vision.Prompts[0], "Kochi"))
		assert.True(t, strings.Contains(vision.Prompts[0], "2025-07-01"))
		assert.True(t, strings.Contains(vision.Prompts[0], "2025-07-04"))
		assert.Len(t, vision.Images[0], 1)
	})

	t.Run("ProseAroundJSON", func(t *testing.T) {
		vision := &MockVisionGenerator{Response: "Here you go:\n" + validJournal + "\nEnjoy!"}
		res, err := NewGenerator(vision).Generate(context.Background(), kochi(), images)
		require.NoError(t, err)
		assert.Equal(t, "Backwaters", res.Journal.Title)
	})

	t.Run("NoPhotos", func(t *testing.T) {
		vision := &MockVisionGenerator{Response: validJournal}
		_, err := NewGenerator(vision).Generate(context.Background(), kochi(), nil)
		assert.ErrorIs(t, err, ErrNoPhotos)
		assert.Empty(t, vision.Prompts)
	})

	t.Run("MissingFields", func(t *testing.T) {
		for _, reply := range []string{
			`{"title": "Only a title"}`,
			`{"title": "t", "summary": "s"}`,
			`I could not see anything in these photos.`,
		} {
			vision := &MockVisionGenerator{Response: reply}
			_, err := NewGenerator(vision).Generate(context.Background(), kochi(), images)
			assert.ErrorIs(t, err, ErrInvalidJournal, reply)
		}
	})

	t.Run("ModelError", func(t *testing.T) {
		vision := &MockVisionGenerator{ShouldError: true}
		_, err := NewGenerator(vision).Generate(context.Background(), kochi(), images)
		assert.ErrorContains(t, err, "journal generation failed")
	})
}
