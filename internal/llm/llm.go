package llm

import (
	"context"

	"ai-trip-planner/internal/shared"
)

const (
	// ModelPlanner drafts and adapts itineraries.
	ModelPlanner = "gemini-2.0-flash"
	// ModelJournal reads trip photos.
	ModelJournal = "gemini-2.0-flash"
	// ModelGroqPlanner is the fallback planner when a Groq key is configured.
	ModelGroqPlanner = "llama-3.3-70b-versatile"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// Image is an inline image passed to a multimodal model.
type Image struct {
	MIMEType string
	Data     []byte
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// VisionGenerator generates text from a prompt plus images.
type VisionGenerator interface {
	GenerateFromImages(ctx context.Context, prompt string, images []Image) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
