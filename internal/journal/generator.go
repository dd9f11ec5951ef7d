package journal

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/trip"
	"ai-trip-planner/internal/wizard"
)

//go:embed journal_prompt.md
var journalPrompt string

var journalTmpl = template.Must(template.New("Journal").Parse(journalPrompt))

// GenerateResult holds the drafted journal and execution metadata.
type GenerateResult struct {
	Journal Journal
	Meta    shared.AgentMeta
}

// Generator writes journals from trip photos with a multimodal model.
type Generator struct {
	vision llm.VisionGenerator
}

// NewGenerator creates a new Generator.
func NewGenerator(vision llm.VisionGenerator) *Generator {
	return &Generator{vision: vision}
}

// Generate drafts a journal for t from images.
func (g *Generator) Generate(ctx context.Context, t trip.Trip, images []llm.Image) (GenerateResult, error) {
	if len(images) == 0 {
		return GenerateResult{}, ErrNoPhotos
	}

	var buf bytes.Buffer
	err := journalTmpl.Execute(&buf, struct {
		Destination string
		StartDate   string
		EndDate     string
		PhotoCount  int
	}{t.Destination, t.StartDate.Format(wizard.DateLayout), t.EndDate.Format(wizard.DateLayout), len(images)})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	start := time.Now()
	resp, err := g.vision.GenerateFromImages(ctx, buf.String(), images)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("journal generation failed: %w", err)
	}

	j, err := parseJournal(resp.Content)
	if err != nil {
		return GenerateResult{}, err
	}
	j.TripID = t.ID

	return GenerateResult{
		Journal: j,
		Meta: shared.AgentMeta{
			AgentName: "Journal",
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}, nil
}

func parseJournal(reply string) (Journal, error) {
	text := strings.TrimSpace(reply)
	if !json.Valid([]byte(text)) {
		extracted, err := llm.ExtractJSON(reply)
		if err != nil {
			return Journal{}, fmt.Errorf("%w: %v", ErrInvalidJournal, err)
		}
		text = extracted
	}

	var j Journal
	if err := json.Unmarshal([]byte(text), &j); err != nil {
		return Journal{}, fmt.Errorf("%w: %v", ErrInvalidJournal, err)
	}
	if err := j.Validate(); err != nil {
		return Journal{}, err
	}
	return j, nil
}
