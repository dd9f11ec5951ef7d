package itinerary

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/trip"
	"ai-trip-planner/internal/wizard"
)

//go:embed planner_prompt.md
var plannerPrompt string

//go:embed adapt_prompt.md
var adaptPrompt string

var (
	plannerTmpl = template.Must(template.New("Planner").Parse(plannerPrompt))
	adaptTmpl   = template.Must(template.New("Adapter").Parse(adaptPrompt))
)

// ErrEmptyFeedback is returned when Adapt is called without new context.
var ErrEmptyFeedback = errors.New("adaptation context is empty")

// GenerateResult holds the model output and execution metadata.
type GenerateResult struct {
	Content string
	Meta    shared.AgentMeta
}

// Generator asks a language model for itineraries.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a new Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

type plannerData struct {
	Destination   string
	StartDate     string
	EndDate       string
	Days          int
	Travelers     int
	TravelStyle   string
	Interests     string
	Accommodation string
	BudgetTier    string
	DietaryNeeds  string
	MustTryFoods  string
	Inspiration   string
}

// Generate drafts an itinerary for t. inspiration is optional page text.
func (g *Generator) Generate(ctx context.Context, t trip.Trip, inspiration string) (GenerateResult, error) {
	prompt, err := buildPrompt(plannerTmpl, plannerData{
		Destination:   t.Destination,
		StartDate:     t.StartDate.Format(wizard.DateLayout),
		EndDate:       t.EndDate.Format(wizard.DateLayout),
		Days:          t.Days(),
		Travelers:     t.NumberOfTravelers,
		TravelStyle:   t.TravelStyle,
		Interests:     t.Interests,
		Accommodation: t.AccommodationStyle,
		BudgetTier:    t.BudgetTier,
		DietaryNeeds:  t.DietaryNeeds,
		MustTryFoods:  t.MustTryFoods,
		Inspiration:   inspiration,
	})
	if err != nil {
		return GenerateResult{}, err
	}
	return g.run(ctx, "Planner", prompt)
}

// Adapt revises current in light of feedback such as "it is raining".
func (g *Generator) Adapt(ctx context.Context, t trip.Trip, current, feedback string) (GenerateResult, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return GenerateResult{}, ErrEmptyFeedback
	}

	prompt, err := buildPrompt(adaptTmpl, struct {
		Destination string
		Feedback    string
		Current     string
	}{t.Destination, feedback, current})
	if err != nil {
		return GenerateResult{}, err
	}
	return g.run(ctx, "Adapter", prompt)
}

func (g *Generator) run(ctx context.Context, agent, prompt string) (GenerateResult, error) {
	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("%s generation failed: %w", strings.ToLower(agent), err)
	}

	meta := shared.AgentMeta{
		AgentName: agent,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	return GenerateResult{Content: cleanReply(resp.Content), Meta: meta}, nil
}

// cleanReply strips prose and fences around a JSON reply. Replies without
// JSON are kept verbatim and later shown as raw content.
func cleanReply(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if json.Valid([]byte(trimmed)) {
		return trimmed
	}
	if extracted, err := llm.ExtractJSON(reply); err == nil {
		if v, ok := decode(extracted); ok && structured(v) {
			return extracted
		}
	}
	return reply
}

func buildPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return buf.String(), nil
}
