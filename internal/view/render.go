package view

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/journal"
	"ai-trip-planner/internal/trip"
	"ai-trip-planner/internal/wizard"
)

// Renderer turns domain values into terminal text using a Theme.
type Renderer struct {
	theme Theme
}

// NewRenderer creates a new Renderer.
func NewRenderer(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Itinerary renders a normalized result. Each shape has its own layout.
func (r *Renderer) Itinerary(res itinerary.Result) string {
	switch res.Shape {
	case itinerary.ShapeComprehensive, itinerary.ShapeDays, itinerary.ShapeArray:
		if res.Itinerary != nil {
			return r.plan(res.Itinerary)
		}
	case itinerary.ShapeRawString:
		return r.theme.Heading.Render("Raw Itinerary Content") + "\n" + r.theme.Block.Render(res.Content) + "\n"
	case itinerary.ShapeUnrecognized:
		return r.theme.Warning.Render("Unrecognized Itinerary Structure") + "\n" +
			r.theme.Muted.Render("The itinerary could not be displayed. Raw data:") + "\n" +
			r.theme.Block.Render(res.Content) + "\n"
	case itinerary.ShapeEmptyDays:
		return r.theme.Warning.Render("No Days Found") + "\n" +
			r.theme.Muted.Render("The itinerary doesn't contain any daily plans.") + "\n"
	}
	return r.theme.Muted.Render("No itinerary to display.") + "\n"
}

func (r *Renderer) plan(it *itinerary.Itinerary) string {
	var sb strings.Builder
	sb.WriteString(r.theme.Title.Render(it.DisplayTitle()) + "\n")
	sb.WriteString(r.theme.Subtitle.Render(it.DisplayDescription()) + "\n")
	sb.WriteString(r.theme.Muted.Render(fmt.Sprintf("%d Day Adventure", len(it.Days))) + "\n")

	for i, d := range it.Days {
		sb.WriteString("\n")
		heading := fmt.Sprintf("Day %d", i+1)
		if d.Title != "" {
			heading += ": " + d.Title
		}
		sb.WriteString(r.theme.Heading.Render(heading) + "\n")
		if d.Overview != "" {
			sb.WriteString(r.theme.Subtitle.Render(d.Overview) + "\n")
		}

		for _, a := range d.Activities {
			r.activity(&sb, a)
		}

		if food := rawLines(d.FoodSuggestions); len(food) > 0 {
			sb.WriteString(r.theme.Label.Render("  Food:") + "\n")
			for _, f := range food {
				sb.WriteString("    - " + f + "\n")
			}
		}
		if tips := rawLines(d.PracticalTips); len(tips) > 0 {
			sb.WriteString(r.theme.Label.Render("  Practical tips:") + "\n")
			for _, t := range tips {
				sb.WriteString("    - " + t + "\n")
			}
		}
	}

	tips := append(append([]string{}, it.EssentialTips...), it.Tips...)
	if len(tips) > 0 {
		sb.WriteString("\n" + r.theme.Heading.Render("Travel Tips") + "\n")
		for _, t := range tips {
			sb.WriteString("  - " + t + "\n")
		}
	}

	if len(it.BudgetBreakdown) > 0 {
		sb.WriteString("\n" + r.theme.Heading.Render("Budget Breakdown") + "\n")
		keys := make([]string, 0, len(it.BudgetBreakdown))
		for k := range it.BudgetBreakdown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s %s\n", r.theme.Label.Render(k+":"), it.BudgetBreakdown[k]))
		}
	}

	return sb.String()
}

func (r *Renderer) activity(sb *strings.Builder, a itinerary.Activity) {
	line := "  * "
	if a.Time != "" {
		line += r.theme.Accent.Render(a.Time) + " "
	}
	title := a.Title
	if title == "" {
		title = "Activity"
	}
	sb.WriteString(line + r.theme.Label.Render(title) + "\n")

	if a.Description != "" {
		sb.WriteString("    " + a.Description + "\n")
	}

	var facts []string
	if a.Duration != "" {
		facts = append(facts, "Duration: "+a.Duration)
	}
	if a.Location != "" {
		facts = append(facts, "Location: "+a.Location)
	}
	if a.EstimatedCost != "" {
		facts = append(facts, "Cost: "+a.EstimatedCost)
	}
	if len(facts) > 0 {
		sb.WriteString("    " + r.theme.Muted.Render(strings.Join(facts, " | ")) + "\n")
	}

	for _, t := range a.Tips {
		sb.WriteString("    Tip: " + t + "\n")
	}
	for _, extra := range []struct {
		label string
		raw   json.RawMessage
	}{
		{"Booking", a.BookingInfo},
		{"Getting there", a.TravelDetails},
		{"Alternative", a.AlternativeOption},
	} {
		if lines := rawLines(extra.raw); len(lines) > 0 {
			sb.WriteString("    " + extra.label + ": " + strings.Join(lines, "; ") + "\n")
		}
	}
}

// Trip renders a one-block summary of a trip.
func (r *Renderer) Trip(t trip.Trip) string {
	var sb strings.Builder
	sb.WriteString(r.theme.Title.Render(fmt.Sprintf("#%d %s", t.ID, t.Destination)) + "\n")
	sb.WriteString(r.theme.Muted.Render(fmt.Sprintf("%s to %s (%d days), %d traveler(s)",
		t.StartDate.Format(wizard.DateLayout), t.EndDate.Format(wizard.DateLayout), t.Days(), t.NumberOfTravelers)) + "\n")

	for _, kv := range [][2]string{
		{"Interests", t.Interests},
		{"Accommodation", t.AccommodationStyle},
		{"Budget", t.BudgetTier},
		{"Style", t.TravelStyle},
		{"Dietary needs", t.DietaryNeeds},
		{"Must-try foods", t.MustTryFoods},
		{"Inspiration", t.InspirationURL},
	} {
		if kv[1] != "" {
			sb.WriteString(fmt.Sprintf("  %s %s\n", r.theme.Label.Render(kv[0]+":"), kv[1]))
		}
	}
	return sb.String()
}

// Journal renders a travel journal.
func (r *Renderer) Journal(j journal.Journal) string {
	var sb strings.Builder
	sb.WriteString(r.theme.Title.Render(j.Title) + "\n")
	sb.WriteString(r.theme.Subtitle.Render(j.Summary) + "\n")
	for _, e := range j.Entries {
		sb.WriteString("\n")
		if e.Date != "" {
			sb.WriteString(r.theme.Heading.Render(e.Date) + "\n")
		}
		sb.WriteString(e.Content + "\n")
	}
	if j.GhostPostID != "" {
		sb.WriteString("\n" + r.theme.Muted.Render("Published as post "+j.GhostPostID) + "\n")
	}
	return sb.String()
}

// WizardStep renders the current page of the trip form.
func (r *Renderer) WizardStep(w *wizard.Wizard) string {
	step := w.Step()
	var sb strings.Builder
	sb.WriteString(r.theme.Heading.Render(fmt.Sprintf("Step %d/%d: %s", step, wizard.TotalSteps, wizard.StepTitle(step))) + "\n")
	for _, f := range wizard.StepFields(step) {
		v := w.Value(f)
		if v == "" {
			v = r.theme.Muted.Render("not set")
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", r.theme.Label.Render(wizard.FieldLabels[f]+":"), v))
	}
	return sb.String()
}

// rawLines flattens a free-form JSON value into display lines.
func rawLines(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return flatten(v)
}

func flatten(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, strings.Join(flatten(m), ", "))
				continue
			}
			out = append(out, flatten(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			if vals := flatten(t[k]); len(vals) > 0 {
				out = append(out, k+": "+strings.Join(vals, ", "))
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
