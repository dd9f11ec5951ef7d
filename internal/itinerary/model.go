package itinerary

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Itinerary is the canonical trip plan consumed by every renderer.
type Itinerary struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	TotalDays       int               `json:"totalDays"`
	Days            []Day             `json:"days"`
	Tips            []string          `json:"tips,omitempty"`
	EssentialTips   []string          `json:"essentialTips"`
	BudgetBreakdown map[string]string `json:"budgetBreakdown,omitempty"`
}

// DisplayTitle falls back to DefaultTitle when the plan carries none.
func (it *Itinerary) DisplayTitle() string {
	if it.Title == "" {
		return DefaultTitle
	}
	return it.Title
}

// DisplayDescription falls back to DefaultDescription.
func (it *Itinerary) DisplayDescription() string {
	if it.Description == "" {
		return DefaultDescription
	}
	return it.Description
}

// Day is one day of the plan. Decoding never fails: elements that are not
// objects, or fields of the wrong type, leave the typed fields empty. A
// decoded Day re-encodes to the exact JSON it was decoded from.
type Day struct {
	Number          int             `json:"day,omitempty"`
	Title           string          `json:"title,omitempty"`
	Overview        string          `json:"overview,omitempty"`
	Activities      []Activity      `json:"activities,omitempty"`
	FoodSuggestions json.RawMessage `json:"food_suggestions,omitempty"`
	PracticalTips   json.RawMessage `json:"practical_tips,omitempty"`

	raw json.RawMessage
}

// Activity is a scheduled item within a day. All fields are optional.
type Activity struct {
	Time              string          `json:"time,omitempty"`
	Title             string          `json:"title,omitempty"`
	Description       string          `json:"description,omitempty"`
	Duration          string          `json:"duration,omitempty"`
	Location          string          `json:"location,omitempty"`
	EstimatedCost     string          `json:"estimated_cost,omitempty"`
	Tips              []string        `json:"tips,omitempty"`
	BookingInfo       json.RawMessage `json:"booking_info,omitempty"`
	TravelDetails     json.RawMessage `json:"travel_details,omitempty"`
	AlternativeOption json.RawMessage `json:"alternative_option,omitempty"`
}

// source returns the JSON the day was decoded from, or nil for days built in code.
func (d Day) source() json.RawMessage {
	return d.raw
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Day) UnmarshalJSON(data []byte) error {
	*d = Day{raw: append(json.RawMessage(nil), data...)}

	fields, ok := objectFields(data)
	if !ok {
		return nil
	}

	d.Number = intField(fields["day"])
	d.Title = stringField(fields["title"])
	d.Overview = stringField(fields["overview"])
	d.FoodSuggestions = presentField(fields["food_suggestions"])
	d.PracticalTips = presentField(fields["practical_tips"])

	var items []json.RawMessage
	if json.Unmarshal(fields["activities"], &items) == nil {
		for _, item := range items {
			if a, ok := decodeActivity(item); ok {
				d.Activities = append(d.Activities, a)
			}
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Day) MarshalJSON() ([]byte, error) {
	if src := d.source(); len(src) > 0 {
		return src, nil
	}
	type plain Day
	return json.Marshal(plain(d))
}

func decodeActivity(data []byte) (Activity, bool) {
	fields, ok := objectFields(data)
	if !ok {
		return Activity{}, false
	}

	a := Activity{
		Time:              stringField(fields["time"]),
		Title:             stringField(fields["title"]),
		Description:       stringField(fields["description"]),
		Duration:          stringField(fields["duration"]),
		Location:          stringField(fields["location"]),
		EstimatedCost:     stringField(fields["estimated_cost"]),
		Tips:              stringListField(fields["tips"]),
		BookingInfo:       presentField(fields["booking_info"]),
		TravelDetails:     presentField(fields["travel_details"]),
		AlternativeOption: presentField(fields["alternative_option"]),
	}
	if a.EstimatedCost == "" {
		a.EstimatedCost = stringField(fields["cost"])
	}
	return a, true
}

func objectFields(data []byte) (map[string]json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// stringField accepts strings and renders numbers as their literal text.
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func intField(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return int(n)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}

// stringListField accepts a list of strings or a single string.
func stringListField(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := stringField(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func presentField(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}
