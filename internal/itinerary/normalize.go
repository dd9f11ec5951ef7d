package itinerary

import (
	"encoding/json"
	"fmt"
)

const (
	DefaultTitle       = "Your Travel Itinerary"
	DefaultDescription = "Explore amazing destinations with this personalized plan."
)

// Shape names the structure a payload was recognised as.
type Shape string

const (
	ShapeComprehensive Shape = "comprehensive-schema"
	ShapeDays          Shape = "days-schema"
	ShapeArray         Shape = "array-schema"
	ShapeRawString     Shape = "raw-string"
	ShapeUnrecognized  Shape = "unrecognized-structure"
	ShapeEmptyDays     Shape = "empty-days"
)

// Result is the outcome of Normalize. Itinerary is set only for renderable
// shapes. Content holds the verbatim text for ShapeRawString and an indented
// dump of the input for ShapeUnrecognized.
type Result struct {
	Shape     Shape      `json:"shape"`
	Itinerary *Itinerary `json:"itinerary,omitempty"`
	Content   string     `json:"content,omitempty"`
}

// Renderable reports whether the result carries a canonical itinerary.
func (r Result) Renderable() bool {
	switch r.Shape {
	case ShapeComprehensive, ShapeDays, ShapeArray:
		return r.Itinerary != nil
	}
	return false
}

// Normalize classifies a decoded JSON value and maps it to the canonical
// Itinerary. It accepts the values produced by encoding/json decoding into
// an interface (maps, slices, strings, float64, bool, nil) as well as
// Itinerary, *Itinerary and json.RawMessage. It never fails and never
// modifies its input.
func Normalize(v any) Result {
	switch val := v.(type) {
	case Itinerary:
		return Normalize(toValue(val))
	case *Itinerary:
		if val == nil {
			return Normalize(nil)
		}
		return Normalize(toValue(val))
	case json.RawMessage:
		return NormalizeJSON(val)
	}

	var (
		shape Shape
		it    *Itinerary
	)

	switch val := v.(type) {
	case map[string]any:
		if days, ok := val["itinerary"].([]any); ok {
			shape, it = ShapeComprehensive, fromComprehensive(val, days)
		} else if days, ok := val["days"].([]any); ok {
			shape, it = ShapeDays, fromDaysSchema(val, days)
		}
	case []any:
		shape, it = ShapeArray, fromArray(val)
	case string:
		return Result{Shape: ShapeRawString, Content: val}
	}

	if it == nil {
		return Result{Shape: ShapeUnrecognized, Content: dump(v)}
	}
	if len(it.Days) == 0 {
		return Result{Shape: ShapeEmptyDays}
	}
	return Result{Shape: shape, Itinerary: it}
}

// NormalizeJSON decodes data and normalizes it. Bytes that are not valid
// JSON are treated as a raw string.
func NormalizeJSON(data []byte) Result {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Result{Shape: ShapeRawString, Content: string(data)}
	}
	return Normalize(v)
}

func fromComprehensive(obj map[string]any, days []any) *Itinerary {
	it := &Itinerary{
		Title:           DefaultTitle,
		Description:     DefaultDescription,
		Days:            decodeDays(days),
		EssentialTips:   stringList(obj["essential_travel_tips"]),
		BudgetBreakdown: stringMap(obj["overall_budget_breakdown"]),
	}
	if s, ok := obj["trip_summary"].(string); ok && s != "" {
		it.Description = s
	}
	if it.EssentialTips == nil {
		it.EssentialTips = []string{}
	}
	it.TotalDays = len(it.Days)
	return it
}

func fromDaysSchema(obj map[string]any, days []any) *Itinerary {
	it := &Itinerary{
		Days:            decodeDays(days),
		Tips:            stringList(obj["tips"]),
		EssentialTips:   stringList(obj["essentialTips"]),
		BudgetBreakdown: stringMap(obj["budgetBreakdown"]),
	}
	if s, ok := obj["title"].(string); ok {
		it.Title = s
	}
	if s, ok := obj["description"].(string); ok {
		it.Description = s
	}
	if it.EssentialTips == nil {
		it.EssentialTips = []string{}
	}
	if n, ok := obj["totalDays"].(float64); ok && n > 0 {
		it.TotalDays = int(n)
	} else {
		it.TotalDays = len(it.Days)
	}
	return it
}

func fromArray(days []any) *Itinerary {
	it := &Itinerary{
		Title:         DefaultTitle,
		Description:   DefaultDescription,
		Days:          decodeDays(days),
		EssentialTips: []string{},
	}
	it.TotalDays = len(it.Days)
	return it
}

// decodeDays keeps one Day per element, in order.
func decodeDays(items []any) []Day {
	days := make([]Day, 0, len(items))
	for _, item := range items {
		var d Day
		data, err := json.Marshal(item)
		if err != nil {
			data = []byte("null")
		}
		_ = d.UnmarshalJSON(data)
		days = append(days, d)
	}
	return days
}

func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if val != "" {
			return []string{val}
		}
	case []any:
		var out []string
		for _, item := range val {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func stringMap(v any) map[string]string {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, item := range obj {
		if s := scalarString(item); s != "" {
			out[k] = s
		}
	}
	return out
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprint(val)
	case bool:
		return fmt.Sprint(val)
	}
	return ""
}

func toValue(it any) any {
	data, err := json.Marshal(it)
	if err != nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

func dump(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
