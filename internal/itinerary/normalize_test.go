package itinerary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeValue(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func daysJSON(t *testing.T, days []Day) string {
	t.Helper()
	data, err := json.Marshal(days)
	require.NoError(t, err)
	return string(data)
}

func TestNormalize_Comprehensive(t *testing.T) {
	in := decodeValue(t, `{"itinerary": [{"title": "Day 1"}], "trip_summary": "Fun trip"}`)

	res := Normalize(in)
	require.Equal(t, ShapeComprehensive, res.Shape)
	require.True(t, res.Renderable())

	it := res.Itinerary
	assert.Equal(t, DefaultTitle, it.Title)
	assert.Equal(t, "Fun trip", it.Description)
	assert.Equal(t, 1, it.TotalDays)
	require.Len(t, it.Days, 1)
	assert.Equal(t, "Day 1", it.Days[0].Title)
	assert.JSONEq(t, `[{"title": "Day 1"}]`, daysJSON(t, it.Days))
	assert.Equal(t, []string{}, it.EssentialTips)
}

func TestNormalize_ComprehensiveMapsOptionalFields(t *testing.T) {
	in := decodeValue(t, `{
		"itinerary": [{"day": 1}, {"day": 2}],
		"overall_budget_breakdown": {"food": "₹3000", "stay": 12000},
		"essential_travel_tips": ["Carry cash", "Learn greetings"]
	}`)

	res := Normalize(in)
	require.Equal(t, ShapeComprehensive, res.Shape)
	it := res.Itinerary
	assert.Equal(t, DefaultDescription, it.Description)
	assert.Equal(t, 2, it.TotalDays)
	assert.Equal(t, map[string]string{"food": "₹3000", "stay": "12000"}, it.BudgetBreakdown)
	assert.Equal(t, []string{"Carry cash", "Learn greetings"}, it.EssentialTips)
}

func TestNormalize_ItineraryWinsOverDays(t *testing.T) {
	in := decodeValue(t, `{"itinerary": [{"title": "A"}], "days": [{"title": "B"}, {"title": "C"}]}`)

	res := Normalize(in)
	require.Equal(t, ShapeComprehensive, res.Shape)
	require.Len(t, res.Itinerary.Days, 1)
	assert.Equal(t, "A", res.Itinerary.Days[0].Title)
}

func TestNormalize_NonArrayItineraryFallsThroughToDays(t *testing.T) {
	in := decodeValue(t, `{"itinerary": "see below", "days": [{"title": "B"}]}`)

	res := Normalize(in)
	assert.Equal(t, ShapeDays, res.Shape)
}

func TestNormalize_DaysSchema(t *testing.T) {
	in := decodeValue(t, `{
		"title": "Goa Getaway",
		"description": "Sun and sand",
		"days": [{"title": "Arrive", "food_suggestions": {"dinner": "Fish thali"}}],
		"tips": ["Sunscreen"]
	}`)

	res := Normalize(in)
	require.Equal(t, ShapeDays, res.Shape)
	it := res.Itinerary
	assert.Equal(t, "Goa Getaway", it.Title)
	assert.Equal(t, "Sun and sand", it.Description)
	assert.Equal(t, 1, it.TotalDays)
	assert.Equal(t, []string{"Sunscreen"}, it.Tips)
	assert.Equal(t, []string{}, it.EssentialTips)
	assert.JSONEq(t, `{"dinner": "Fish thali"}`, string(it.Days[0].FoodSuggestions))
}

func TestNormalize_DaysSchemaKeepsTotalDays(t *testing.T) {
	in := decodeValue(t, `{"totalDays": 5, "days": [{}, {}], "essentialTips": ["Visa"]}`)

	res := Normalize(in)
	require.Equal(t, ShapeDays, res.Shape)
	assert.Equal(t, 5, res.Itinerary.TotalDays)
	assert.Equal(t, []string{"Visa"}, res.Itinerary.EssentialTips)
	assert.Equal(t, DefaultTitle, res.Itinerary.DisplayTitle())
	assert.Equal(t, DefaultDescription, res.Itinerary.DisplayDescription())
}

func TestNormalize_Array(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		days := make([]any, n)
		for i := range days {
			days[i] = map[string]any{"day": float64(i + 1)}
		}

		res := Normalize(days)
		require.Equal(t, ShapeArray, res.Shape)
		assert.Len(t, res.Itinerary.Days, n)
		assert.Equal(t, n, res.Itinerary.TotalDays)
		assert.Equal(t, DefaultTitle, res.Itinerary.Title)
		assert.Equal(t, DefaultDescription, res.Itinerary.Description)
	}
}

func TestNormalize_EmptyDays(t *testing.T) {
	tests := map[string]string{
		"BareArray":     `[]`,
		"Comprehensive": `{"itinerary": []}`,
		"DaysSchema":    `{"title": "x", "days": []}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			res := Normalize(decodeValue(t, in))
			assert.Equal(t, ShapeEmptyDays, res.Shape)
			assert.False(t, res.Renderable())
			assert.Nil(t, res.Itinerary)
		})
	}
}

func TestNormalize_RawString(t *testing.T) {
	res := Normalize("Some plain text")
	assert.Equal(t, ShapeRawString, res.Shape)
	assert.Equal(t, "Some plain text", res.Content)
	assert.False(t, res.Renderable())
}

func TestNormalize_Unrecognized(t *testing.T) {
	tests := map[string]any{
		"Null":      nil,
		"Number":    float64(42),
		"Bool":      true,
		"Object":    map[string]any{"plan": "later"},
		"DaysIsMap": map[string]any{"days": map[string]any{"1": "x"}},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			res := Normalize(in)
			assert.Equal(t, ShapeUnrecognized, res.Shape)
			assert.Nil(t, res.Itinerary)
			assert.NotEmpty(t, res.Content)
		})
	}

	res := Normalize(map[string]any{"plan": "later"})
	assert.JSONEq(t, `{"plan": "later"}`, res.Content)
	assert.Equal(t, "null", Normalize(nil).Content)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	raw := `{"itinerary": [{"title": "Day 1", "activities": [{"cost": 10}]}], "trip_summary": "s"}`
	in := decodeValue(t, raw)

	Normalize(in)

	after, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(after))
}

func TestNormalize_IdempotentOnCanonical(t *testing.T) {
	inputs := []string{
		`{"itinerary": [{"title": "Day 1", "activities": [{"time": "9am"}]}, "odd"], "trip_summary": "Fun"}`,
		`{"days": [{"title": "A", "extra": {"k": [1, 2]}}], "title": "T"}`,
		`[{"title": "X"}, {"title": "Y"}]`,
	}

	for _, in := range inputs {
		first := Normalize(decodeValue(t, in))
		require.True(t, first.Renderable())

		second := Normalize(first.Itinerary)
		require.True(t, second.Renderable())
		assert.Equal(t, ShapeDays, second.Shape)
		assert.JSONEq(t, daysJSON(t, first.Itinerary.Days), daysJSON(t, second.Itinerary.Days))
		assert.Equal(t, first.Itinerary.Title, second.Itinerary.Title)
		assert.Equal(t, first.Itinerary.TotalDays, second.Itinerary.TotalDays)
	}
}

func TestNormalize_UnknownDayFieldsPassThrough(t *testing.T) {
	in := decodeValue(t, `[{"title": "A", "weather": {"high": 31}, "practical_tips": ["Hydrate"]}, 7]`)

	res := Normalize(in)
	require.Equal(t, ShapeArray, res.Shape)
	assert.JSONEq(t, `[{"title": "A", "weather": {"high": 31}, "practical_tips": ["Hydrate"]}, 7]`, daysJSON(t, res.Itinerary.Days))
	assert.Equal(t, 2, res.Itinerary.TotalDays)
	assert.Empty(t, res.Itinerary.Days[1].Title)
}

func TestNormalizeJSON(t *testing.T) {
	assert.Equal(t, ShapeArray, NormalizeJSON([]byte(`[{"title": "x"}]`)).Shape)
	assert.Equal(t, ShapeRawString, NormalizeJSON([]byte(`"quoted"`)).Shape)

	res := NormalizeJSON([]byte("not json at all"))
	assert.Equal(t, ShapeRawString, res.Shape)
	assert.Equal(t, "not json at all", res.Content)

	assert.Equal(t, ShapeDays, Normalize(json.RawMessage(`{"days": [{}]}`)).Shape)
}

func TestDay_TolerantDecoding(t *testing.T) {
	var d Day
	require.NoError(t, json.Unmarshal([]byte(`{
		"day": "3",
		"title": "Old Town",
		"overview": 12,
		"activities": [
			{"time": "09:00", "title": "Walk", "cost": "Free", "tips": "Wear shoes", "booking_info": {"url": "x"}},
			"lunch",
			{"title": "Museum", "estimated_cost": 15, "tips": ["Go early", 5, null]}
		]
	}`), &d))

	assert.Equal(t, 3, d.Number)
	assert.Equal(t, "Old Town", d.Title)
	assert.Equal(t, "12", d.Overview)
	require.Len(t, d.Activities, 2)
	assert.Equal(t, "Free", d.Activities[0].EstimatedCost)
	assert.Equal(t, []string{"Wear shoes"}, d.Activities[0].Tips)
	assert.JSONEq(t, `{"url": "x"}`, string(d.Activities[0].BookingInfo))
	assert.Equal(t, "15", d.Activities[1].EstimatedCost)
	assert.Equal(t, []string{"Go early", "5"}, d.Activities[1].Tips)
}

func TestDay_MarshalWithoutRaw(t *testing.T) {
	d := Day{Number: 1, Title: "Built", Activities: []Activity{{Title: "Hike"}}}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day": 1, "title": "Built", "activities": [{"title": "Hike"}]}`, string(data))
	assert.Nil(t, d.source())
}
