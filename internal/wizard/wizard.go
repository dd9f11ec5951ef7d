// Package wizard holds the three-step itinerary request form shared by the
// Telegram and command line front-ends.
package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TotalSteps is the number of wizard pages.
const TotalSteps = 3

// DateLayout is the accepted format for trip dates.
const DateLayout = "2006-01-02"

// Request is the aggregated itinerary request produced by Submit.
type Request struct {
	Destination        string `json:"destination" validate:"required,max=200"`
	NumberOfTravelers  int    `json:"numberOfTravelers" validate:"gte=1"`
	StartDate          string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate            string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Interests          string `json:"interests,omitempty"`
	AccommodationStyle string `json:"accommodationStyle,omitempty"`
	BudgetTier         string `json:"budgetTier,omitempty"`
	TravelStyle        string `json:"travelStyle,omitempty"`
	DietaryNeeds       string `json:"dietaryNeeds,omitempty"`
	MustTryFoods       string `json:"mustTryFoods,omitempty"`
	InspirationURL     string `json:"inspirationUrl,omitempty" validate:"omitempty,url"`
}

// Field identifies one input of the form.
type Field string

const (
	FieldDestination   Field = "destination"
	FieldTravelers     Field = "travelers"
	FieldStartDate     Field = "start_date"
	FieldEndDate       Field = "end_date"
	FieldInterests     Field = "interests"
	FieldAccommodation Field = "accommodation"
	FieldBudgetTier    Field = "budget_tier"
	FieldTravelStyle   Field = "travel_style"
	FieldInspiration   Field = "inspiration_url"
	FieldDietaryNeeds  Field = "dietary_needs"
	FieldMustTryFoods  Field = "must_try_foods"
)

var stepFields = map[int][]Field{
	1: {FieldDestination, FieldTravelers, FieldStartDate, FieldEndDate, FieldInterests, FieldAccommodation},
	2: {FieldBudgetTier, FieldTravelStyle, FieldInspiration},
	3: {FieldDietaryNeeds, FieldMustTryFoods},
}

var stepTitles = map[int]string{
	1: "Traveler Profile",
	2: "Preferences",
	3: "Culinary Profile",
}

// StepFields lists the inputs shown on a step.
func StepFields(step int) []Field {
	return stepFields[step]
}

// StepTitle returns the heading of a step.
func StepTitle(step int) string {
	return stepTitles[step]
}

// Wizard is the form state. The zero value is not ready; use New or Restore.
type Wizard struct {
	step   int
	Fields Request
}

// State is the serialisable form of a Wizard.
type State struct {
	Step   int     `json:"step"`
	Fields Request `json:"fields"`
}

// New starts a wizard at step 1 with one traveler.
func New() *Wizard {
	return &Wizard{step: 1, Fields: Request{NumberOfTravelers: 1}}
}

// Restore rebuilds a wizard from saved state, clamping the step into range.
func Restore(s State) *Wizard {
	return &Wizard{step: clamp(s.Step), Fields: s.Fields}
}

// State snapshots the wizard.
func (w *Wizard) State() State {
	return State{Step: w.step, Fields: w.Fields}
}

// Step returns the current 1-indexed step.
func (w *Wizard) Step() int {
	return w.step
}

// IsFinalStep reports whether the wizard is on the last page.
func (w *Wizard) IsFinalStep() bool {
	return w.step == TotalSteps
}

// IsStepValid reports whether step may be left forward with the current data.
func (w *Wizard) IsStepValid(step int) bool {
	return IsStepValid(step, w.Fields)
}

// IsStepValid checks the gate of a step against r. Only step 1 has
// mandatory inputs; steps outside the range are never valid.
func IsStepValid(step int, r Request) bool {
	switch step {
	case 1:
		return strings.TrimSpace(r.Destination) != "" &&
			r.NumberOfTravelers > 0 &&
			r.StartDate != "" &&
			r.EndDate != ""
	case 2, 3:
		return true
	}
	return false
}

// Next advances one step when the current step is valid. It reports whether
// the step changed.
func (w *Wizard) Next() bool {
	if !w.IsStepValid(w.step) || w.step >= TotalSteps {
		return false
	}
	w.step++
	return true
}

// Previous goes back one step without validation. It reports whether the
// step changed.
func (w *Wizard) Previous() bool {
	if w.step <= 1 {
		return false
	}
	w.step--
	return true
}

// CanSubmit reports whether Submit would emit a request.
func (w *Wizard) CanSubmit() bool {
	return w.step == TotalSteps && IsStepValid(1, w.Fields)
}

// Submit returns the aggregated request when on the final step with all
// mandatory fields present. The wizard state is left untouched.
func (w *Wizard) Submit() (Request, bool) {
	if !w.CanSubmit() {
		return Request{}, false
	}
	r := w.Fields
	r.Destination = strings.TrimSpace(r.Destination)
	return r, true
}

// Set parses a user supplied value into field.
func (w *Wizard) Set(field Field, value string) error {
	value = strings.TrimSpace(value)

	switch field {
	case FieldDestination:
		w.Fields.Destination = value
	case FieldTravelers:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("number of travelers must be a positive number, got %q", value)
		}
		w.Fields.NumberOfTravelers = n
	case FieldStartDate, FieldEndDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return fmt.Errorf("dates must look like 2025-03-14, got %q", value)
		}
		if field == FieldStartDate {
			w.Fields.StartDate = value
		} else {
			w.Fields.EndDate = value
		}
	case FieldInterests:
		w.Fields.Interests = value
	case FieldAccommodation:
		w.Fields.AccommodationStyle = value
	case FieldBudgetTier:
		w.Fields.BudgetTier = value
	case FieldTravelStyle:
		w.Fields.TravelStyle = value
	case FieldInspiration:
		if value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("inspiration link must start with http:// or https://")
		}
		w.Fields.InspirationURL = value
	case FieldDietaryNeeds:
		w.Fields.DietaryNeeds = value
	case FieldMustTryFoods:
		w.Fields.MustTryFoods = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Value returns the current text of field.
func (w *Wizard) Value(field Field) string {
	switch field {
	case FieldDestination:
		return w.Fields.Destination
	case FieldTravelers:
		if w.Fields.NumberOfTravelers == 0 {
			return ""
		}
		return strconv.Itoa(w.Fields.NumberOfTravelers)
	case FieldStartDate:
		return w.Fields.StartDate
	case FieldEndDate:
		return w.Fields.EndDate
	case FieldInterests:
		return w.Fields.Interests
	case FieldAccommodation:
		return w.Fields.AccommodationStyle
	case FieldBudgetTier:
		return w.Fields.BudgetTier
	case FieldTravelStyle:
		return w.Fields.TravelStyle
	case FieldInspiration:
		return w.Fields.InspirationURL
	case FieldDietaryNeeds:
		return w.Fields.DietaryNeeds
	case FieldMustTryFoods:
		return w.Fields.MustTryFoods
	}
	return ""
}

func clamp(step int) int {
	if step < 1 {
		return 1
	}
	if step > TotalSteps {
		return TotalSteps
	}
	return step
}
