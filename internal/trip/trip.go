package trip

import (
	"errors"
	"time"

	"ai-trip-planner/internal/wizard"
)

var (
	// ErrNotFound is returned for missing trips and trips owned by someone else.
	ErrNotFound = errors.New("trip not found")
	// ErrInvalid wraps request validation failures.
	ErrInvalid = errors.New("invalid trip")
)

// Trip is a planned journey owned by a single user.
type Trip struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"userId"`
	Destination        string    `json:"destination"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	NumberOfTravelers  int       `json:"numberOfTravelers"`
	Interests          string    `json:"interests,omitempty"`
	AccommodationStyle string    `json:"accommodationStyle,omitempty"`
	BudgetTier         string    `json:"budgetTier,omitempty"`
	TravelStyle        string    `json:"travelStyle,omitempty"`
	DietaryNeeds       string    `json:"dietaryNeeds,omitempty"`
	MustTryFoods       string    `json:"mustTryFoods,omitempty"`
	InspirationURL     string    `json:"inspirationUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Days is the inclusive length of the trip.
func (t Trip) Days() int {
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// Request converts the trip back into wizard input.
func (t Trip) Request() wizard.Request {
	return wizard.Request{
		Destination:        t.Destination,
		NumberOfTravelers:  t.NumberOfTravelers,
		StartDate:          t.StartDate.Format(wizard.DateLayout),
		EndDate:            t.EndDate.Format(wizard.DateLayout),
		Interests:          t.Interests,
		AccommodationStyle: t.AccommodationStyle,
		BudgetTier:         t.BudgetTier,
		TravelStyle:        t.TravelStyle,
		DietaryNeeds:       t.DietaryNeeds,
		MustTryFoods:       t.MustTryFoods,
		InspirationURL:     t.InspirationURL,
	}
}
