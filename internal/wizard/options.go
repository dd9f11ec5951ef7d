package wizard

// Labels shown for each input.
var FieldLabels = map[Field]string{
	FieldDestination:   "Destination",
	FieldTravelers:     "Travelers",
	FieldStartDate:     "Start date",
	FieldEndDate:       "End date",
	FieldInterests:     "Interests",
	FieldAccommodation: "Accommodation",
	FieldBudgetTier:    "Budget",
	FieldTravelStyle:   "Travel style",
	FieldInspiration:   "Inspiration link",
	FieldDietaryNeeds:  "Dietary needs",
	FieldMustTryFoods:  "Must-try foods",
}

var (
	TravelerCounts = []string{"1", "2", "3", "4", "5", "6", "7", "8"}

	Interests = []string{
		"History & Heritage",
		"Adventure & Sports",
		"Food & Culinary",
		"Nature & Wildlife",
		"Art & Culture",
		"Beaches & Relaxation",
		"Shopping & Entertainment",
		"Spiritual & Religious",
	}

	AccommodationStyles = []string{
		"Budget Hotels",
		"Mid-range Hotels",
		"Luxury Hotels",
		"Hostels",
		"Guesthouses",
		"Homestays",
		"Resorts",
	}

	BudgetTiers = []string{
		"Budget (₹2k-5k/day)",
		"Standard (₹10k-20k/day)",
		"Premium (₹20k-50k/day)",
		"Luxury (₹50k+/day)",
	}

	TravelStyles = []string{
		"Solo Adventurer",
		"Couple Getaway",
		"Family Trip",
		"Group Explorer",
		"Business Traveler",
		"Backpacker",
		"Luxury Seeker",
	}
)

// Choices returns the fixed options of a field, or nil for free-text inputs.
func Choices(field Field) []string {
	switch field {
	case FieldTravelers:
		return TravelerCounts
	case FieldInterests:
		return Interests
	case FieldAccommodation:
		return AccommodationStyles
	case FieldBudgetTier:
		return BudgetTiers
	case FieldTravelStyle:
		return TravelStyles
	}
	return nil
}
