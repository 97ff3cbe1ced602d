package booking

import "time"

// Category is assigned by the table a booking is stored in, never inferred
// from which optional fields happen to be set.
type Category string

const (
	CategoryDayTour   Category = "DayTour"
	CategoryRoundTour Category = "RoundTour"
	CategoryEventTour Category = "EventTour"
	CategoryCustom    Category = "Custom"
)

// SubType is only meaningful for CategoryCustom.
type SubType string

const (
	SubTypeDay   SubType = "day"
	SubTypeRound SubType = "round"
)

// Booking is the common read shape of every booking collection.
type Booking struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	StartDate    time.Time `json:"start_date"` // local midnight of the start day
	Category     Category  `json:"category"`
	SubType      SubType   `json:"sub_type,omitempty"`
}

// Label is the human name of the booking kind, e.g. "Day" or "Custom round".
func (b Booking) Label() string {
	switch b.Category {
	case CategoryDayTour:
		return "Day"
	case CategoryRoundTour:
		return "Round"
	case CategoryEventTour:
		return "Event"
	case CategoryCustom:
		if b.SubType != "" {
			return "Custom " + string(b.SubType)
		}
		return "Custom"
	}
	return string(b.Category)
}

// Tag is the stored category value, including the custom sub-type.
func (b Booking) Tag() string {
	if b.Category == CategoryCustom && b.SubType != "" {
		return string(b.Category) + ":" + string(b.SubType)
	}
	return string(b.Category)
}
