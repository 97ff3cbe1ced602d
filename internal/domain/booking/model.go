package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The four persisted shapes below are written by the booking CRUD service.
// Start dates are kept as text because imported documents mix bare dates and
// timestamps.

type DayTourBooking struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	TourID    string    `gorm:"column:tour_id;type:varchar(64);index"`
	FullName  string    `gorm:"column:full_name;not null"`
	Email     string    `gorm:"column:email"`
	StartDate string    `gorm:"column:start_date;type:varchar(40);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (DayTourBooking) TableName() string { return "day_tour_bookings" }

func (b *DayTourBooking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b DayTourBooking) toBooking(loc *time.Location) (Booking, error) {
	return newBooking(b.ID, b.FullName, b.StartDate, CategoryDayTour, "", loc)
}

type RoundTourBooking struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	TourID    string    `gorm:"column:tour_id;type:varchar(64);index"`
	FullName  string    `gorm:"column:full_name;not null"`
	Email     string    `gorm:"column:email"`
	StartDate string    `gorm:"column:start_date;type:varchar(40);not null"`
	EndDate   string    `gorm:"column:end_date;type:varchar(40)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RoundTourBooking) TableName() string { return "round_tour_bookings" }

func (b *RoundTourBooking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b RoundTourBooking) toBooking(loc *time.Location) (Booking, error) {
	return newBooking(b.ID, b.FullName, b.StartDate, CategoryRoundTour, "", loc)
}

type EventTourBooking struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	EventID   string    `gorm:"column:event_id;type:varchar(64);index"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email"`
	StartDate string    `gorm:"column:start_date;type:varchar(40);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (EventTourBooking) TableName() string { return "event_tour_bookings" }

func (b *EventTourBooking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b EventTourBooking) toBooking(loc *time.Location) (Booking, error) {
	return newBooking(b.ID, b.Name, b.StartDate, CategoryEventTour, "", loc)
}

// CustomBooking holds both custom day trips and custom round trips. Day trips
// store their date in TravelDate, round trips in StartDate.
type CustomBooking struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	BookingType string    `gorm:"column:booking_type;type:varchar(16);not null"`
	Name        string    `gorm:"column:name;not null"`
	Email       string    `gorm:"column:email"`
	TravelDate  string    `gorm:"column:travel_date;type:varchar(40)"`
	StartDate   string    `gorm:"column:start_date;type:varchar(40)"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CustomBooking) TableName() string { return "custom_bookings" }

func (b *CustomBooking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b CustomBooking) toBooking(loc *time.Location) (Booking, error) {
	switch SubType(strings.ToLower(strings.TrimSpace(b.BookingType))) {
	case SubTypeDay:
		raw := b.TravelDate
		if strings.TrimSpace(raw) == "" {
			raw = b.StartDate
		}
		return newBooking(b.ID, b.Name, raw, CategoryCustom, SubTypeDay, loc)
	case SubTypeRound:
		return newBooking(b.ID, b.Name, b.StartDate, CategoryCustom, SubTypeRound, loc)
	}
	return Booking{}, fmt.Errorf("%w: %q", ErrUnknownSubType, b.BookingType)
}

func newBooking(id, name, rawStart string, cat Category, sub SubType, loc *time.Location) (Booking, error) {
	if strings.TrimSpace(id) == "" {
		return Booking{}, ErrMissingID
	}
	start, err := ParseStartDate(rawStart, loc)
	if err != nil {
		return Booking{}, err
	}
	return Booking{
		ID:           id,
		CustomerName: strings.TrimSpace(name),
		StartDate:    start,
		Category:     cat,
		SubType:      sub,
	}, nil
}
