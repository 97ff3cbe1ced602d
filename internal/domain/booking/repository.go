package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// Source is a read-only view over one booking collection.
type Source interface {
	Name() string
	List(ctx context.Context) ([]Booking, error)
}

type record interface {
	toBooking(loc *time.Location) (Booking, error)
}

type tableSource[M record] struct {
	name string
	db   *gorm.DB
	loc  *time.Location
}

func (s *tableSource[M]) Name() string { return s.name }

// List returns every well-formed booking in the table. Malformed rows are
// logged and skipped so one bad document cannot hide the others.
func (s *tableSource[M]) List(ctx context.Context) ([]Booking, error) {
	var rows []M
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}

	out := make([]Booking, 0, len(rows))
	for _, row := range rows {
		b, err := row.toBooking(s.loc)
		if err != nil {
			log.Printf("booking_source_skip source=%s err=%v", s.name, err)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func NewDayTourSource(db *gorm.DB, loc *time.Location) Source {
	return &tableSource[DayTourBooking]{name: "day_tour", db: db, loc: loc}
}

func NewRoundTourSource(db *gorm.DB, loc *time.Location) Source {
	return &tableSource[RoundTourBooking]{name: "round_tour", db: db, loc: loc}
}

func NewEventTourSource(db *gorm.DB, loc *time.Location) Source {
	return &tableSource[EventTourBooking]{name: "event_tour", db: db, loc: loc}
}

func NewCustomSource(db *gorm.DB, loc *time.Location) Source {
	return &tableSource[CustomBooking]{name: "custom", db: db, loc: loc}
}

// Sources returns the four booking collections in a fixed order.
func Sources(db *gorm.DB, loc *time.Location) []Source {
	return []Source{
		NewDayTourSource(db, loc),
		NewRoundTourSource(db, loc),
		NewEventTourSource(db, loc),
		NewCustomSource(db, loc),
	}
}
