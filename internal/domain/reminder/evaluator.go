package reminder

import (
	"time"

	"travelagency/internal/domain/booking"
)

// Evaluator decides whether a booking starts on the calendar day after now.
// Only dates are compared, both observed in Location.
type Evaluator struct {
	Location *time.Location
}

func NewEvaluator(loc *time.Location) Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return Evaluator{Location: loc}
}

func (e Evaluator) ShouldRemind(now, start time.Time) bool {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}
	// AddDate on the truncated day keeps DST transitions out of the result.
	tomorrow := booking.DateOf(now, loc).AddDate(0, 0, 1)
	s := booking.DateOf(start, loc)
	return tomorrow.Year() == s.Year() && tomorrow.Month() == s.Month() && tomorrow.Day() == s.Day()
}
