package placement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/englishschool/internal/internaltypes"
)

const (
	msgPastDate  = "Date cannot be in the past."
	msgSlotTaken = "This time slot is already booked."
)

// Rules decides whether a slot may be booked. The checks run in order
// (weekday, past date, double booking) and stop at the first failure.
type Rules struct {
	Disallowed []time.Weekday
	Location   *time.Location
	Now        func() time.Time
}

func (r Rules) Check(ctx context.Context, slots SlotChecker, date time.Time, at TimeOfDay) error {
	if r.disallowed(date.Weekday()) {
		return internaltypes.NewValidationError(ErrDisallowedWeekday, "date", r.WeekdayMessage())
	}
	if date.Before(r.Today()) {
		return internaltypes.NewValidationError(ErrPastDate, "date", msgPastDate)
	}
	taken, err := slots.SlotTaken(ctx, date, at)
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return slotTakenError()
	}
	return nil
}

// Today is the current calendar date in the school's location.
func (r Rules) Today() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return civilDate(now(), loc)
}

func (r Rules) disallowed(wd time.Weekday) bool {
	for _, d := range r.Disallowed {
		if d == wd {
			return true
		}
	}
	return false
}

// WeekdayMessage names the closed days, e.g. "Booking on Saturdays and
// Sundays is not allowed."
func (r Rules) WeekdayMessage() string {
	names := make([]string, 0, len(r.Disallowed))
	for _, d := range r.Disallowed {
		names = append(names, d.String()+"s")
	}
	var days string
	switch len(names) {
	case 0:
		days = "this day"
	case 1:
		days = names[0]
	default:
		days = strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
	return "Booking on " + days + " is not allowed."
}

func slotTakenError() error {
	return internaltypes.NewValidationError(ErrSlotTaken, "", msgSlotTaken)
}
