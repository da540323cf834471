package placement

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time as minutes after midnight.
type TimeOfDay int

const minutesPerDay = 24 * 60

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay accepts "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q (want HH:MM)", s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Catalog lists the bookable times from start to end inclusive, step apart.
// Steps below one minute and inverted windows give an empty catalog.
func Catalog(start, end TimeOfDay, step time.Duration) []TimeOfDay {
	k := int(step / time.Minute)
	if k < 1 || start > end || start < 0 || end >= minutesPerDay {
		return nil
	}
	out := make([]TimeOfDay, 0, int(end-start)/k+1)
	for t := start; t <= end; t += TimeOfDay(k) {
		out = append(out, t)
	}
	return out
}

func contains(catalog []TimeOfDay, t TimeOfDay) bool {
	for _, c := range catalog {
		if c == t {
			return true
		}
	}
	return false
}

// DateLayout is the wire and form format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

// civilDate drops the clock part of t as seen in loc.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseWeekdays reads a comma-separated list of weekday names ("sat", "Sunday").
// "none" is the empty list.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return []time.Weekday{}, nil
	}
	var out []time.Weekday
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		wd, ok := lookupWeekday(p)
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", p)
		}
		out = append(out, wd)
	}
	return out, nil
}

func lookupWeekday(name string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if name == full || name == full[:3] {
			return wd, true
		}
	}
	return 0, false
}
