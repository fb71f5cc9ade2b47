package model

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in one calendar day.
const MinutesPerDay = 24 * 60

// TimeOfDay is a minute-of-day value (0 = midnight, 1439 = 23:59).  All
// schedule arithmetic in the core happens on this type; "HH:MM" strings
// exist only at the HTTP and database edges and are converted exactly once.
// The value 1440 ("24:00") is legal as an end time only: a slot ending at
// midnight ends exclusively at the day boundary and never starts there.
type TimeOfDay int

// ParseTimeOfDay converts an "HH:MM" string into a TimeOfDay.  Seconds are
// tolerated ("HH:MM:SS", as MySQL TIME columns render) and ignored.
// "24:00" parses to MinutesPerDay so end-at-midnight values round-trip
// through JSON.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if h == 24 && m == 0 {
		return TimeOfDay(MinutesPerDay), nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// Valid reports whether the value falls within a single calendar day.
func (t TimeOfDay) Valid() bool { return t >= 0 && t < MinutesPerDay }

// Add returns the value shifted by the given number of minutes.  The result
// may exceed the day boundary; callers decide what an overflow means.
func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

// String renders the value as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes the value as an "HH:MM" JSON string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts an "HH:MM" JSON string.
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
