package model

import (
	"errors"
	"time"
)

// Recurrence types for workshop templates.
const (
	RecurrenceOneTime = "ONE_TIME" // a single calendar date
	RecurrenceWeekly  = "WEEKLY"   // a set of weekdays, repeated indefinitely
)

// WorkshopTemplate is the recurring definition of when a workshop runs.
// Templates are owned by administrators, rarely mutated, and never hard
// deleted; deactivation keeps old slots pointing at a valid parent.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – display name of the workshop.
//  RecurrenceType  – ONE_TIME or WEEKLY.
//  OneTimeDate     – calendar date ("2006-01-02"), set only for ONE_TIME.
//  DaysOfWeek      – weekday numbers 0 (Sunday) .. 6 (Saturday), set only
//                    for WEEKLY.
//  StartTime       – time of day the workshop begins.
//  DurationMin     – length of each occurrence in minutes.
//  CapacityPerSlot – default seat count for slots without an override.
//  IsActive        – inactive templates produce no bookable occurrences.
type WorkshopTemplate struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	RecurrenceType  string    `json:"recurrence_type"`
	OneTimeDate     string    `json:"one_time_date,omitempty"`
	DaysOfWeek      []int     `json:"days_of_week,omitempty"`
	StartTime       TimeOfDay `json:"start_time"`
	DurationMin     int       `json:"duration_min"`
	CapacityPerSlot uint32    `json:"capacity_per_slot"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DateLayout is the calendar-date format used everywhere a day-granularity
// date crosses the core boundary.  ISO dates compare correctly as strings,
// which the expander relies on.
const DateLayout = "2006-01-02"

// ErrCrossMidnight is returned by Schedulable when an occurrence would end
// past 24:00.  Such templates are rejected at authoring time rather than
// guessed at during expansion.
var ErrCrossMidnight = errors.New("workshop would end past midnight")

// Schedulable reports whether the template can produce occurrences.  The
// pattern must match the recurrence type (a date for ONE_TIME, at least one
// valid weekday for WEEKLY), the start time must be a valid time of day, the
// duration must be positive and must not roll the end time into the next
// calendar day, and the default capacity must be positive.  A nil error
// means the expander will consider the template.
func (t *WorkshopTemplate) Schedulable() error {
	if !t.StartTime.Valid() {
		return errors.New("start time out of range")
	}
	if t.DurationMin <= 0 {
		return errors.New("duration must be positive")
	}
	if int(t.StartTime)+t.DurationMin > MinutesPerDay {
		return ErrCrossMidnight
	}
	if t.CapacityPerSlot == 0 {
		return errors.New("capacity must be positive")
	}
	switch t.RecurrenceType {
	case RecurrenceOneTime:
		if _, err := time.Parse(DateLayout, t.OneTimeDate); err != nil {
			return errors.New("one-time template requires a calendar date")
		}
	case RecurrenceWeekly:
		if len(t.DaysOfWeek) == 0 {
			return errors.New("weekly template requires at least one weekday")
		}
		for _, d := range t.DaysOfWeek {
			if d < 0 || d > 6 {
				return errors.New("weekday out of range")
			}
		}
	default:
		return errors.New("unknown recurrence type")
	}
	return nil
}

// OccursOn reports whether the recurrence pattern produces an occurrence on
// the given calendar date.  It is a pattern check only; callers decide
// whether past occurrences are acceptable.
func (t *WorkshopTemplate) OccursOn(date string) bool {
	switch t.RecurrenceType {
	case RecurrenceOneTime:
		return t.OneTimeDate == date
	case RecurrenceWeekly:
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return false
		}
		for _, wd := range t.DaysOfWeek {
			if wd == int(d.Weekday()) {
				return true
			}
		}
	}
	return false
}

// EndTime derives the end of an occurrence from the start time and duration.
func (t *WorkshopTemplate) EndTime() TimeOfDay {
	return t.StartTime.Add(t.DurationMin)
}
