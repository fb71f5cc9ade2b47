// Package schedule implements the recurrence expander: the pure function
// that turns workshop templates plus persisted slot overrides into the
// ordered list of bookable virtual slots.  It performs no I/O, mutates no
// input and reads no clock; "now" is always a parameter so the expansion is
// deterministic and testable.
package schedule

import (
	"sort"
	"time"

	"github.com/sepehrvand/academy-booking/internal/model"
)

// slotKey identifies the zero-or-one persisted override for an occurrence.
type slotKey struct {
	templateID uint64
	date       string
}

// Expand materializes the occurrences of the given templates over a
// lookahead window of daysAhead days starting at windowStart, merges each
// occurrence with its persisted WorkshopSlot (if any) and returns the
// result in full chronological order across all templates.
//
// Inactive templates and templates whose pattern does not match their
// recurrence type yield no occurrences; expansion never fails.  One-time
// templates are eligible when their date is on or after now's calendar day
// (day granularity, time of day ignored).  Weekly templates emit one
// occurrence for every window day whose weekday is in the template's day
// set.
func Expand(templates []model.WorkshopTemplate, persisted []model.WorkshopSlot, windowStart time.Time, daysAhead int, now time.Time) []model.VirtualSlot {
	overrides := make(map[slotKey]*model.WorkshopSlot, len(persisted))
	for i := range persisted {
		s := &persisted[i]
		overrides[slotKey{s.WorkshopTemplateID, s.Date}] = s
	}

	today := now.Format(model.DateLayout)
	startYear, startMonth, startDay := windowStart.Date()

	out := make([]model.VirtualSlot, 0, len(templates)*daysAhead/4+1)
	for i := range templates {
		t := &templates[i]
		if !t.IsActive || t.Schedulable() != nil {
			continue
		}
		switch t.RecurrenceType {
		case model.RecurrenceOneTime:
			// ISO dates compare chronologically as strings.
			if t.OneTimeDate >= today {
				out = append(out, makeVirtual(t, t.OneTimeDate, overrides))
			}
		case model.RecurrenceWeekly:
			days := make(map[int]bool, len(t.DaysOfWeek))
			for _, d := range t.DaysOfWeek {
				days[d] = true
			}
			for off := 0; off < daysAhead; off++ {
				d := time.Date(startYear, startMonth, startDay+off, 0, 0, 0, 0, windowStart.Location())
				if days[int(d.Weekday())] {
					out = append(out, makeVirtual(t, d.Format(model.DateLayout), overrides))
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// makeVirtual joins one occurrence with its persisted override.  The
// persisted record is authoritative once it exists; otherwise the slot
// defaults from the template.
func makeVirtual(t *model.WorkshopTemplate, date string, overrides map[slotKey]*model.WorkshopSlot) model.VirtualSlot {
	v := model.VirtualSlot{
		WorkshopTemplateID: t.ID,
		TemplateTitle:      t.Title,
		Date:               date,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime(),
		Capacity:           t.CapacityPerSlot,
		BookedCount:        0,
		Status:             model.SlotAvailable,
	}
	if s, ok := overrides[slotKey{t.ID, date}]; ok {
		id := s.ID
		v.SlotID = &id
		v.Capacity = s.Capacity
		v.BookedCount = s.BookedCount
		v.Status = s.Status
	}
	return v
}
