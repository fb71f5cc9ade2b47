package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validWeekly() WorkshopTemplate {
	return WorkshopTemplate{
		ID:              1,
		Title:           "Robotics Club",
		RecurrenceType:  RecurrenceWeekly,
		DaysOfWeek:      []int{1, 3},
		StartTime:       16 * 60,
		DurationMin:     90,
		CapacityPerSlot: 12,
		IsActive:        true,
	}
}

func TestSchedulable(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*WorkshopTemplate)
		ok     bool
	}{
		{name: "valid weekly", mutate: func(*WorkshopTemplate) {}, ok: true},
		{name: "valid one time", mutate: func(w *WorkshopTemplate) {
			w.RecurrenceType = RecurrenceOneTime
			w.DaysOfWeek = nil
			w.OneTimeDate = "2026-09-15"
		}, ok: true},
		{name: "zero duration", mutate: func(w *WorkshopTemplate) { w.DurationMin = 0 }},
		{name: "negative duration", mutate: func(w *WorkshopTemplate) { w.DurationMin = -30 }},
		{name: "zero capacity", mutate: func(w *WorkshopTemplate) { w.CapacityPerSlot = 0 }},
		{name: "weekly without days", mutate: func(w *WorkshopTemplate) { w.DaysOfWeek = nil }},
		{name: "weekday out of range", mutate: func(w *WorkshopTemplate) { w.DaysOfWeek = []int{7} }},
		{name: "one time without date", mutate: func(w *WorkshopTemplate) {
			w.RecurrenceType = RecurrenceOneTime
			w.DaysOfWeek = nil
		}},
		{name: "unknown recurrence", mutate: func(w *WorkshopTemplate) { w.RecurrenceType = "MONTHLY" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := validWeekly()
			tc.mutate(&w)
			err := w.Schedulable()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestOccursOn(t *testing.T) {
	weekly := validWeekly() // Mondays and Wednesdays
	assert.True(t, weekly.OccursOn("2024-01-08"))  // Monday
	assert.True(t, weekly.OccursOn("2024-01-10"))  // Wednesday
	assert.False(t, weekly.OccursOn("2024-01-09")) // Tuesday
	assert.False(t, weekly.OccursOn("not-a-date"))

	once := validWeekly()
	once.RecurrenceType = RecurrenceOneTime
	once.DaysOfWeek = nil
	once.OneTimeDate = "2026-09-15"
	assert.True(t, once.OccursOn("2026-09-15"))
	assert.False(t, once.OccursOn("2026-09-16"))
}

func TestSchedulableCrossMidnight(t *testing.T) {
	w := validWeekly()
	w.StartTime = 23 * 60
	w.DurationMin = 90
	assert.ErrorIs(t, w.Schedulable(), ErrCrossMidnight)

	// Ending exactly at 24:00 stays within the day.
	w.DurationMin = 60
	assert.NoError(t, w.Schedulable())
	assert.Equal(t, TimeOfDay(MinutesPerDay), w.EndTime())
}
