package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepehrvand/academy-booking/internal/model"
)

// 2024-01-07 is a Sunday.
var sunday = time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC)

func weeklyTemplate(id uint64, title string, days []int, start model.TimeOfDay) model.WorkshopTemplate {
	return model.WorkshopTemplate{
		ID:              id,
		Title:           title,
		RecurrenceType:  model.RecurrenceWeekly,
		DaysOfWeek:      days,
		StartTime:       start,
		DurationMin:     60,
		CapacityPerSlot: 10,
		IsActive:        true,
	}
}

func oneTimeTemplate(id uint64, title, date string) model.WorkshopTemplate {
	return model.WorkshopTemplate{
		ID:              id,
		Title:           title,
		RecurrenceType:  model.RecurrenceOneTime,
		OneTimeDate:     date,
		StartTime:       9 * 60,
		DurationMin:     120,
		CapacityPerSlot: 8,
		IsActive:        true,
	}
}

func TestExpandWeekly(t *testing.T) {
	tmpl := weeklyTemplate(1, "Chess", []int{1, 3}, 16*60) // Mondays and Wednesdays

	got := Expand([]model.WorkshopTemplate{tmpl}, nil, sunday, 14, sunday)

	require.Len(t, got, 4)
	dates := make([]string, 0, len(got))
	for _, v := range got {
		dates = append(dates, v.Date)
	}
	assert.Equal(t, []string{"2024-01-08", "2024-01-10", "2024-01-15", "2024-01-17"}, dates)

	first := got[0]
	assert.Equal(t, uint64(1), first.WorkshopTemplateID)
	assert.Equal(t, "Chess", first.TemplateTitle)
	assert.Equal(t, model.TimeOfDay(16*60), first.StartTime)
	assert.Equal(t, model.TimeOfDay(17*60), first.EndTime)
	assert.Equal(t, uint32(10), first.Capacity)
	assert.Equal(t, uint32(0), first.BookedCount)
	assert.Equal(t, model.SlotAvailable, first.Status)
	assert.Nil(t, first.SlotID)
	assert.True(t, first.Bookable())
}

func TestExpandOneTimeEligibility(t *testing.T) {
	past := oneTimeTemplate(1, "Past", "2024-01-06")
	today := oneTimeTemplate(2, "Today", "2024-01-07")
	future := oneTimeTemplate(3, "Future", "2024-02-01")

	got := Expand([]model.WorkshopTemplate{past, today, future}, nil, sunday, 30, sunday)

	// Day granularity: a template dated today stays eligible all day, a
	// template dated yesterday never appears.
	require.Len(t, got, 2)
	assert.Equal(t, "Today", got[0].TemplateTitle)
	assert.Equal(t, "Future", got[1].TemplateTitle)
}

func TestExpandMergesOverride(t *testing.T) {
	tmpl := weeklyTemplate(7, "Pottery", []int{1}, 10*60)
	slotID := uint64(42)
	persisted := []model.WorkshopSlot{{
		ID:                 slotID,
		WorkshopTemplateID: 7,
		Date:               "2024-01-08",
		StartTime:          10 * 60,
		EndTime:            11 * 60,
		Capacity:           3, // admin shrank it below the template default
		BookedCount:        3,
		Status:             model.SlotFull,
	}}

	got := Expand([]model.WorkshopTemplate{tmpl}, persisted, sunday, 14, sunday)

	require.Len(t, got, 2)
	overridden := got[0]
	require.NotNil(t, overridden.SlotID)
	assert.Equal(t, slotID, *overridden.SlotID)
	assert.Equal(t, uint32(3), overridden.Capacity)
	assert.Equal(t, uint32(3), overridden.BookedCount)
	assert.Equal(t, model.SlotFull, overridden.Status)
	assert.False(t, overridden.Bookable())

	// The second Monday has no persisted record and keeps template defaults.
	virtual := got[1]
	assert.Nil(t, virtual.SlotID)
	assert.Equal(t, uint32(10), virtual.Capacity)
	assert.Equal(t, model.SlotAvailable, virtual.Status)
}

func TestExpandOrderingAcrossTemplates(t *testing.T) {
	morning := weeklyTemplate(1, "Morning", []int{1, 2}, 9*60)
	evening := weeklyTemplate(2, "Evening", []int{1}, 18*60)
	single := oneTimeTemplate(3, "Single", "2024-01-08")
	single.StartTime = 12 * 60

	got := Expand([]model.WorkshopTemplate{evening, single, morning}, nil, sunday, 7, sunday)

	require.Len(t, got, 4)
	// Monday 09:00, Monday 12:00, Monday 18:00, Tuesday 09:00.
	assert.Equal(t, "Morning", got[0].TemplateTitle)
	assert.Equal(t, "Single", got[1].TemplateTitle)
	assert.Equal(t, "Evening", got[2].TemplateTitle)
	assert.Equal(t, "2024-01-09", got[3].Date)
}

func TestExpandSkipsInactiveAndMalformed(t *testing.T) {
	inactive := weeklyTemplate(1, "Inactive", []int{1}, 10*60)
	inactive.IsActive = false
	noDays := weeklyTemplate(2, "NoDays", nil, 10*60)
	crossMidnight := weeklyTemplate(3, "Late", []int{1}, 23*60)
	crossMidnight.DurationMin = 120
	ok := weeklyTemplate(4, "OK", []int{1}, 10*60)

	got := Expand([]model.WorkshopTemplate{inactive, noDays, crossMidnight, ok}, nil, sunday, 7, sunday)

	require.Len(t, got, 1)
	assert.Equal(t, "OK", got[0].TemplateTitle)
}

func TestExpandTuesdayWindow(t *testing.T) {
	// Window starting Monday 2024-01-01; Tuesdays in a 9-day window are
	// Jan 2 and Jan 9.
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tmpl := weeklyTemplate(1, "Science Lab", []int{2}, 9*60)

	got := Expand([]model.WorkshopTemplate{tmpl}, nil, monday, 9, monday)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", got[0].Date)
	assert.Equal(t, "2024-01-09", got[1].Date)
}

func TestExpandDeterministic(t *testing.T) {
	templates := []model.WorkshopTemplate{
		weeklyTemplate(1, "A", []int{1, 4}, 10*60),
		weeklyTemplate(2, "B", []int{1}, 8*60),
		oneTimeTemplate(3, "C", "2024-01-12"),
	}
	a := Expand(templates, nil, sunday, 21, sunday)
	b := Expand(templates, nil, sunday, 21, sunday)
	assert.Equal(t, a, b)
}

func TestExpandDoesNotMutateInputs(t *testing.T) {
	templates := []model.WorkshopTemplate{weeklyTemplate(1, "A", []int{1}, 10*60)}
	persisted := []model.WorkshopSlot{{
		WorkshopTemplateID: 1,
		Date:               "2024-01-08",
		Capacity:           5,
		Status:             model.SlotAvailable,
	}}
	before := persisted[0]

	_ = Expand(templates, persisted, sunday, 7, sunday)

	assert.Equal(t, before, persisted[0])
	assert.True(t, templates[0].IsActive)
}
