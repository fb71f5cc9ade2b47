package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/repository"
)

func newTestLedger(capacity uint32) *Ledger {
	l := NewLedger()
	l.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	l.PutTemplate(model.WorkshopTemplate{
		ID:              1,
		Title:           "Painting",
		RecurrenceType:  model.RecurrenceWeekly,
		DaysOfWeek:      []int{2},
		StartTime:       14 * 60,
		DurationMin:     90,
		CapacityPerSlot: capacity,
		IsActive:        true,
	})
	return l
}

func bookReq(parent string) repository.BookRequest {
	return repository.BookRequest{
		TemplateID: 1,
		Date:       "2024-01-09",
		Booking: model.Booking{
			Reference:    parent + "-ref",
			ParentName:   parent,
			Phone:        "555-0100",
			StudentName:  "kid",
			StudentCount: 1,
		},
	}
}

func TestPromoteAndBookPromotesOnce(t *testing.T) {
	l := newTestLedger(5)
	ctx := context.Background()

	first, err := l.PromoteAndBook(ctx, bookReq("alice"))
	require.NoError(t, err)
	assert.True(t, first.Promoted)
	assert.Equal(t, uint32(1), first.BookedCount)
	assert.Equal(t, uint32(5), first.Capacity)
	assert.Equal(t, "Painting", first.TemplateTitle)
	assert.Equal(t, model.BookingConfirmed, first.Booking.Status)

	second, err := l.PromoteAndBook(ctx, bookReq("bob"))
	require.NoError(t, err)
	assert.False(t, second.Promoted)
	assert.Equal(t, uint32(2), second.BookedCount)
	assert.Equal(t, first.Booking.WorkshopSlotID, second.Booking.WorkshopSlotID)

	slot, ok := l.Slot(1, "2024-01-09")
	require.True(t, ok)
	assert.Equal(t, uint32(2), slot.BookedCount)
	assert.Equal(t, model.SlotAvailable, slot.Status)
}

func TestPromoteAndBookFillsSlot(t *testing.T) {
	l := newTestLedger(2)
	ctx := context.Background()

	_, err := l.PromoteAndBook(ctx, bookReq("a"))
	require.NoError(t, err)
	res, err := l.PromoteAndBook(ctx, bookReq("b"))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), res.BookedCount)

	slot, _ := l.Slot(1, "2024-01-09")
	assert.Equal(t, model.SlotFull, slot.Status)

	_, err = l.PromoteAndBook(ctx, bookReq("c"))
	assert.ErrorIs(t, err, repository.ErrSlotFull)

	// The rejected attempt must leave no trace.
	slot, _ = l.Slot(1, "2024-01-09")
	assert.Equal(t, uint32(2), slot.BookedCount)
	assert.Len(t, l.Bookings(), 2)
}

func TestPromoteAndBookConcurrent(t *testing.T) {
	const capacity = 3
	const attempts = 20

	l := newTestLedger(capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.PromoteAndBook(ctx, bookReq("p"))
		}(i)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrSlotFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, capacity, succeeded, "exactly capacity bookings must commit")
	assert.Equal(t, attempts-capacity, full)

	slot, ok := l.Slot(1, "2024-01-09")
	require.True(t, ok)
	assert.Equal(t, uint32(capacity), slot.BookedCount)
	assert.Equal(t, model.SlotFull, slot.Status)
	assert.Len(t, l.Bookings(), capacity)
}

func TestPromoteAndBookRejectsBadTargets(t *testing.T) {
	l := newTestLedger(5)
	ctx := context.Background()

	req := bookReq("a")
	req.TemplateID = 99
	_, err := l.PromoteAndBook(ctx, req)
	assert.ErrorIs(t, err, repository.ErrTemplateNotFound)

	l.Deactivate(1)
	_, err = l.PromoteAndBook(ctx, bookReq("a"))
	assert.ErrorIs(t, err, repository.ErrTemplateInactive)
}

func TestPromoteAndBookRejectsNonOccurrences(t *testing.T) {
	l := newTestLedger(5)
	ctx := context.Background()

	// A date in the past, even one matching the weekday pattern.
	past := bookReq("a")
	past.Date = "2019-01-01" // a Tuesday
	_, err := l.PromoteAndBook(ctx, past)
	assert.ErrorIs(t, err, repository.ErrNotAnOccurrence)

	// A future date the Tuesdays-only pattern never produces.
	wednesday := bookReq("a")
	wednesday.Date = "2024-01-10"
	_, err = l.PromoteAndBook(ctx, wednesday)
	assert.ErrorIs(t, err, repository.ErrNotAnOccurrence)

	// A one-time template only runs on its own date.
	l.PutTemplate(model.WorkshopTemplate{
		ID:              2,
		Title:           "Open Day",
		RecurrenceType:  model.RecurrenceOneTime,
		OneTimeDate:     "2024-02-01",
		StartTime:       10 * 60,
		DurationMin:     60,
		CapacityPerSlot: 5,
		IsActive:        true,
	})
	other := bookReq("a")
	other.TemplateID = 2
	other.Date = "2024-02-02"
	_, err = l.PromoteAndBook(ctx, other)
	assert.ErrorIs(t, err, repository.ErrNotAnOccurrence)

	// None of the rejected attempts may promote a slot or record a booking.
	assert.Empty(t, l.Slots())
	assert.Empty(t, l.Bookings())

	// The matching one-time date still books normally.
	other.Date = "2024-02-01"
	_, err = l.PromoteAndBook(ctx, other)
	assert.NoError(t, err)
}

func TestPromoteAndBookCancelledSlot(t *testing.T) {
	l := newTestLedger(5)
	ctx := context.Background()

	_, err := l.PromoteAndBook(ctx, bookReq("a"))
	require.NoError(t, err)

	l.CancelSlot(1, "2024-01-09")
	_, err = l.PromoteAndBook(ctx, bookReq("b"))
	assert.ErrorIs(t, err, repository.ErrSlotCancelled)

	// Bookings made before cancellation stay on record.
	assert.Len(t, l.Bookings(), 1)
}

func TestPromoteAndBookIndependentSlots(t *testing.T) {
	l := newTestLedger(1)
	ctx := context.Background()

	a := bookReq("a")
	b := bookReq("b")
	b.Date = "2024-01-16"

	_, err := l.PromoteAndBook(ctx, a)
	require.NoError(t, err)
	// A full Tuesday does not block the following Tuesday.
	_, err = l.PromoteAndBook(ctx, b)
	require.NoError(t, err)

	first, _ := l.Slot(1, "2024-01-09")
	second, _ := l.Slot(1, "2024-01-16")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.SlotFull, first.Status)
	assert.Equal(t, model.SlotFull, second.Status)
}
