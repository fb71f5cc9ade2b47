// Package memory provides an in-memory slot ledger with the same
// transactional contract as the MySQL implementation.  It backs the
// concurrency tests and lets the service run locally without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/repository"
)

type slotKey struct {
	templateID uint64
	date       string
}

// Ledger holds templates, slots and bookings in process memory.  Each
// (templateID, date) key is guarded by its own mutex so bookings against
// different slots proceed in parallel, mirroring the row-level locking of
// the MySQL ledger.  The struct-level mutex only guards the maps.
type Ledger struct {
	mu       sync.Mutex
	locks    map[slotKey]*sync.Mutex
	tmpls    map[uint64]model.WorkshopTemplate
	slots    map[slotKey]*model.WorkshopSlot
	bookings []model.Booking

	now func() time.Time

	nextSlotID    uint64
	nextBookingID uint64
}

// NewLedger returns an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		locks: make(map[slotKey]*sync.Mutex),
		tmpls: make(map[uint64]model.WorkshopTemplate),
		slots: make(map[slotKey]*model.WorkshopSlot),
		now:   time.Now,
	}
}

// PutTemplate registers or replaces a template.  The ledger needs the
// template for the active check and the promotion defaults.
func (l *Ledger) PutTemplate(t model.WorkshopTemplate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tmpls[t.ID] = t
}

// Deactivate flips a registered template inactive.
func (l *Ledger) Deactivate(templateID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.tmpls[templateID]; ok {
		t.IsActive = false
		l.tmpls[templateID] = t
	}
}

// CancelSlot transitions an existing slot to CANCELLED.
func (l *Ledger) CancelSlot(templateID uint64, date string) {
	key := slotKey{templateID, date}
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.slots[key]; ok {
		s.Status = model.SlotCancelled
	}
}

// Slot returns a copy of the persisted slot for the key, if any.
func (l *Ledger) Slot(templateID uint64, date string) (model.WorkshopSlot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.slots[slotKey{templateID, date}]; ok {
		return *s, true
	}
	return model.WorkshopSlot{}, false
}

// Slots returns copies of every persisted slot.
func (l *Ledger) Slots() []model.WorkshopSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.WorkshopSlot, 0, len(l.slots))
	for _, s := range l.slots {
		out = append(out, *s)
	}
	return out
}

// Bookings returns copies of every committed booking.
func (l *Ledger) Bookings() []model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Booking, len(l.bookings))
	copy(out, l.bookings)
	return out
}

// PromoteAndBook implements the same atomic unit of work as the MySQL
// ledger: promote-if-absent with template defaults, capacity check,
// increment and booking append all happen under the key's mutex.
func (l *Ledger) PromoteAndBook(ctx context.Context, req repository.BookRequest) (repository.BookResult, error) {
	if err := ctx.Err(); err != nil {
		return repository.BookResult{}, err
	}
	key := slotKey{req.TemplateID, req.Date}
	lock := l.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	tpl, ok := l.tmpls[req.TemplateID]
	l.mu.Unlock()
	if !ok {
		return repository.BookResult{}, repository.ErrTemplateNotFound
	}
	if !tpl.IsActive {
		return repository.BookResult{}, repository.ErrTemplateInactive
	}
	// Same occurrence rule as the MySQL ledger: the date must be one the
	// pattern produces and must not be behind us.
	today := l.now().UTC().Format(model.DateLayout)
	if req.Date < today || !tpl.OccursOn(req.Date) {
		return repository.BookResult{}, repository.ErrNotAnOccurrence
	}

	// The key lock serializes bookings on this slot; the struct mutex is
	// still taken around slot field access so concurrent readers of other
	// slots never observe a torn write.
	l.mu.Lock()
	slot, exists := l.slots[key]
	if !exists {
		l.nextSlotID++
		slot = &model.WorkshopSlot{
			ID:                 l.nextSlotID,
			WorkshopTemplateID: tpl.ID,
			Date:               req.Date,
			StartTime:          tpl.StartTime,
			EndTime:            tpl.EndTime(),
			Capacity:           tpl.CapacityPerSlot,
			BookedCount:        0,
			Status:             model.SlotAvailable,
			CreatedAt:          time.Now().UTC(),
		}
		l.slots[key] = slot
	}
	if slot.Status == model.SlotCancelled {
		l.mu.Unlock()
		return repository.BookResult{}, repository.ErrSlotCancelled
	}
	if slot.BookedCount >= slot.Capacity {
		l.mu.Unlock()
		return repository.BookResult{}, repository.ErrSlotFull
	}

	slot.BookedCount++
	if slot.BookedCount >= slot.Capacity {
		slot.Status = model.SlotFull
	}

	booking := req.Booking
	booking.WorkshopSlotID = slot.ID
	booking.WorkshopTemplateID = req.TemplateID
	booking.Status = model.BookingConfirmed
	booking.CreatedAt = time.Now().UTC()
	l.nextBookingID++
	booking.ID = l.nextBookingID
	l.bookings = append(l.bookings, booking)

	res := repository.BookResult{
		Booking:       booking,
		TemplateTitle: tpl.Title,
		Date:          req.Date,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		BookedCount:   slot.BookedCount,
		Capacity:      slot.Capacity,
		Promoted:      !exists,
	}
	l.mu.Unlock()
	return res, nil
}

func (l *Ledger) keyLock(key slotKey) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
