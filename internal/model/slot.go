package model

import "time"

// Slot statuses.  A cancelled slot is a status transition, never a row
// deletion, so bookings made before the cancellation keep a valid parent.
const (
	SlotAvailable = "AVAILABLE"
	SlotFull      = "FULL"
	SlotCancelled = "CANCELLED"
)

// WorkshopSlot is the persisted, authoritative record for one occurrence of
// a template.  It does not exist until an administrator overrides the
// occurrence explicitly or the first booking promotes it; until then the
// occurrence lives only as a VirtualSlot.  The pair (WorkshopTemplateID,
// Date) is unique, which is what makes promotion idempotent under races.
//
// Invariant: 0 <= BookedCount <= Capacity at all times.
type WorkshopSlot struct {
	ID                 uint64    `json:"id"`
	WorkshopTemplateID uint64    `json:"workshop_template_id"`
	Date               string    `json:"date"` // "2006-01-02"
	StartTime          TimeOfDay `json:"start_time"`
	EndTime            TimeOfDay `json:"end_time"`
	Capacity           uint32    `json:"capacity"`
	BookedCount        uint32    `json:"booked_count"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
