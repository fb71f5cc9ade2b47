package model

import "time"

// Booking statuses.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking is the immutable record of one reservation against a persisted
// slot.  It is written exactly once, inside the same transaction that
// increments the slot's booked count, and never mutated by this service
// afterwards.
//
// Fields:
//  ID                 – primary key identifier.
//  Reference          – public UUID handed to the parent for lookups.
//  WorkshopSlotID     – the persisted slot the booking counts against.
//  WorkshopTemplateID – denormalized template reference.
//  ParentName         – contact name of the booking parent.
//  Phone              – contact phone number.
//  StudentName        – name of the attending student.
//  StudentCount       – number of seats this booking represents (currently
//                       informational; each booking consumes one seat).
//  Note               – free-form note from the parent.
//  Status             – CONFIRMED on creation.
//  CreatedAt          – creation timestamp.
type Booking struct {
	ID                 uint64    `json:"id"`
	Reference          string    `json:"reference"`
	WorkshopSlotID     uint64    `json:"workshop_slot_id"`
	WorkshopTemplateID uint64    `json:"workshop_template_id"`
	ParentName         string    `json:"parent_name"`
	Phone              string    `json:"phone"`
	StudentName        string    `json:"student_name"`
	StudentCount       uint32    `json:"student_count"`
	Note               string    `json:"note,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}
