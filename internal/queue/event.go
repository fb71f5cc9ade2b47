// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published after a booking transaction commits.
// It carries enough information for downstream consumers (pickup boards,
// analytics, notification workers) to act without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	Reference     string `json:"reference"`
	SlotID        uint64 `json:"slot_id"`
	TemplateID    uint64 `json:"template_id"`
	WorkshopTitle string `json:"workshop_title"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	ParentName    string `json:"parent_name"`
	StudentName   string `json:"student_name"`
	BookedCount   uint32 `json:"booked_count"`
	Capacity      uint32 `json:"capacity"`
	ConfirmedAt   string `json:"confirmed_at"`
}
