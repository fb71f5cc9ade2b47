package model

// VirtualSlot is the read model served to booking clients: one template
// occurrence joined with zero-or-one persisted WorkshopSlot.  It is
// recomputed on every expansion call and never stored.  SlotID is nil while
// the occurrence exists only as template defaults; once a persisted record
// exists its capacity, booked count and status are taken verbatim, even
// when an administrator shrank the capacity below the template default.
type VirtualSlot struct {
	WorkshopTemplateID uint64    `json:"workshop_template_id"`
	TemplateTitle      string    `json:"template_title"`
	Date               string    `json:"date"`
	StartTime          TimeOfDay `json:"start_time"`
	EndTime            TimeOfDay `json:"end_time"`
	Capacity           uint32    `json:"capacity"`
	BookedCount        uint32    `json:"booked_count"`
	Status             string    `json:"status"`
	SlotID             *uint64   `json:"slot_id,omitempty"`
}

// Bookable reports whether a booking attempt against this slot could
// plausibly succeed.  It is a fast-fail for clients only; the ledger
// transaction re-checks capacity authoritatively at commit time.
func (v *VirtualSlot) Bookable() bool {
	return v.Status == SlotAvailable && v.BookedCount < v.Capacity
}
