// Package service implements the business operations between the HTTP
// handlers and the persistence layer: slot-list expansion and booking
// submission.
package service

import (
	"context"
	"time"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/repository"
	"github.com/sepehrvand/academy-booking/internal/schedule"
)

// DefaultLookaheadDays is the policy default for expansion windows when the
// caller does not ask for a specific length.  The public booking surface
// uses a longer window, configured per deployment.
const DefaultLookaheadDays = 30

// AvailabilityService computes the bookable slot lists served to booking
// clients.  It is a pure read path: any number of callers may run it
// concurrently and nothing is cached between calls, so a committed booking
// is visible in the very next expansion.
type AvailabilityService struct {
	templates *repository.TemplateRepo
	slots     *repository.SlotRepo
	clock     func() time.Time
}

// NewAvailabilityService constructs an AvailabilityService.  The clock is
// injected so expansion stays deterministic under test; pass time.Now for
// production use.
func NewAvailabilityService(templates *repository.TemplateRepo, slots *repository.SlotRepo, clock func() time.Time) *AvailabilityService {
	if templates == nil || slots == nil {
		panic("nil repository passed to NewAvailabilityService")
	}
	if clock == nil {
		clock = time.Now
	}
	return &AvailabilityService{templates: templates, slots: slots, clock: clock}
}

// ListSlots expands every active template over a daysAhead window starting
// today and returns the merged, chronologically ordered virtual slots.  A
// non-positive daysAhead falls back to DefaultLookaheadDays.
func (s *AvailabilityService) ListSlots(ctx context.Context, daysAhead int) ([]model.VirtualSlot, error) {
	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, templates, daysAhead)
}

// ListSlotsForTemplate restricts the expansion to a single template.  An
// unknown template yields ErrTemplateNotFound; an inactive one yields an
// empty list, matching the expander's silent-skip semantics.
func (s *AvailabilityService) ListSlotsForTemplate(ctx context.Context, templateID uint64, daysAhead int) ([]model.VirtualSlot, error) {
	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, []model.WorkshopTemplate{*t}, daysAhead)
}

func (s *AvailabilityService) expand(ctx context.Context, templates []model.WorkshopTemplate, daysAhead int) ([]model.VirtualSlot, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultLookaheadDays
	}
	now := s.clock().UTC()
	ids := make([]uint64, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}
	persisted, err := s.slots.ListByTemplateIDs(ctx, ids, now.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	return schedule.Expand(templates, persisted, now, daysAhead, now), nil
}
