// Package handler exposes HTTP handlers for the public booking surface and
// the admin API.  This file defines the public handlers: unauthenticated
// clients browse workshops, list bookable slots and submit bookings.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/repository"
	"github.com/sepehrvand/academy-booking/internal/service"
)

// maxLookaheadDays caps the ?days query parameter so a client cannot ask
// for an unbounded expansion.
const maxLookaheadDays = 90

// BookingFinder looks up bookings by their public reference.  Satisfied by
// *repository.BookingRepo.
type BookingFinder interface {
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
}

// PublicHandler aggregates the services and repositories needed for
// unauthenticated browsing and booking.
type PublicHandler struct {
	Templates    *repository.TemplateRepo    // workshop browse data
	Bookings     BookingFinder                // booking lookup by reference
	Availability *service.AvailabilityService // slot expansion
	Booking      *service.BookingService      // booking submission
	Lookahead    int                          // default window for this surface (days)
}

// NewPublicHandler constructs a PublicHandler.  All dependencies must be
// non-nil; lookahead falls back to 60 days when non-positive.
func NewPublicHandler(templates *repository.TemplateRepo, bookings BookingFinder, availability *service.AvailabilityService, booking *service.BookingService, lookahead int) *PublicHandler {
	if templates == nil || bookings == nil || availability == nil || booking == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	if lookahead <= 0 {
		lookahead = 60
	}
	return &PublicHandler{
		Templates:    templates,
		Bookings:     bookings,
		Availability: availability,
		Booking:      booking,
		Lookahead:    lookahead,
	}
}

// PublicWorkshop is a workshop template exposed via the public API.  It
// contains only the fields a booking client needs to render a catalogue.
type PublicWorkshop struct {
	ID             uint64          `json:"id"`
	Title          string          `json:"title"`
	RecurrenceType string          `json:"recurrence_type"`
	Date           string          `json:"date,omitempty"`
	Days           []int           `json:"days,omitempty"`
	StartTime      model.TimeOfDay `json:"start_time"`
	DurationMin    int             `json:"duration_min"`
}

// GetWorkshops handles GET /v1/workshops.  It lists active workshop
// templates without any capacity numbers, so the response is safe to serve
// from the response cache.
func (h *PublicHandler) GetWorkshops(c echo.Context) error {
	ctx := c.Request().Context()
	templates, err := h.Templates.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicWorkshop, 0, len(templates))
	for _, t := range templates {
		out = append(out, PublicWorkshop{
			ID:             t.ID,
			Title:          t.Title,
			RecurrenceType: t.RecurrenceType,
			Date:           t.OneTimeDate,
			Days:           t.DaysOfWeek,
			StartTime:      t.StartTime,
			DurationMin:    t.DurationMin,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetAllSlots handles GET /v1/workshops/slots.  It expands every active
// template over the lookahead window and returns the chronologically
// ordered virtual slots.  The optional ?days parameter adjusts the window
// within [1, maxLookaheadDays].  Slot lists are never cached: a committed
// booking must be visible on the very next call.
func (h *PublicHandler) GetAllSlots(c echo.Context) error {
	ctx := c.Request().Context()
	days := h.lookaheadFrom(c)
	slots, err := h.Availability.ListSlots(ctx, days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to expand slots"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots, "days": days})
}

// GetWorkshopSlots handles GET /v1/workshops/:id/slots.  Same as
// GetAllSlots but restricted to one template.  Unknown templates yield
// 404; inactive ones yield an empty list.
func (h *PublicHandler) GetWorkshopSlots(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workshop id"})
	}
	days := h.lookaheadFrom(c)
	slots, err := h.Availability.ListSlotsForTemplate(ctx, id, days)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "workshop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to expand slots"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots, "days": days})
}

// CreateBooking handles POST /v1/bookings.  It binds the booking request,
// lets the service run the atomic promote+check+commit and maps every
// failure onto a response that tells the client to refresh its slot list
// and re-choose.
func (h *PublicHandler) CreateBooking(c echo.Context) error {
	var req service.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	booking, err := h.Booking.Submit(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBooking):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrSlotFull):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot is not available anymore"})
		case errors.Is(err, repository.ErrSlotCancelled), errors.Is(err, repository.ErrTemplateInactive):
			return c.JSON(http.StatusGone, echo.Map{"error": "please pick another time"})
		case errors.Is(err, repository.ErrNotAnOccurrence):
			return c.JSON(http.StatusGone, echo.Map{"error": "workshop does not run on that date"})
		case errors.Is(err, repository.ErrTemplateNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "workshop not found"})
		case errors.Is(err, repository.ErrWriteConflict):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "please retry your booking"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": booking})
}

// GetBooking handles GET /v1/bookings/:reference.  Parents can look up
// their confirmation with the UUID reference they received.
func (h *PublicHandler) GetBooking(c echo.Context) error {
	ctx := c.Request().Context()
	ref := c.Param("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference"})
	}
	booking, err := h.Bookings.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}

// lookaheadFrom reads and clamps the optional ?days query parameter.
func (h *PublicHandler) lookaheadFrom(c echo.Context) int {
	days := h.Lookahead
	if raw := c.QueryParam("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	if days > maxLookaheadDays {
		days = maxLookaheadDays
	}
	return days
}
