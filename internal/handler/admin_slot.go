package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/repository"
)

// overrideReq is the request body for PUT /v1/admin/slots/override.  The
// slot is addressed by (workshop_template_id, date); if no persisted slot
// exists yet one is promoted with the requested capacity.
type overrideReq struct {
	WorkshopTemplateID uint64 `json:"workshop_template_id"`
	Date               string `json:"date"`
	Capacity           uint32 `json:"capacity"`
}

// OverrideSlot handles PUT /v1/admin/slots/override.  Administrators use
// it to open extra seats or shrink a specific occurrence without touching
// the template default.  Shrinking below the booked count is refused to
// preserve the capacity invariant.
func (h *AdminHandler) OverrideSlot(c echo.Context) error {
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.WorkshopTemplateID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "workshop_template_id is required"})
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be a calendar date (YYYY-MM-DD)"})
	}
	ctx := c.Request().Context()
	slot, err := h.Slots.Override(ctx, req.WorkshopTemplateID, req.Date, req.Capacity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTemplateNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "workshop not found"})
		case errors.Is(err, repository.ErrNotAnOccurrence):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "workshop does not run on that date"})
		case errors.Is(err, repository.ErrCapacityBelowBooked):
			return c.JSON(http.StatusConflict, echo.Map{"error": "capacity cannot drop below booked seats"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to override slot"})
	}
	return c.JSON(http.StatusOK, echo.Map{"slot": slot})
}

// CancelSlot handles POST /v1/admin/slots/:id/cancel.  Cancellation is a
// status transition, not a deletion: the row stays so existing bookings
// keep a valid parent, and the ledger refuses further bookings.
func (h *AdminHandler) CancelSlot(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	ctx := c.Request().Context()
	if err := h.Slots.Cancel(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel slot"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSlotBookings handles GET /v1/admin/slots/:id/bookings.  It returns
// every booking recorded against the slot, oldest first, so staff can see
// who holds the seats.
func (h *AdminHandler) ListSlotBookings(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Slots.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	bookings, err := h.Bookings.ListBySlot(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}
