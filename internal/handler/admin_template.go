package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/repository"
)

// AdminHandler bundles the repositories administrators need to manage
// workshop templates and slot overrides.  JWT validation and the ADMIN
// role check are applied by middleware before any method here runs.
type AdminHandler struct {
	Templates *repository.TemplateRepo
	Slots     *repository.SlotRepo
	Bookings  *repository.BookingRepo
}

// NewAdminHandler constructs an AdminHandler and panics on nil deps.
func NewAdminHandler(templates *repository.TemplateRepo, slots *repository.SlotRepo, bookings *repository.BookingRepo) *AdminHandler {
	if templates == nil || slots == nil || bookings == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Templates: templates, Slots: slots, Bookings: bookings}
}

// workshopReq is the request body for creating or updating a template.
// The pattern fields mirror the recurrence type: "date" for one-time
// workshops, "days" for weekly ones; "time" is an "HH:MM" string either
// way and is parsed exactly once here at the edge.
type workshopReq struct {
	Title           string `json:"title"`
	RecurrenceType  string `json:"recurrence_type"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Days            []int  `json:"days"`
	DurationMin     int    `json:"duration_min"`
	CapacityPerSlot uint32 `json:"capacity_per_slot"`
	IsActive        *bool  `json:"is_active"`
}

// toTemplate converts the request into a model value or a user-facing
// error message.
func (r *workshopReq) toTemplate() (*model.WorkshopTemplate, string) {
	if r.Title == "" {
		return nil, "title is required"
	}
	start, err := model.ParseTimeOfDay(r.Time)
	if err != nil {
		return nil, "time must be HH:MM"
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &model.WorkshopTemplate{
		Title:           r.Title,
		RecurrenceType:  r.RecurrenceType,
		OneTimeDate:     r.Date,
		DaysOfWeek:      r.Days,
		StartTime:       start,
		DurationMin:     r.DurationMin,
		CapacityPerSlot: r.CapacityPerSlot,
		IsActive:        active,
	}, ""
}

// CreateWorkshop handles POST /v1/admin/workshops.  The pattern must be
// structurally consistent with the recurrence type; a workshop that would
// run past midnight is rejected outright rather than silently producing no
// slots later.
func (h *AdminHandler) CreateWorkshop(c echo.Context) error {
	var req workshopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	t, msg := req.toTemplate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := t.Schedulable(); err != nil {
		if errors.Is(err, model.ErrCrossMidnight) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	if err := h.Templates.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create workshop"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"workshop": t})
}

// ListWorkshops handles GET /v1/admin/workshops, returning every template
// including inactive ones.
func (h *AdminHandler) ListWorkshops(c echo.Context) error {
	ctx := c.Request().Context()
	templates, err := h.Templates.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": templates})
}

// GetWorkshop handles GET /v1/admin/workshops/:id.
func (h *AdminHandler) GetWorkshop(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workshop id"})
	}
	ctx := c.Request().Context()
	t, err := h.Templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "workshop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"workshop": t})
}

// UpdateWorkshop handles PUT /v1/admin/workshops/:id.  The whole template
// is replaced; persisted slots keep their own capacity and times because
// the slot record is authoritative once it exists.
func (h *AdminHandler) UpdateWorkshop(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workshop id"})
	}
	var req workshopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	t, msg := req.toTemplate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := t.Schedulable(); err != nil {
		if errors.Is(err, model.ErrCrossMidnight) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	t.ID = id
	ctx := c.Request().Context()
	if err := h.Templates.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "workshop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update workshop"})
	}
	updated, err := h.Templates.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reload workshop"})
	}
	return c.JSON(http.StatusOK, echo.Map{"workshop": updated})
}

// DeactivateWorkshop handles DELETE /v1/admin/workshops/:id.  Templates
// are never hard deleted; deactivation stops them from producing
// occurrences while existing slots and bookings keep a valid parent.
func (h *AdminHandler) DeactivateWorkshop(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid workshop id"})
	}
	ctx := c.Request().Context()
	if err := h.Templates.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "workshop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate workshop"})
	}
	return c.NoContent(http.StatusNoContent)
}
