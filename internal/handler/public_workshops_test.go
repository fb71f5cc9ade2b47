package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepehrvand/academy-booking/internal/model"
	"github.com/sepehrvand/academy-booking/internal/repository"
)

type fakeFinder struct {
	booking *model.Booking
	err     error
}

func (f *fakeFinder) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.booking, nil
}

func getBookingContext(e *echo.Echo, ref string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/"+ref, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings/:reference")
	c.SetParamNames("reference")
	c.SetParamValues(ref)
	return c, rec
}

func TestGetBookingNotFound(t *testing.T) {
	e := echo.New()
	h := &PublicHandler{Bookings: &fakeFinder{err: repository.ErrBookingNotFound}}

	c, rec := getBookingContext(e, "no-such-ref")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking not found")
}

func TestGetBookingRepositoryError(t *testing.T) {
	e := echo.New()
	h := &PublicHandler{Bookings: &fakeFinder{err: errors.New("connection reset")}}

	c, rec := getBookingContext(e, "ref")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetBookingFound(t *testing.T) {
	e := echo.New()
	h := &PublicHandler{Bookings: &fakeFinder{booking: &model.Booking{
		ID:        7,
		Reference: "abc-123",
		Status:    model.BookingConfirmed,
	}}}

	c, rec := getBookingContext(e, "abc-123")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "abc-123")
}
