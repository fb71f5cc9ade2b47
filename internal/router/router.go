package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/sepehrvand/academy-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/sepehrvand/academy-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse-and-book endpoints.
// Parents do not hold accounts in this service, so everything under this
// group is anonymous.  The workshop catalogue sits behind the response
// cache; slot listings are served fresh on every request because they
// carry live booked counts.  The booking endpoint is rate limited since
// it is the only public write.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limit, cache echo.MiddlewareFunc) {
	// Catalogue of active workshop templates (cacheable: no capacity data).
	e.GET("/v1/workshops", p.GetWorkshops, cache)
	// Upcoming bookable occurrences across every active workshop.
	e.GET("/v1/workshops/slots", p.GetAllSlots)
	// Upcoming occurrences for one workshop.
	e.GET("/v1/workshops/:id/slots", p.GetWorkshopSlots)
	// Place a booking against a (workshop, date) occurrence.
	e.POST("/v1/bookings", p.CreateBooking, limit)
	// Look up a booking by its confirmation reference.
	e.GET("/v1/bookings/:reference", p.GetBooking)
}

// RegisterAdmin registers the staff endpoints under /v1/admin.  All routes
// require a valid access token carrying the ADMIN role; tokens are issued
// by the academy's identity service and only verified here.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	// Workshop template management.
	g.POST("/workshops", a.CreateWorkshop)
	g.GET("/workshops", a.ListWorkshops)
	g.GET("/workshops/:id", a.GetWorkshop)
	g.PUT("/workshops/:id", a.UpdateWorkshop)
	g.DELETE("/workshops/:id", a.DeactivateWorkshop)

	// Per-occurrence slot management.  Override addresses a slot by
	// (workshop, date) and promotes it when it only exists virtually;
	// cancel and the booking list address a persisted slot by id.
	g.PUT("/slots/override", a.OverrideSlot)
	g.POST("/slots/:id/cancel", a.CancelSlot)
	g.GET("/slots/:id/bookings", a.ListSlotBookings)
}
