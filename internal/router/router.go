package router // package router defines how HTTP routes are registered for the service

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/fieldreg/member-registration/internal/handler"    // handlers that implement the flow
	"github.com/fieldreg/member-registration/internal/middleware" // step gate middleware
)

// RegisterRoutes wires the registration flow onto the provided Echo
// instance.  The route order encodes the state machine: the entry page
// and /start are open (behind the rate limiter), /register, /preview and
// /submit sit behind the started-session gate, and /success reads only
// its query parameters.  LoadSession must already be installed globally
// by the caller.
func RegisterRoutes(e *echo.Echo, h *handler.RegistrationHandler, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.Static("/assets", "public")

	e.GET("/", h.Welcome, limiter)
	e.POST("/start", h.Start, limiter)

	gate := middleware.RequireStarted()
	e.GET("/register", h.RegisterForm, gate)
	e.POST("/preview", h.Preview, gate)
	e.POST("/submit", h.Submit, gate)

	e.GET("/success", h.Success)
}
