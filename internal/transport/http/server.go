// Package http provides the HTTP server for the conversation service.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/RL8/mb-final/internal/hub"
	"github.com/RL8/mb-final/internal/service"
	v1 "github.com/RL8/mb-final/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP API server used by the front-end
// and the AI backend.
func NewServer(svc *service.Service, h *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1.NewHandler(svc, h).RegisterRoutes(e)

	return e
}
