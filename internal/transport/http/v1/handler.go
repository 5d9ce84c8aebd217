// Package v1 provides the version 1 HTTP handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/RL8/mb-final/internal/hub"
	"github.com/RL8/mb-final/internal/service"
	"github.com/RL8/mb-final/internal/session"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	hub     *hub.Hub
}

// NewHandler creates a new handler. h may be nil when no WebSocket hub runs.
func NewHandler(service *service.Service, h *hub.Hub) *Handler {
	return &Handler{
		service: service,
		hub:     h,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/v1/sessions/:session_id")

	// Queries
	g.GET("/state", h.GetState)
	g.GET("/exchanges", h.GetExchanges)
	g.GET("/sideboard/history", h.GetSideboardHistory)
	g.GET("/events", h.GetEvents)

	// Mutations
	g.PUT("/conversation_id", h.SetConversationID)
	g.POST("/messages", h.AddMessage)
	g.PUT("/active_component", h.SetActiveComponent)
	g.DELETE("/active_component", h.ClearActiveComponent)
	g.POST("/sideboard", h.UpdateSideboard)
	g.PUT("/sideboard/active", h.SetActiveSideboardContent)
	g.DELETE("/conversation", h.ClearConversation)

	// AI backend
	g.POST("/components", h.PushComponents)
	g.POST("/ai_reply", h.PushAIReply)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	connections := 0
	if h.hub != nil {
		connections = h.hub.GetConnectionCount()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "healthy",
		"connections": connections,
		"sessions":    h.service.SessionCount(),
	})
}

func errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// queryError maps service query errors to a response.
func queryError(c echo.Context, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, err)
	}
	return errorJSON(c, http.StatusInternalServerError, err)
}
