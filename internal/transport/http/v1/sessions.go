package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/RL8/mb-final/internal/domain"
	"github.com/RL8/mb-final/internal/service"
)

// GetState returns the full conversation state.
// GET /v1/sessions/:session_id/state
func (h *Handler) GetState(c echo.Context) error {
	state, err := h.service.GetState(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// GetExchanges returns the session's exchanges.
// GET /v1/sessions/:session_id/exchanges
func (h *Handler) GetExchanges(c echo.Context) error {
	exchanges, err := h.service.GetExchanges(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"exchanges": exchanges,
	})
}

// GetSideboardHistory returns recent sideboard contents, newest first.
// GET /v1/sessions/:session_id/sideboard/history
func (h *Handler) GetSideboardHistory(c echo.Context) error {
	history, err := h.service.GetSideboardHistory(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"history": history,
	})
}

// GetEvents returns journaled changes of a session.
// GET /v1/sessions/:session_id/events?after_ts=&kinds=&limit=
func (h *Handler) GetEvents(c echo.Context) error {
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterTs := int64(0)
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			afterTs = val
		}
	}
	var kinds []string
	if k := c.QueryParam("kinds"); k != "" {
		kinds = strings.Split(k, ",")
	}

	events, err := h.service.GetJournal(c.Request().Context(), c.Param("session_id"), afterTs, kinds, limit)
	if err != nil {
		if errors.Is(err, service.ErrJournalDisabled) {
			return errorJSON(c, http.StatusNotImplemented, err)
		}
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"events": events,
	})
}

// SetConversationIDRequest is the body for PUT conversation_id.
type SetConversationIDRequest struct {
	ConversationID domain.ConversationID `json:"conversation_id"`
}

// SetConversationID sets the conversation identity.
// PUT /v1/sessions/:session_id/conversation_id
func (h *Handler) SetConversationID(c echo.Context) error {
	var req SetConversationIDRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	h.service.SetConversationID(c.Request().Context(), c.Param("session_id"), req.ConversationID)
	return c.NoContent(http.StatusNoContent)
}

// AddMessage appends a message to the conversation.
// POST /v1/sessions/:session_id/messages
func (h *Handler) AddMessage(c echo.Context) error {
	var msg domain.Message
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	h.service.AddMessage(c.Request().Context(), c.Param("session_id"), msg)
	return c.NoContent(http.StatusCreated)
}

// SetActiveComponentRequest is the body for PUT active_component.
type SetActiveComponentRequest struct {
	ComponentID string         `json:"component_id"`
	Data        map[string]any `json:"data"`
}

// SetActiveComponent replaces the active component.
// PUT /v1/sessions/:session_id/active_component
func (h *Handler) SetActiveComponent(c echo.Context) error {
	var req SetActiveComponentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	h.service.SetActiveComponent(c.Request().Context(), c.Param("session_id"), req.ComponentID, req.Data)
	return c.NoContent(http.StatusNoContent)
}

// ClearActiveComponent removes the active component.
// DELETE /v1/sessions/:session_id/active_component
func (h *Handler) ClearActiveComponent(c echo.Context) error {
	h.service.ClearActiveComponent(c.Request().Context(), c.Param("session_id"))
	return c.NoContent(http.StatusNoContent)
}

// UpdateSideboardRequest is the body for POST sideboard.
type UpdateSideboardRequest struct {
	DisplayID string                 `json:"display_id"`
	Data      domain.SideboardUpdate `json:"data"`
}

// UpdateSideboard creates sideboard content and returns it.
// POST /v1/sessions/:session_id/sideboard
func (h *Handler) UpdateSideboard(c echo.Context) error {
	var req UpdateSideboardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	content := h.service.UpdateSideboard(c.Request().Context(), c.Param("session_id"), req.DisplayID, req.Data)
	return c.JSON(http.StatusCreated, content)
}

// SetActiveSideboardContentRequest is the body for PUT sideboard/active.
// A null content clears the active sideboard content.
type SetActiveSideboardContentRequest struct {
	Content *domain.SideboardContent `json:"content"`
}

// SetActiveSideboardContent replaces the active sideboard content.
// PUT /v1/sessions/:session_id/sideboard/active
func (h *Handler) SetActiveSideboardContent(c echo.Context) error {
	var req SetActiveSideboardContentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	h.service.SetActiveSideboardContent(c.Request().Context(), c.Param("session_id"), req.Content)
	return c.NoContent(http.StatusNoContent)
}

// ClearConversation resets the conversation, keeping its id and sideboard history.
// DELETE /v1/sessions/:session_id/conversation
func (h *Handler) ClearConversation(c echo.Context) error {
	h.service.ClearConversation(c.Request().Context(), c.Param("session_id"))
	return c.NoContent(http.StatusNoContent)
}
