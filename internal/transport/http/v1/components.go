package v1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/uicomponent"
)

// PushComponents applies AI backend tool outputs. The body is a single
// component object or an array of them.
// POST /v1/sessions/:session_id/components
func (h *Handler) PushComponents(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	components, err := uicomponent.Decode(body)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}

	sessionID := c.Param("session_id")
	result, err := h.service.ApplyComponents(c.Request().Context(), sessionID, components)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to apply components")
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, result)
}

// AIReplyRequest is the body for POST ai_reply.
type AIReplyRequest struct {
	Text string `json:"text"`
}

// PushAIReply records a free-text AI reply and applies any component embedded in it.
// POST /v1/sessions/:session_id/ai_reply
func (h *Handler) PushAIReply(c echo.Context) error {
	var req AIReplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sessionID := c.Param("session_id")
	result, err := h.service.ApplyAIReply(c.Request().Context(), sessionID, req.Text)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to apply ai reply")
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, result)
}
