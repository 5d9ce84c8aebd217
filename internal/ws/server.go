// Package ws provides the WebSocket endpoint through which front-end clients
// read and mutate conversation state.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/config"
	"github.com/RL8/mb-final/internal/conversation"
	"github.com/RL8/mb-final/internal/domain"
	"github.com/RL8/mb-final/internal/hub"
	"github.com/RL8/mb-final/internal/protocol"
	"github.com/RL8/mb-final/internal/service"
	"github.com/RL8/mb-final/internal/uicomponent"
)

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	svc      *service.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server. Every session store created from
// now on has its changes broadcast to the session's connections.
func NewServer(cfg *config.Config, h *hub.Hub, svc *service.Service) *Server {
	s := &Server{
		cfg: cfg,
		hub: h,
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	svc.OnSessionCreated(s.fanOutChanges)
	svc.OnComponentBlocked(s.reportBlocked)
	return s
}

// reportBlocked tells a session's clients that a backend component was
// kept out by policy.
func (s *Server) reportBlocked(sessionID string, c uicomponent.Component) {
	msg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		Code:    protocol.ErrorCodePolicyBlocked,
		Message: "ui component blocked by policy: " + string(c.Type),
	}
	if err := s.hub.BroadcastJSON(sessionID, msg); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to report blocked component")
	}
}

// fanOutChanges subscribes the hub to a new session store.
func (s *Server) fanOutChanges(sessionID string, store *conversation.Store) {
	store.Subscribe(func(change domain.Change) {
		msg := protocol.ChangeMessage{
			BaseMessage: protocol.BaseMessage{
				Type:      protocol.TypeChange,
				Ts:        change.Ts,
				SessionID: sessionID,
			},
			Change: change,
		}
		if err := s.hub.BroadcastJSON(sessionID, msg); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Str("kind", string(change.Kind)).Msg("failed to broadcast change")
		}
	})
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket")
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection. Messages are handled
// one at a time so a connection's mutations apply in the order sent.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn_id", conn.ID).Msg("websocket error")
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("conn_id", conn.ID).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var baseMsg protocol.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	if baseMsg.Type == protocol.TypeHello {
		s.handleHello(conn, data)
		return
	}

	if conn.SessionID == "" {
		s.sendError(conn, baseMsg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	ctx := context.Background()
	sessionID := conn.SessionID

	switch baseMsg.Type {
	case protocol.TypeSetConversationID:
		var msg protocol.SetConversationIDMessage
		if s.decode(conn, data, &msg) {
			s.svc.SetConversationID(ctx, sessionID, msg.ConversationID)
		}
	case protocol.TypeAddMessage:
		var msg protocol.AddMessageMessage
		if s.decode(conn, data, &msg) {
			s.svc.AddMessage(ctx, sessionID, msg.Message)
		}
	case protocol.TypeSetActiveComponent:
		var msg protocol.SetActiveComponentMessage
		if s.decode(conn, data, &msg) {
			s.svc.SetActiveComponent(ctx, sessionID, msg.ComponentID, msg.Data)
		}
	case protocol.TypeClearActiveComponent:
		s.svc.ClearActiveComponent(ctx, sessionID)
	case protocol.TypeUpdateSideboard:
		var msg protocol.UpdateSideboardMessage
		if s.decode(conn, data, &msg) {
			content := s.svc.UpdateSideboard(ctx, sessionID, msg.DisplayID, msg.Data)
			s.send(conn, protocol.SideboardUpdatedMessage{
				BaseMessage: s.reply(conn, protocol.TypeSideboardUpdated, msg.RequestID),
				Content:     content,
			})
		}
	case protocol.TypeSetActiveSideboardContent:
		var msg protocol.SetActiveSideboardContentMessage
		if s.decode(conn, data, &msg) {
			s.svc.SetActiveSideboardContent(ctx, sessionID, msg.Content)
		}
	case protocol.TypeClearConversation:
		s.svc.ClearConversation(ctx, sessionID)
	case protocol.TypeGetState:
		s.sendState(conn, baseMsg.RequestID)
	default:
		s.sendError(conn, baseMsg.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+baseMsg.Type)
	}
}

// handleHello handles the hello handshake message.
func (s *Server) handleHello(conn *hub.Connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	if s.cfg.APIKey != "" && msg.APIKey != s.cfg.APIKey {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeUnauthorized, "invalid api_key")
		return
	}

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = "sess_" + uuid.New().String()[:8]
	}

	// Create the store before binding so the change fan-out is in place.
	s.svc.Acquire(sessionID)
	s.hub.BindSession(conn, sessionID)

	s.send(conn, protocol.HelloAckMessage{
		BaseMessage: s.reply(conn, protocol.TypeHelloAck, msg.RequestID),
	})
	s.sendState(conn, msg.RequestID)

	log.Info().Str("session_id", sessionID).Str("user_id", msg.UserID).Msg("hello handshake completed")
}

func (s *Server) sendState(conn *hub.Connection, requestID string) {
	state, err := s.svc.GetState(context.Background(), conn.SessionID)
	if err != nil {
		s.sendError(conn, requestID, protocol.ErrorCodeInternalError, err.Error())
		return
	}
	s.send(conn, protocol.StateMessage{
		BaseMessage: s.reply(conn, protocol.TypeState, requestID),
		State:       state,
	})
}

func (s *Server) decode(conn *hub.Connection, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid message: "+err.Error())
		return false
	}
	return true
}

func (s *Server) reply(conn *hub.Connection, msgType, requestID string) protocol.BaseMessage {
	return protocol.BaseMessage{
		Type:      msgType,
		Ts:        time.Now().UnixMilli(),
		RequestID: requestID,
		SessionID: conn.SessionID,
	}
}

func (s *Server) send(conn *hub.Connection, v any) {
	if err := s.hub.SendJSONToConnection(conn, v); err != nil {
		log.Warn().Err(err).Str("conn_id", conn.ID).Msg("failed to send message")
	}
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *hub.Connection, requestID, code, message string) {
	s.send(conn, protocol.ErrorMessage{
		BaseMessage: s.reply(conn, protocol.TypeError, requestID),
		Code:        code,
		Message:     message,
	})
}
