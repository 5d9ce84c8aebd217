// Package rpc exposes a JSON-RPC endpoint through which the AI backend pushes
// UI components and replies into a session.
package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RL8/mb-final/internal/service"
	"github.com/RL8/mb-final/internal/uicomponent"
)

const callTimeout = 10 * time.Second

// Server exposes the Conversation RPC service.
type Server struct {
	mu        sync.Mutex
	listener  net.Listener
	rpcServer *rpc.Server
	done      chan struct{}
}

// NewServer creates a new RPC server.
func NewServer(svc *service.Service) (*Server, error) {
	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc}
	if err := rpcServer.RegisterName("Conversation", handler); err != nil {
		return nil, err
	}

	return &Server{
		rpcServer: rpcServer,
		done:      make(chan struct{}),
	}, nil
}

// Start begins accepting RPC connections on the given address.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts RPC connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			log.Warn().Err(err).Msg("rpc accept error")
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Shutdown stops accepting new RPC connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	if err := ln.Close(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler implements the Conversation RPC methods.
type Handler struct {
	service *service.Service
}

// PushComponentsRequest carries backend tool outputs for a session.
type PushComponentsRequest struct {
	SessionID  string                  `json:"session_id"`
	Components []uicomponent.Component `json:"components"`
}

// PushComponentsResponse reports which components were applied.
type PushComponentsResponse struct {
	OK      bool                       `json:"ok"`
	Applied []service.AppliedComponent `json:"applied"`
	Blocked []uicomponent.Component    `json:"blocked"`
}

// PushComponents applies tool outputs to the session's state.
func (h *Handler) PushComponents(req *PushComponentsRequest, resp *PushComponentsResponse) error {
	if req == nil {
		return errors.New("push request is required")
	}
	if req.SessionID == "" {
		return errors.New("session_id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	result, err := h.service.ApplyComponents(ctx, req.SessionID, req.Components)
	if err != nil {
		return err
	}

	log.Info().Str("session_id", req.SessionID).Int("applied", len(result.Applied)).Int("blocked", len(result.Blocked)).Msg("components pushed")

	if resp != nil {
		resp.OK = true
		resp.Applied = result.Applied
		resp.Blocked = result.Blocked
	}
	return nil
}

// PushReplyRequest carries a free-text AI reply.
type PushReplyRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// PushReply records an AI reply and applies any component embedded in it.
func (h *Handler) PushReply(req *PushReplyRequest, resp *service.ReplyResult) error {
	if req == nil {
		return errors.New("reply request is required")
	}
	if req.SessionID == "" {
		return errors.New("session_id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	result, err := h.service.ApplyAIReply(ctx, req.SessionID, req.Text)
	if err != nil {
		return err
	}
	if resp != nil {
		*resp = result
	}
	return nil
}
