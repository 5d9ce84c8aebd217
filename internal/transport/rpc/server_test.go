package rpc

import (
	"context"
	"net"
	"net/rpc/jsonrpc"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RL8/mb-final/internal/domain"
	"github.com/RL8/mb-final/internal/policy"
	"github.com/RL8/mb-final/internal/service"
	"github.com/RL8/mb-final/internal/session"
	"github.com/RL8/mb-final/internal/uicomponent"
)

func startServer(t *testing.T) (string, *service.Service) {
	t.Helper()

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)
	svc := service.New(session.NewRegistry(), nil, engine)

	srv, err := NewServer(svc)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return ln.Addr().String(), svc
}

func TestPushComponents(t *testing.T) {
	addr, svc := startServer(t)

	client, err := jsonrpc.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	req := &PushComponentsRequest{
		SessionID: "s1",
		Components: []uicomponent.Component{
			uicomponent.NewSideboardUpdate("Plans", "Basic", "", nil),
			{Type: "VIDEO"},
		},
	}
	var resp PushComponentsResponse
	require.NoError(t, client.Call("Conversation.PushComponents", req, &resp))

	assert.True(t, resp.OK)
	require.Len(t, resp.Applied, 1)
	require.Len(t, resp.Blocked, 1)
	require.NotNil(t, resp.Applied[0].Sideboard)
	assert.Equal(t, "Plans", resp.Applied[0].Sideboard.Title)

	history, err := svc.GetSideboardHistory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPushComponentsRequiresSession(t *testing.T) {
	addr, _ := startServer(t)

	client, err := jsonrpc.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	var resp PushComponentsResponse
	err = client.Call("Conversation.PushComponents", &PushComponentsRequest{}, &resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_id is required")
}

func TestPushReply(t *testing.T) {
	addr, svc := startServer(t)

	client, err := jsonrpc.Dial("tcp", addr)
	require.NoError(t, err)
	defer client.Close()

	var resp service.ReplyResult
	require.NoError(t, client.Call("Conversation.PushReply", &PushReplyRequest{SessionID: "s1", Text: "Hello there"}, &resp))
	assert.Equal(t, "Hello there", resp.Message.Content)

	exchanges, err := svc.GetExchanges(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, domain.TitleAIGreeting, exchanges[0].Title)
}
