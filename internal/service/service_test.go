package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RL8/mb-final/internal/domain"
	"github.com/RL8/mb-final/internal/policy"
	"github.com/RL8/mb-final/internal/repository"
	"github.com/RL8/mb-final/internal/session"
	"github.com/RL8/mb-final/internal/uicomponent"
)

func newTestService(t *testing.T) (*Service, *repository.SQLiteStore) {
	t.Helper()
	journal, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	return New(session.NewRegistry(), journal, engine), journal
}

func TestQueriesOnUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetState(ctx, "missing")
	assert.True(t, errors.Is(err, session.ErrNotFound))
	_, err = svc.GetExchanges(ctx, "missing")
	assert.True(t, errors.Is(err, session.ErrNotFound))
	_, err = svc.GetSideboardHistory(ctx, "missing")
	assert.True(t, errors.Is(err, session.ErrNotFound))
}

func TestMutationsReachSessionStore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.SetConversationID(ctx, "s1", "conv-1")
	svc.AddMessage(ctx, "s1", domain.Message{Sender: domain.SenderUser, Content: "hi"})
	svc.AddMessage(ctx, "s1", domain.Message{Sender: domain.SenderAI, Content: "hello"})
	svc.SetActiveComponent(ctx, "s1", "c1", map[string]any{"label": "Name"})
	content := svc.UpdateSideboard(ctx, "s1", "d1", domain.SideboardUpdate{Content: "body"})

	state, err := svc.GetState(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, state.ConversationID)
	assert.Equal(t, domain.ConversationID("conv-1"), *state.ConversationID)
	require.Len(t, state.Messages, 2)
	assert.False(t, state.Messages[0].Timestamp.IsZero(), "missing timestamps are stamped")
	require.Len(t, state.Exchanges, 1)
	assert.True(t, state.Exchanges[0].IsComplete)
	require.NotNil(t, state.Exchanges[0].SideboardContent)
	assert.Equal(t, content.ID, state.Exchanges[0].SideboardContent.ID)
	require.NotNil(t, state.ActiveComponent)
	assert.Equal(t, domain.DefaultComponentType, state.ActiveComponent.Type)

	svc.ClearActiveComponent(ctx, "s1")
	svc.ClearConversation(ctx, "s1")

	state, err = svc.GetState(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, state.Messages)
	assert.Nil(t, state.ActiveComponent)
	assert.Len(t, state.SideboardHistory, 1)
	require.NotNil(t, state.ConversationID)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var kinds []domain.ChangeKind
	unsubscribe := svc.Subscribe("s1", func(c domain.Change) {
		kinds = append(kinds, c.Kind)
	})
	svc.SetConversationID(ctx, "s1", "conv-1")
	unsubscribe()
	svc.ClearConversation(ctx, "s1")

	assert.Equal(t, []domain.ChangeKind{domain.ChangeConversationIDSet}, kinds)
}

func TestJournalRecordsChanges(t *testing.T) {
	svc, journal := newTestService(t)
	ctx := context.Background()

	svc.SetConversationID(ctx, "s1", "conv-1")
	svc.AddMessage(ctx, "s1", domain.Message{Sender: domain.SenderUser, Timestamp: time.Now(), Content: "hi"})
	svc.ClearActiveComponent(ctx, "s1")

	sess, err := journal.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, sess)

	events, err := svc.GetJournal(ctx, "s1", 0, nil, 10)
	require.NoError(t, err)
	require.Len(t, events, 2, "a no-op clear is not recorded")
	assert.Equal(t, domain.ChangeConversationIDSet, events[0].Kind)
	assert.JSONEq(t, `"conv-1"`, string(events[0].Payload))
	assert.Equal(t, domain.ChangeMessageAdded, events[1].Kind)
	assert.Contains(t, events[1].Fields, domain.FieldExchanges)
	assert.Contains(t, events[0].EventID, "evt_")

	events, err = svc.GetJournal(ctx, "s1", 0, []string{string(domain.ChangeMessageAdded)}, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestJournalDisabled(t *testing.T) {
	svc := New(session.NewRegistry(), nil, nil)

	_, err := svc.GetJournal(context.Background(), "s1", 0, nil, 10)
	assert.ErrorIs(t, err, ErrJournalDisabled)
}

func TestApplyComponents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var blocked []string
	svc.OnComponentBlocked(func(sessionID string, c uicomponent.Component) {
		blocked = append(blocked, sessionID+":"+string(c.Type))
	})

	components := []uicomponent.Component{
		uicomponent.NewContextualInput("text", "First Name", true, ""),
		uicomponent.NewSideboardUpdate("Rates", "5%", "", nil),
		{Type: "CHART", Data: map[string]any{"points": []any{1, 2}}},
	}

	result, err := svc.ApplyComponents(ctx, "s1", components)
	require.NoError(t, err)
	require.Len(t, result.Applied, 2)
	require.Len(t, result.Blocked, 1)
	assert.Equal(t, uicomponent.Type("CHART"), result.Blocked[0].Type)
	assert.Equal(t, []string{"s1:CHART"}, blocked)

	require.NotNil(t, result.Applied[1].Sideboard)
	assert.Equal(t, "Rates", result.Applied[1].Sideboard.Title)
	assert.Equal(t, "text", result.Applied[1].Sideboard.ContentType)
	assert.Contains(t, result.Applied[1].Sideboard.ID, "sideboard_")

	state, err := svc.GetState(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, state.ActiveComponent)
	assert.Equal(t, "input_text_first_name", state.ActiveComponent.ID)
	assert.Equal(t, "contextual_input", state.ActiveComponent.Type)
	assert.Equal(t, "Please enter first name", state.ActiveComponent.Data["placeholder"])
	require.NotNil(t, state.ActiveSideboardContent)
	assert.Equal(t, "5%", state.ActiveSideboardContent.Content)
}

func TestApplyComponentsWithoutPolicy(t *testing.T) {
	svc := New(session.NewRegistry(), nil, nil)

	result, err := svc.ApplyComponents(context.Background(), "s1", []uicomponent.Component{
		{Type: "CHART", ID: "chart-1"},
	})
	require.NoError(t, err)
	assert.Len(t, result.Applied, 1)
	assert.Empty(t, result.Blocked)

	state, err := svc.GetState(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, state.ActiveComponent)
	assert.Equal(t, "chart", state.ActiveComponent.Type)
	assert.Equal(t, "chart-1", state.ActiveComponent.ID)
}

func TestApplyAIReply(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	text := `Sure. {"type":"CONTEXTUAL_INPUT","data":{"input_type":"text","label":"First Name"}} Thanks`
	result, err := svc.ApplyAIReply(ctx, "s1", text)
	require.NoError(t, err)
	assert.Equal(t, "Sure. Thanks", result.Message.Content)
	assert.Equal(t, domain.SenderAI, result.Message.Sender)
	require.Len(t, result.Applied, 1)

	state, err := svc.GetState(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	require.Len(t, state.Exchanges, 1)
	assert.Equal(t, domain.TitleAIGreeting, state.Exchanges[0].Title)
	require.NotNil(t, state.ActiveComponent)
	assert.Equal(t, "input_text_first_name", state.ActiveComponent.ID)
}

func TestApplyAIReplyPlainText(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.ApplyAIReply(context.Background(), "s1", "just text {not json}")
	require.NoError(t, err)
	assert.Equal(t, "just text {not json}", result.Message.Content)
	assert.Empty(t, result.Applied)
	assert.Empty(t, result.Blocked)
}
