package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RL8/mb-final/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.EnsureSession(ctx, "s1"))
	require.NoError(t, store.EnsureSession(ctx, "s1"))

	got, err = store.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.SessionID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteStoreEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.EnsureSession(ctx, "s1"))

	events := []*domain.JournalEvent{
		{EventID: "e1", SessionID: "s1", Ts: 100, Kind: domain.ChangeConversationIDSet, Fields: []domain.Field{domain.FieldConversationID}, Payload: json.RawMessage(`"conv-1"`)},
		{EventID: "e2", SessionID: "s1", Ts: 100, Kind: domain.ChangeMessageAdded, Fields: []domain.Field{domain.FieldMessages, domain.FieldExchanges}},
		{EventID: "e3", SessionID: "s1", Ts: 200, Kind: domain.ChangeConversationCleared, Fields: []domain.Field{domain.FieldMessages}},
	}
	for _, e := range events {
		require.NoError(t, store.CreateEvent(ctx, e))
	}

	got, err := store.GetEvents(ctx, "s1", 0, nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "e1", got[0].EventID)
	assert.Equal(t, "e2", got[1].EventID, "ties keep insertion order")
	assert.JSONEq(t, `"conv-1"`, string(got[0].Payload))
	assert.Nil(t, got[1].Payload)
	assert.Equal(t, []domain.Field{domain.FieldMessages, domain.FieldExchanges}, got[1].Fields)

	got, err = store.GetEvents(ctx, "s1", 100, nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e3", got[0].EventID)

	got, err = store.GetEvents(ctx, "s1", 0, []string{string(domain.ChangeMessageAdded)}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ChangeMessageAdded, got[0].Kind)

	got, err = store.GetEvents(ctx, "s1", 0, nil, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.GetEvents(ctx, "other", 0, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStoreEventRequiresSession(t *testing.T) {
	store := newTestStore(t)
	err := store.CreateEvent(context.Background(), &domain.JournalEvent{
		EventID:   "e1",
		SessionID: "unknown",
		Ts:        1,
		Kind:      domain.ChangeMessageAdded,
	})
	assert.Error(t, err)
}
