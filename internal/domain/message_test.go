package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageKeepsExtraFields(t *testing.T) {
	raw := `{"sender":"user","timestamp":"2025-01-01T00:00:00Z","content":"hi","attachments":[{"name":"a.png"}],"lang":"en"}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, SenderUser, msg.Sender)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), msg.Timestamp)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "en", msg.Payload["lang"])
	assert.Equal(t, []any{map[string]any{"name": "a.png"}}, msg.Payload["attachments"])

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestMessageWithoutExtraFields(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"sender":"ai"}`), &msg))
	assert.Equal(t, SenderAI, msg.Sender)
	assert.True(t, msg.Timestamp.IsZero())
	assert.Nil(t, msg.Payload)

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sender":"ai","timestamp":"0001-01-01T00:00:00Z"}`, string(out))
}

func TestMessageNonStringContentIsKept(t *testing.T) {
	raw := `{"sender":"ai","timestamp":"2025-01-01T00:00:00Z","content":{"blocks":[1,2]}}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Empty(t, msg.Content)

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestMessageTypedFieldsWinOverPayload(t *testing.T) {
	msg := Message{
		Sender:  SenderUser,
		Content: "real",
		Payload: map[string]any{"sender": "ai", "content": "shadow", "mood": "ok"},
	}

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sender":"user","timestamp":"0001-01-01T00:00:00Z","content":"real","mood":"ok"}`, string(out))
}

func TestMessageRejectsBadSender(t *testing.T) {
	var msg Message
	assert.Error(t, json.Unmarshal([]byte(`{"sender":5}`), &msg))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &msg))
}
