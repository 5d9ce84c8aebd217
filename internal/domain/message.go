package domain

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the payload fields inline. Sender, timestamp and a
// non-empty content win over payload keys of the same name.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Payload)+3)
	for k, v := range m.Payload {
		out[k] = v
	}
	out["sender"] = m.Sender
	out["timestamp"] = m.Timestamp
	if m.Content != "" {
		out["content"] = m.Content
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads sender, timestamp and a string content; every other
// field, including a content that is not a string, lands in Payload.
func (m *Message) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*m = Message{}
	for key, raw := range fields {
		switch key {
		case "sender":
			if err := json.Unmarshal(raw, &m.Sender); err != nil {
				return fmt.Errorf("message sender: %w", err)
			}
			continue
		case "timestamp":
			if err := json.Unmarshal(raw, &m.Timestamp); err != nil {
				return fmt.Errorf("message timestamp: %w", err)
			}
			continue
		case "content":
			if err := json.Unmarshal(raw, &m.Content); err == nil {
				continue
			}
		}

		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("message field %s: %w", key, err)
		}
		if m.Payload == nil {
			m.Payload = make(map[string]any)
		}
		m.Payload[key] = v
	}
	return nil
}
