package conversation

import "github.com/RL8/mb-final/internal/domain"

// cloneValue deep-copies the maps and slices that decoded JSON is made of.
// Other values are returned as is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []map[string]any:
		return cloneActions(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneActions(actions []map[string]any) []map[string]any {
	if actions == nil {
		return nil
	}
	out := make([]map[string]any, len(actions))
	for i, a := range actions {
		out[i] = cloneMap(a)
	}
	return out
}

func cloneMessage(msg domain.Message) domain.Message {
	msg.Payload = cloneMap(msg.Payload)
	return msg
}

func cloneMessages(msgs []domain.Message) []domain.Message {
	out := make([]domain.Message, len(msgs))
	for i, m := range msgs {
		out[i] = cloneMessage(m)
	}
	return out
}

func cloneSideboard(c *domain.SideboardContent) *domain.SideboardContent {
	if c == nil {
		return nil
	}
	out := *c
	out.Actions = cloneActions(c.Actions)
	return &out
}

func cloneComponent(c *domain.ActiveComponent) *domain.ActiveComponent {
	if c == nil {
		return nil
	}
	out := *c
	out.Data = cloneMap(c.Data)
	return &out
}
