package conversation

import "github.com/RL8/mb-final/internal/domain"

// newActiveComponent copies data so later caller edits do not leak into the store.
func newActiveComponent(componentID string, data map[string]any) *domain.ActiveComponent {
	copied := cloneMap(data)
	if copied == nil {
		copied = make(map[string]any)
	}

	componentType := domain.DefaultComponentType
	if t, ok := copied["type"].(string); ok && t != "" {
		componentType = t
	}

	return &domain.ActiveComponent{
		ID:   componentID,
		Type: componentType,
		Data: copied,
	}
}
