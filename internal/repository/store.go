// Package repository stores the change journal of conversation stores.
package repository

import (
	"context"

	"github.com/RL8/mb-final/internal/domain"
)

// Journal defines the change journal persistence.
type Journal interface {
	// Session operations
	EnsureSession(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (*domain.JournalSession, error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.JournalEvent) error
	GetEvents(ctx context.Context, sessionID string, afterTs int64, kinds []string, limit int) ([]domain.JournalEvent, error)

	// Lifecycle
	Close() error
}
