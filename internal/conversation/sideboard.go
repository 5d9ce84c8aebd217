package conversation

import (
	"time"

	"github.com/RL8/mb-final/internal/domain"
)

func newSideboardContent(displayID string, update domain.SideboardUpdate, now time.Time) *domain.SideboardContent {
	title := update.Title
	if title == "" {
		title = domain.DefaultSideboardTitle
	}
	return &domain.SideboardContent{
		ID:          displayID,
		Title:       title,
		Content:     update.Content,
		ContentType: update.ContentType,
		Actions:     cloneActions(update.Actions),
		Timestamp:   now,
	}
}

func (s *Store) pushSideboardLocked(content *domain.SideboardContent) []domain.Field {
	s.activeSideboardContent = content

	history := make([]*domain.SideboardContent, 0, len(s.sideboardHistory)+1)
	history = append(history, content)
	history = append(history, s.sideboardHistory...)
	if len(history) > s.historyLimit {
		history = history[:s.historyLimit]
	}
	s.sideboardHistory = history

	fields := []domain.Field{domain.FieldActiveSideboardContent, domain.FieldSideboardHistory}
	if last := s.lastExchangeLocked(); last != nil {
		last.SideboardContent = content
		fields = append(fields, domain.FieldExchanges)
	}
	return fields
}
