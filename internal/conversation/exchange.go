package conversation

import (
	"github.com/google/uuid"

	"github.com/RL8/mb-final/internal/domain"
)

// groupLocked places msg into the last exchange or opens a new one.
// An exchange closes once it ends with a user message followed by an AI
// message; whatever comes next opens a fresh exchange.
func (s *Store) groupLocked(msg domain.Message) {
	last := s.lastExchangeLocked()
	if last == nil || last.IsComplete {
		s.exchanges = append(s.exchanges, &domain.Exchange{
			ID:        s.newID(),
			Title:     exchangeTitle(msg.Sender),
			Timestamp: msg.Timestamp,
			Messages:  []domain.Message{msg},
		})
		return
	}

	last.Messages = append(last.Messages, msg)
	if completesExchange(last.Messages) {
		last.IsComplete = true
	}
}

func (s *Store) lastExchangeLocked() *domain.Exchange {
	if len(s.exchanges) == 0 {
		return nil
	}
	return s.exchanges[len(s.exchanges)-1]
}

func exchangeTitle(sender domain.Sender) string {
	if sender == domain.SenderAI {
		return domain.TitleAIGreeting
	}
	return domain.TitleUserInquiry
}

func completesExchange(msgs []domain.Message) bool {
	n := len(msgs)
	return n >= 2 &&
		msgs[n-2].Sender == domain.SenderUser &&
		msgs[n-1].Sender == domain.SenderAI
}

// newExchangeID keeps the exchange_ prefix with a random suffix, so ids stay
// unique for exchanges opened within the same millisecond.
func newExchangeID() string {
	return "exchange_" + uuid.New().String()
}
