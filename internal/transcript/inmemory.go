package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultInMemoryPerConversation = 200

// InMemoryStore keeps a bounded tail of each conversation in process.
type InMemoryStore struct {
	mu      sync.RWMutex
	max     int
	records map[string][]TurnRecord
}

// NewInMemoryStore keeps at most maxPerConversation records per conversation.
func NewInMemoryStore(maxPerConversation int) *InMemoryStore {
	if maxPerConversation <= 0 {
		maxPerConversation = defaultInMemoryPerConversation
	}
	return &InMemoryStore{max: maxPerConversation, records: make(map[string][]TurnRecord)}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, record TurnRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	arr := append(s.records[record.ConversationID], record)
	if len(arr) > s.max {
		arr = append([]TurnRecord(nil), arr[len(arr)-s.max:]...)
	}
	s.records[record.ConversationID] = arr
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, conversationID string, limit int) ([]TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.records[conversationID]
	if len(arr) == 0 {
		return nil, nil
	}
	limit = normalizeLimit(limit)
	if limit > len(arr) {
		limit = len(arr)
	}
	out := make([]TurnRecord, limit)
	copy(out, arr[len(arr)-limit:])
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
