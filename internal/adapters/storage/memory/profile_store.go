package memory

import (
	"context"
	"sync"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

// ProfileStore keeps the per-user context summary in memory. A user with
// no stored summary reads back as ErrNotFound, matching the persistent
// backends.
type ProfileStore struct {
	mu        sync.RWMutex
	summaries map[domain.UserID]string
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{summaries: make(map[domain.UserID]string)}
}

func (s *ProfileStore) GetContextSummary(_ context.Context, userID domain.UserID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return summary, nil
}

func (s *ProfileStore) SaveContextSummary(_ context.Context, userID domain.UserID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[userID] = summary
	return nil
}
