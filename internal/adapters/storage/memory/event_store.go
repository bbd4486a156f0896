package memory

import (
	"context"
	"sync"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

type EventStore struct {
	mu     sync.RWMutex
	events map[domain.EventID]*domain.Event
	order  []domain.EventID
}

func NewEventStore() *EventStore {
	return &EventStore{events: make(map[domain.EventID]*domain.Event)}
}

func (s *EventStore) CreateEvent(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *event
	s.events[event.ID] = &cp
	s.order = append(s.order, event.ID)
	return nil
}

func (s *EventStore) GetEvent(_ context.Context, userID domain.UserID, id domain.EventID) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *EventStore) ListEvents(_ context.Context, userID domain.UserID, category string) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Event
	for _, id := range s.order {
		e := s.events[id]
		if e.UserID != userID {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *EventStore) UpdateEvent(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[event.ID]
	if !ok || existing.UserID != event.UserID {
		return domain.ErrNotFound
	}
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

func (s *EventStore) RenameEventCategory(_ context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, e := range s.events {
		if e.UserID == userID && e.Category == oldName {
			e.Category = newName
			n++
		}
	}
	return n, nil
}
