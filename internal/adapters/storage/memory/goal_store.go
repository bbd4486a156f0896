package memory

import (
	"context"
	"sync"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

type GoalStore struct {
	mu    sync.RWMutex
	goals map[domain.GoalID]*domain.Goal
	order []domain.GoalID
}

func NewGoalStore() *GoalStore {
	return &GoalStore{goals: make(map[domain.GoalID]*domain.Goal)}
}

func (s *GoalStore) CreateGoal(_ context.Context, goal *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *goal
	s.goals[goal.ID] = &cp
	s.order = append(s.order, goal.ID)
	return nil
}

func (s *GoalStore) GetGoal(_ context.Context, userID domain.UserID, id domain.GoalID) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *GoalStore) ListGoals(_ context.Context, userID domain.UserID, category string) ([]*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Goal
	for _, id := range s.order {
		g := s.goals[id]
		if g.UserID != userID {
			continue
		}
		if category != "" && g.Category != category {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (s *GoalStore) UpdateGoal(_ context.Context, goal *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return domain.ErrNotFound
	}
	cp := *goal
	s.goals[goal.ID] = &cp
	return nil
}

func (s *GoalStore) RenameGoalCategory(_ context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, g := range s.goals {
		if g.UserID == userID && g.Category == oldName {
			g.Category = newName
			n++
		}
	}
	return n, nil
}
