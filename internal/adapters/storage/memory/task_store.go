package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

// TaskStore is a simple in-memory implementation of domain.TaskStore.
// It is NOT persistent and is only suitable for development and tests.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]*domain.Task
	order []domain.TaskID
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[domain.TaskID]*domain.Task)}
}

func (s *TaskStore) CreateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *task
	s.tasks[task.ID] = &cp
	s.order = append(s.order, task.ID)
	return nil
}

func (s *TaskStore) GetTask(_ context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *TaskStore) FindTaskByText(_ context.Context, userID domain.UserID, text, category string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		t := s.tasks[id]
		if t.UserID != userID {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		if strings.EqualFold(t.Text, text) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *TaskStore) ListTasks(_ context.Context, userID domain.UserID, category string) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Task
	for _, id := range s.order {
		t := s.tasks[id]
		if t.UserID != userID {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (s *TaskStore) UpdateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrNotFound
	}
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *TaskStore) RenameTaskCategory(_ context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, t := range s.tasks {
		if t.UserID == userID && t.Category == oldName {
			t.Category = newName
			n++
		}
	}
	return n, nil
}
