package memory

import (
	"context"
	"sync"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

type NoteStore struct {
	mu    sync.RWMutex
	notes map[domain.NoteID]*domain.Note
	order []domain.NoteID
}

func NewNoteStore() *NoteStore {
	return &NoteStore{notes: make(map[domain.NoteID]*domain.Note)}
}

func (s *NoteStore) CreateNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *note
	s.notes[note.ID] = &cp
	s.order = append(s.order, note.ID)
	return nil
}

func (s *NoteStore) GetNote(_ context.Context, userID domain.UserID, id domain.NoteID) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *NoteStore) ListNotes(_ context.Context, userID domain.UserID, category string) ([]*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Note
	for _, id := range s.order {
		n := s.notes[id]
		if n.UserID != userID {
			continue
		}
		if category != "" && n.Category != category {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (s *NoteStore) UpdateNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return domain.ErrNotFound
	}
	cp := *note
	s.notes[note.ID] = &cp
	return nil
}

func (s *NoteStore) RenameNoteCategory(_ context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, note := range s.notes {
		if note.UserID == userID && note.Category == oldName {
			note.Category = newName
			n++
		}
	}
	return n, nil
}
