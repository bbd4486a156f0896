package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when the requested record does not
// exist for the given owner.
var ErrNotFound = errors.New("not found")

// GenerateRequest is one call to the language-model service.
type GenerateRequest struct {
	System     string        // system instruction (persona + output contract)
	Parts      []MessagePart // current user input, text and/or inline binary
	History    []ChatMessage // prior turns, oldest first (chat sessions only)
	JSONOutput bool          // request machine-parseable structured text
}

// LLMClient defines how the core interacts with the language-model service.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// TaskStore persists tasks. Every query is scoped by owner.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, userID UserID, id TaskID) (*Task, error)
	// FindTaskByText matches case-insensitively on the exact task text.
	// category "" means all categories.
	FindTaskByText(ctx context.Context, userID UserID, text, category string) (*Task, error)
	ListTasks(ctx context.Context, userID UserID, category string) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	RenameTaskCategory(ctx context.Context, userID UserID, oldName, newName string) (int64, error)
}

type NoteStore interface {
	CreateNote(ctx context.Context, note *Note) error
	GetNote(ctx context.Context, userID UserID, id NoteID) (*Note, error)
	ListNotes(ctx context.Context, userID UserID, category string) ([]*Note, error)
	UpdateNote(ctx context.Context, note *Note) error
	RenameNoteCategory(ctx context.Context, userID UserID, oldName, newName string) (int64, error)
}

type GoalStore interface {
	CreateGoal(ctx context.Context, goal *Goal) error
	GetGoal(ctx context.Context, userID UserID, id GoalID) (*Goal, error)
	ListGoals(ctx context.Context, userID UserID, category string) ([]*Goal, error)
	UpdateGoal(ctx context.Context, goal *Goal) error
	RenameGoalCategory(ctx context.Context, userID UserID, oldName, newName string) (int64, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, userID UserID, id EventID) (*Event, error)
	ListEvents(ctx context.Context, userID UserID, category string) ([]*Event, error)
	UpdateEvent(ctx context.Context, event *Event) error
	RenameEventCategory(ctx context.Context, userID UserID, oldName, newName string) (int64, error)
}

// ProfileStore reads and writes the single persisted text field the
// assistant owns per user.
type ProfileStore interface {
	GetContextSummary(ctx context.Context, userID UserID) (string, error)
	SaveContextSummary(ctx context.Context, userID UserID, summary string) error
}
