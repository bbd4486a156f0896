package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomasoliva/brio-agent/internal/domain"
	"github.com/tomasoliva/brio-agent/internal/observability"
)

// ErrEmptyInput is returned when a command carries no usable input and
// the mode does not allow it.
var ErrEmptyInput = errors.New("command input is empty")

// Service is the conversational command core: it extracts operations from
// a user command, normalizes and executes them, composes the reply and
// ends chat sessions by folding the transcript into the context summary.
type Service struct {
	llm      domain.LLMClient
	tasks    domain.TaskStore
	notes    domain.NoteStore
	goals    domain.GoalStore
	events   domain.EventStore
	profiles domain.ProfileStore

	extractor *Extractor
	executor  *Executor
	memory    *ContextMemory
	now       func() time.Time
}

func NewService(
	llm domain.LLMClient,
	tasks domain.TaskStore,
	notes domain.NoteStore,
	goals domain.GoalStore,
	events domain.EventStore,
	profiles domain.ProfileStore,
) *Service {
	return &Service{
		llm:      llm,
		tasks:    tasks,
		notes:    notes,
		goals:    goals,
		events:   events,
		profiles: profiles,

		extractor: NewExtractor(llm),
		executor:  NewExecutor(tasks, notes, goals, events),
		memory:    NewContextMemory(llm, profiles),
		now:       time.Now,
	}
}

type CommandInput struct {
	UserID          domain.UserID
	Parts           []domain.MessagePart
	CurrentCategory string
	// Categories the client currently knows about. When empty, the
	// service derives the set from the user's stored records.
	Categories []string
	Mode       domain.InteractionMode
	History    []domain.ChatMessage
	EndSession bool
}

type CommandOutput struct {
	AIMessage    string
	Operations   []domain.Operation
	Executed     []domain.ExecutedOperationResult
	Status       StatusHint
	OverallError string
	// OriginalParts echoes the input so a client replacing an audio
	// placeholder can reconcile its transcript.
	OriginalParts []domain.MessagePart
}

// HandleCommand processes one command as a single synchronous unit of
// work: extract, normalize, execute, compose.
func (s *Service) HandleCommand(ctx context.Context, in CommandInput) (*CommandOutput, error) {
	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"mode", in.Mode,
	)

	if in.EndSession {
		return s.endSession(ctx, in)
	}

	openingTurn := in.Mode == domain.ModeChatSession && len(in.History) == 0
	if partsEmpty(in.Parts) && !openingTurn {
		return nil, ErrEmptyInput
	}

	categories := in.Categories
	if len(categories) == 0 {
		categories = s.collectCategories(ctx, in.UserID)
	}

	contextSummary, err := s.profiles.GetContextSummary(ctx, in.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn("failed to load context summary, continuing without it", "error", err)
		contextSummary = ""
	}

	ext := s.extractor.Extract(ctx, ExtractInput{
		Parts:           in.Parts,
		CurrentCategory: in.CurrentCategory,
		Categories:      categories,
		Mode:            in.Mode,
		ContextSummary:  contextSummary,
		History:         in.History,
	})

	if ext.OverallError != "" {
		// Nothing to execute; the whole command degrades to an error reply.
		log.Error("command extraction failed", "error", ext.OverallError)
		return &CommandOutput{
			AIMessage:     "Sorry, I couldn't process that request right now.",
			Operations:    ext.Operations,
			Status:        StatusError,
			OverallError:  ext.OverallError,
			OriginalParts: in.Parts,
		}, nil
	}

	ops := make([]domain.Operation, 0, len(ext.Operations))
	for _, op := range ext.Operations {
		ops = append(ops, Normalize(op, in.CurrentCategory, categories))
	}

	executed := s.executor.Execute(ctx, in.UserID, ops)

	reply := ext.Reply
	for _, op := range ops {
		switch o := op.(type) {
		case domain.Clarification:
			reply = joinSentences(reply, o.Message)
		case domain.Suggestion:
			reply = joinSentences(reply, o.Message)
		}
	}

	message, status := Compose(reply, executed)

	log.Info("command handled",
		"operations", len(ops),
		"executed", len(executed),
		"status", status,
	)

	return &CommandOutput{
		AIMessage:     message,
		Operations:    ops,
		Executed:      executed,
		Status:        status,
		OriginalParts: in.Parts,
	}, nil
}

func (s *Service) endSession(ctx context.Context, in CommandInput) (*CommandOutput, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)

	res, err := s.memory.EndSession(ctx, in.UserID, in.History)
	out := &CommandOutput{
		AIMessage:  "Session ended.",
		Operations: []domain.Operation{},
		Status:     StatusOK,
	}
	if res.Changed {
		out.AIMessage = "Session ended. I'll remember what we talked about."
	}
	if err != nil {
		// The session still ends; the caller just learns the summary may
		// be stale.
		log.Warn("session ended with summarization error", "error", err)
		out.OverallError = err.Error()
	}
	return out, nil
}

// collectCategories gathers the distinct concrete categories across the
// user's records, preserving first-seen order.
func (s *Service) collectCategories(ctx context.Context, userID domain.UserID) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		if c == "" || c == domain.CategoryAll || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	if tasks, err := s.tasks.ListTasks(ctx, userID, ""); err == nil {
		for _, t := range tasks {
			add(t.Category)
		}
	}
	if notes, err := s.notes.ListNotes(ctx, userID, ""); err == nil {
		for _, n := range notes {
			add(n.Category)
		}
	}
	if goals, err := s.goals.ListGoals(ctx, userID, ""); err == nil {
		for _, g := range goals {
			add(g.Category)
		}
	}
	if events, err := s.events.ListEvents(ctx, userID, ""); err == nil {
		for _, e := range events {
			add(e.Category)
		}
	}
	return out
}

// RenameCategory propagates a project rename (or deletion, when newName
// is empty) across all four entity stores. Each store is updated
// independently; a failure in one does not roll back the others.
func (s *Service) RenameCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	if newName == "" {
		newName = domain.CategoryDefault
	}

	var total int64
	var firstErr error
	record := func(n int64, err error, store string) {
		total += n
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", store, err)
		}
	}

	n, err := s.tasks.RenameTaskCategory(ctx, userID, oldName, newName)
	record(n, err, "tasks")
	n, err = s.notes.RenameNoteCategory(ctx, userID, oldName, newName)
	record(n, err, "notes")
	n, err = s.goals.RenameGoalCategory(ctx, userID, oldName, newName)
	record(n, err, "goals")
	n, err = s.events.RenameEventCategory(ctx, userID, oldName, newName)
	record(n, err, "events")

	return total, firstErr
}

// Store accessors for the thin dashboard endpoints.
func (s *Service) Tasks() domain.TaskStore   { return s.tasks }
func (s *Service) Notes() domain.NoteStore   { return s.notes }
func (s *Service) Goals() domain.GoalStore   { return s.goals }
func (s *Service) Events() domain.EventStore { return s.events }

// ContextSummary exposes the stored summary for profile display.
func (s *Service) ContextSummary(ctx context.Context, userID domain.UserID) (string, error) {
	summary, err := s.profiles.GetContextSummary(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return summary, err
}

func joinSentences(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return ensureTerminalPunctuation(a) + " " + b
}
