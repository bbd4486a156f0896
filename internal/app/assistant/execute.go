package assistant

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomasoliva/brio-agent/internal/domain"
	"github.com/tomasoliva/brio-agent/internal/observability"
)

const summaryLen = 30

const noChangesNote = "No changes applied."

// Executor applies normalized operations to the entity stores, one at a
// time. A failing operation is recorded and never aborts its siblings;
// there is no rollback across operations.
type Executor struct {
	tasks  domain.TaskStore
	notes  domain.NoteStore
	goals  domain.GoalStore
	events domain.EventStore

	now   func() time.Time
	newID func() string
}

func NewExecutor(tasks domain.TaskStore, notes domain.NoteStore, goals domain.GoalStore, events domain.EventStore) *Executor {
	return &Executor{
		tasks:  tasks,
		notes:  notes,
		goals:  goals,
		events: events,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Execute runs the operations sequentially and returns one result per
// attempted operation. Clarifications and suggestions are not executed
// and carry no result; their message surfaces in the reply instead.
func (ex *Executor) Execute(ctx context.Context, userID domain.UserID, ops []domain.Operation) []domain.ExecutedOperationResult {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	results := make([]domain.ExecutedOperationResult, 0, len(ops))
	for _, op := range ops {
		var res domain.ExecutedOperationResult
		switch o := op.(type) {
		case domain.AddTask:
			res = ex.addTask(ctx, userID, o)
		case domain.AddNote:
			res = ex.addNote(ctx, userID, o)
		case domain.AddGoal:
			res = ex.addGoal(ctx, userID, o)
		case domain.AddEvent:
			res = ex.addEvent(ctx, userID, o)
		case domain.UpdateTask:
			res = ex.updateTask(ctx, userID, o)
		case domain.Unknown:
			msg := o.Err
			if msg == "" {
				msg = "Could not understand the request."
			}
			res = failure("Command", msg)
		case domain.Clarification, domain.Suggestion:
			continue
		default:
			continue
		}

		if !res.Success {
			log.Warn("operation failed", "type", res.Type, "error", res.Error)
		}
		results = append(results, res)
	}

	return results
}

func (ex *Executor) addTask(ctx context.Context, userID domain.UserID, op domain.AddTask) domain.ExecutedOperationResult {
	if strings.TrimSpace(op.Text) == "" {
		return failure("Task", "Task text is required.")
	}

	now := ex.now()
	task := &domain.Task{
		ID:          domain.TaskID(ex.newID()),
		UserID:      userID,
		Text:        op.Text,
		Description: op.Description,
		Category:    op.Category,
		DueDate:     op.DueDate,
		Recurrence:  op.Recurrence,
		SubTasks:    ex.newSubTasks(op.SubTasks),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ex.tasks.CreateTask(ctx, task); err != nil {
		return failure("Task", err.Error())
	}
	return success("Task", truncate(task.Text, summaryLen))
}

func (ex *Executor) addNote(ctx context.Context, userID domain.UserID, op domain.AddNote) domain.ExecutedOperationResult {
	if strings.TrimSpace(op.Content) == "" {
		return failure("Note", "Note content is required.")
	}

	now := ex.now()
	note := &domain.Note{
		ID:        domain.NoteID(ex.newID()),
		UserID:    userID,
		Content:   op.Content,
		Category:  op.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ex.notes.CreateNote(ctx, note); err != nil {
		return failure("Note", err.Error())
	}
	return success("Note", truncate(note.Content, summaryLen))
}

func (ex *Executor) addGoal(ctx context.Context, userID domain.UserID, op domain.AddGoal) domain.ExecutedOperationResult {
	if strings.TrimSpace(op.Name) == "" || op.TargetValue == 0 || strings.TrimSpace(op.Unit) == "" {
		return failure("Goal", "Goal name, target value and unit are required.")
	}

	now := ex.now()
	goal := &domain.Goal{
		ID:          domain.GoalID(ex.newID()),
		UserID:      userID,
		Name:        op.Name,
		Description: op.Description,
		Category:    op.Category,
		TargetValue: op.TargetValue,
		Unit:        op.Unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ex.goals.CreateGoal(ctx, goal); err != nil {
		return failure("Goal", err.Error())
	}
	return success("Goal", truncate(goal.Name, summaryLen))
}

func (ex *Executor) addEvent(ctx context.Context, userID domain.UserID, op domain.AddEvent) domain.ExecutedOperationResult {
	if strings.TrimSpace(op.Title) == "" || op.Date == "" {
		return failure("Event", "Event title and date are required.")
	}
	when, err := time.Parse(time.RFC3339, op.Date)
	if err != nil {
		return failure("Event", "Event title and date are required.")
	}

	now := ex.now()
	event := &domain.Event{
		ID:          domain.EventID(ex.newID()),
		UserID:      userID,
		Title:       op.Title,
		Description: op.Description,
		Category:    op.Category,
		Date:        when,
		Recurrence:  op.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ex.events.CreateEvent(ctx, event); err != nil {
		return failure("Event", err.Error())
	}
	return success("Event", truncate(event.Title, summaryLen))
}

func (ex *Executor) updateTask(ctx context.Context, userID domain.UserID, op domain.UpdateTask) domain.ExecutedOperationResult {
	task, err := ex.resolveTask(ctx, userID, op)
	if errors.Is(err, domain.ErrNotFound) {
		return failure("Task update", "Task not found.")
	}
	if err != nil {
		return failure("Task update", err.Error())
	}

	changed := false

	if op.Text != "" && op.Text != task.Text {
		task.Text = op.Text
		changed = true
	}
	if op.Category != "" && op.Category != task.Category {
		task.Category = op.Category
		changed = true
	}
	if op.DueDate != nil && *op.DueDate != task.DueDate {
		task.DueDate = *op.DueDate
		changed = true
	}
	if op.Completed != nil && *op.Completed != task.Completed {
		task.Completed = *op.Completed
		changed = true
	}
	if op.Recurrence != nil && !reflect.DeepEqual(op.Recurrence, task.Recurrence) {
		task.Recurrence = op.Recurrence
		changed = true
	}
	if op.SubTasks != nil && !sameSubTasks(task.SubTasks, *op.SubTasks) {
		replacement := make([]domain.SubTask, 0, len(*op.SubTasks))
		for _, st := range *op.SubTasks {
			replacement = append(replacement, domain.SubTask{
				ID:        ex.newID(),
				Text:      st.Text,
				Completed: st.Completed,
			})
		}
		task.SubTasks = replacement
		changed = true
	}
	for _, text := range op.SubTasksToAdd {
		task.SubTasks = append(task.SubTasks, domain.SubTask{
			ID:        ex.newID(),
			Text:      text,
			Completed: false,
		})
		changed = true
	}

	if !changed {
		return success("Task update", noChangesNote)
	}

	task.UpdatedAt = ex.now()
	if err := ex.tasks.UpdateTask(ctx, task); err != nil {
		return failure("Task update", err.Error())
	}
	return success("Task update", truncate(task.Text, summaryLen))
}

// resolveTask finds the update target: by explicit identifier first, then
// by case-insensitive exact text match. Name matching is always global
// for the user; the operation's category never narrows the lookup.
func (ex *Executor) resolveTask(ctx context.Context, userID domain.UserID, op domain.UpdateTask) (*domain.Task, error) {
	if op.TaskID != "" {
		return ex.tasks.GetTask(ctx, userID, domain.TaskID(op.TaskID))
	}
	if op.Text != "" {
		return ex.tasks.FindTaskByText(ctx, userID, op.Text, "")
	}
	return nil, domain.ErrNotFound
}

func (ex *Executor) newSubTasks(texts []string) []domain.SubTask {
	if len(texts) == 0 {
		return nil
	}
	out := make([]domain.SubTask, 0, len(texts))
	for _, t := range texts {
		out = append(out, domain.SubTask{ID: ex.newID(), Text: t})
	}
	return out
}

func sameSubTasks(have []domain.SubTask, want []domain.SubTaskInput) bool {
	if len(have) != len(want) {
		return false
	}
	for i := range have {
		if have[i].Text != want[i].Text || have[i].Completed != want[i].Completed {
			return false
		}
	}
	return true
}

func success(typ, summary string) domain.ExecutedOperationResult {
	return domain.ExecutedOperationResult{Type: typ, Summary: summary, Success: true}
}

func failure(typ, msg string) domain.ExecutedOperationResult {
	return domain.ExecutedOperationResult{Type: typ, Success: false, Error: msg}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
