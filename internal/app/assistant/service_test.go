package assistant_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tomasoliva/brio-agent/internal/adapters/llm"
	memstore "github.com/tomasoliva/brio-agent/internal/adapters/storage/memory"
	"github.com/tomasoliva/brio-agent/internal/app/assistant"
	"github.com/tomasoliva/brio-agent/internal/domain"
)

type serviceFixture struct {
	mock     *llm.MockLLM
	tasks    *memstore.TaskStore
	notes    *memstore.NoteStore
	goals    *memstore.GoalStore
	events   *memstore.EventStore
	profiles *memstore.ProfileStore
	svc      *assistant.Service
}

func newServiceFixture(responses ...string) *serviceFixture {
	mock := llm.NewMockLLM(responses...)
	tasks := memstore.NewTaskStore()
	notes := memstore.NewNoteStore()
	goals := memstore.NewGoalStore()
	events := memstore.NewEventStore()
	profiles := memstore.NewProfileStore()
	return &serviceFixture{
		mock:     mock,
		tasks:    tasks,
		notes:    notes,
		goals:    goals,
		events:   events,
		profiles: profiles,
		svc:      assistant.NewService(mock, tasks, notes, goals, events, profiles),
	}
}

func TestHandleCommandAddEvent(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1)
	date := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 14, 0, 0, 0, time.Local)

	f := newServiceFixture(fmt.Sprintf(`{
		"reply": "I'll remind you to call Alex tomorrow at 2pm.",
		"operations": [
			{"action": "addEvent", "payload": {"title": "Call Alex", "date": %q}}
		]
	}`, date.Format(time.RFC3339)))

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("remind me to call Alex tomorrow at 2pm"),
		CurrentCategory: "Work",
		Categories:      []string{"Work", "Personal"},
		Mode:            domain.ModeQuickCommand,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}

	if out.Status != assistant.StatusOK {
		t.Errorf("status = %s, want ok", out.Status)
	}
	if !strings.Contains(out.AIMessage, "Done: Event 'Call Alex") {
		t.Errorf("reply missing success clause: %q", out.AIMessage)
	}

	events, err := f.events.ListEvents(context.Background(), user, "")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.Title != "Call Alex" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Category != "Work" {
		t.Errorf("category = %q, want Work", got.Category)
	}
	if !got.Date.Equal(date) {
		t.Errorf("date = %v, want %v", got.Date, date)
	}
}

func TestHandleCommandUpdateMissingTask(t *testing.T) {
	f := newServiceFixture(`{
		"reply": "Marking it done.",
		"operations": [
			{"action": "updateTask", "payload": {"text": "file taxes", "completed": true}}
		]
	}`)

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("mark file taxes as done"),
		CurrentCategory: "Personal",
		Categories:      []string{"Personal"},
		Mode:            domain.ModeQuickCommand,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}

	if out.Status != assistant.StatusError {
		t.Errorf("status = %s, want error (nothing succeeded)", out.Status)
	}
	if !strings.Contains(out.AIMessage, "However, some actions failed:") {
		t.Errorf("reply missing failure clause: %q", out.AIMessage)
	}
	if len(out.Executed) != 1 || out.Executed[0].Success {
		t.Errorf("executed = %+v, want one failure", out.Executed)
	}
}

func TestHandleCommandFormatError(t *testing.T) {
	f := newServiceFixture(`{"something": "unexpected"}`)

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("do something odd"),
		CurrentCategory: "Personal",
		Categories:      []string{"Personal"},
		Mode:            domain.ModeQuickCommand,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}

	if out.Status != assistant.StatusError {
		t.Errorf("status = %s, want error", out.Status)
	}
	if !strings.Contains(out.AIMessage, "AI response format error.") {
		t.Errorf("reply missing format error: %q", out.AIMessage)
	}
	if out.AIMessage == "" {
		t.Error("reply must not be empty")
	}
}

func TestHandleCommandTransportError(t *testing.T) {
	f := newServiceFixture()
	f.mock.Err = errors.New("rpc error: unavailable")

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("hello"),
		CurrentCategory: "Personal",
		Categories:      []string{"Personal"},
		Mode:            domain.ModeQuickCommand,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}

	if out.OverallError == "" {
		t.Error("OverallError not set")
	}
	if out.Status != assistant.StatusError {
		t.Errorf("status = %s, want error", out.Status)
	}
	if out.AIMessage != "Sorry, I couldn't process that request right now." {
		t.Errorf("reply = %q", out.AIMessage)
	}
	if len(out.Executed) != 0 {
		t.Errorf("nothing should execute after a transport failure, got %d results", len(out.Executed))
	}
}

func TestHandleCommandEmptyInput(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("   "),
		CurrentCategory: "Personal",
		Mode:            domain.ModeQuickCommand,
	})
	if !errors.Is(err, assistant.ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
}

func TestHandleCommandChatOpeningGreeting(t *testing.T) {
	f := newServiceFixture(`{"reply": "Hi! Ready when you are.", "operations": []}`)

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		CurrentCategory: "Personal",
		Categories:      []string{"Personal"},
		Mode:            domain.ModeChatSession,
	})
	if err != nil {
		t.Fatalf("empty input must be allowed on a chat opening turn: %v", err)
	}
	if out.AIMessage != "Hi! Ready when you are." {
		t.Errorf("reply = %q", out.AIMessage)
	}
}

func TestHandleCommandDerivesCategories(t *testing.T) {
	f := newServiceFixture(`{
		"reply": "Noted.",
		"operations": [{"action": "addNote", "payload": {"content": "standup ideas"}}]
	}`)

	err := f.tasks.CreateTask(context.Background(), &domain.Task{ID: "t-1", UserID: user, Text: "ship release", Category: "Work"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("note down standup ideas"),
		CurrentCategory: domain.CategoryAll,
		Mode:            domain.ModeQuickCommand,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if out.Status != assistant.StatusOK {
		t.Fatalf("status = %s", out.Status)
	}

	notes, err := f.notes.ListNotes(context.Background(), user, "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if notes[0].Category != "Work" {
		t.Errorf("category = %q, want the stored records' category", notes[0].Category)
	}
}

func TestHandleCommandFoldsClarification(t *testing.T) {
	f := newServiceFixture(`{
		"reply": "Let me check",
		"operations": [{"action": "clarification", "payload": {"message": "Which Alex did you mean?"}}]
	}`)

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("call alex"),
		CurrentCategory: "Personal",
		Categories:      []string{"Personal"},
		Mode:            domain.ModeQuickCommand,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}

	if !strings.Contains(out.AIMessage, "Which Alex did you mean?") {
		t.Errorf("clarification not folded into reply: %q", out.AIMessage)
	}
	if len(out.Executed) != 0 {
		t.Errorf("clarification must not produce execution results, got %d", len(out.Executed))
	}
	if out.Status != assistant.StatusOK {
		t.Errorf("status = %s, want ok", out.Status)
	}
}

func TestHandleCommandEndSession(t *testing.T) {
	f := newServiceFixture("User is preparing a product launch next week and wants daily reminders.")

	transcript := []domain.ChatMessage{
		{Sender: domain.SenderUser, Message: "I'm launching the product next week"},
		{Sender: domain.SenderAI, Message: "Exciting! Want me to set reminders?"},
		{Sender: domain.SenderUser, Message: "Yes, daily ones please"},
	}

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:     user,
		Mode:       domain.ModeChatSession,
		History:    transcript,
		EndSession: true,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}

	if out.AIMessage != "Session ended. I'll remember what we talked about." {
		t.Errorf("reply = %q", out.AIMessage)
	}
	if out.OverallError != "" {
		t.Errorf("unexpected overall error: %s", out.OverallError)
	}

	summary, err := f.profiles.GetContextSummary(context.Background(), user)
	if err != nil {
		t.Fatalf("GetContextSummary: %v", err)
	}
	if summary != "User is preparing a product launch next week and wants daily reminders." {
		t.Errorf("persisted summary = %q", summary)
	}
}

func TestHandleCommandEndSessionSummarizeFailure(t *testing.T) {
	f := newServiceFixture()
	f.mock.Err = errors.New("rpc error: deadline exceeded")

	out, err := f.svc.HandleCommand(context.Background(), assistant.CommandInput{
		UserID:     user,
		Mode:       domain.ModeChatSession,
		History:    []domain.ChatMessage{{Sender: domain.SenderUser, Message: "hello"}},
		EndSession: true,
	})
	if err != nil {
		t.Fatalf("session end must not fail the request: %v", err)
	}
	if out.AIMessage != "Session ended." {
		t.Errorf("reply = %q", out.AIMessage)
	}
	if out.OverallError == "" {
		t.Error("summarization failure should be reported in OverallError")
	}
}

func TestRenameCategoryAcrossStores(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	if err := f.tasks.CreateTask(ctx, &domain.Task{ID: "t-1", UserID: user, Text: "a", Category: "Side Project"}); err != nil {
		t.Fatal(err)
	}
	if err := f.notes.CreateNote(ctx, &domain.Note{ID: "n-1", UserID: user, Content: "b", Category: "Side Project"}); err != nil {
		t.Fatal(err)
	}
	if err := f.goals.CreateGoal(ctx, &domain.Goal{ID: "g-1", UserID: user, Name: "c", Category: "Side Project"}); err != nil {
		t.Fatal(err)
	}
	if err := f.events.CreateEvent(ctx, &domain.Event{ID: "e-1", UserID: user, Title: "d", Category: "Side Project", Date: time.Now()}); err != nil {
		t.Fatal(err)
	}

	n, err := f.svc.RenameCategory(ctx, user, "Side Project", "Startup")
	if err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	if n != 4 {
		t.Errorf("renamed %d records, want 4", n)
	}

	tasks, _ := f.tasks.ListTasks(ctx, user, "Startup")
	if len(tasks) != 1 {
		t.Errorf("task category not renamed")
	}
}

func TestRenameCategoryEmptyNewName(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	if err := f.tasks.CreateTask(ctx, &domain.Task{ID: "t-1", UserID: user, Text: "a", Category: "Old"}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.RenameCategory(ctx, user, "Old", ""); err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}

	tasks, _ := f.tasks.ListTasks(ctx, user, domain.CategoryDefault)
	if len(tasks) != 1 {
		t.Errorf("record should land in the default category on deletion")
	}
}

func TestUpdateTaskAdoptsCurrentCategory(t *testing.T) {
	f := newServiceFixture(`{
		"reply": "Done.",
		"operations": [{"action": "updateTask", "payload": {"text": "ship release", "completed": true}}]
	}`)
	ctx := context.Background()

	if err := f.tasks.CreateTask(ctx, &domain.Task{ID: "t-1", UserID: user, Text: "ship release", Category: "Work"}); err != nil {
		t.Fatal(err)
	}

	// A category-less update issued while viewing another project adopts
	// the viewed category, moving the task there along with the change.
	out, err := f.svc.HandleCommand(ctx, assistant.CommandInput{
		UserID:          user,
		Parts:           textParts("mark ship release as done"),
		CurrentCategory: "Personal",
		Categories:      []string{"Personal", "Work"},
		Mode:            domain.ModeQuickCommand,
	})
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if out.Status != assistant.StatusOK {
		t.Fatalf("status = %s, reply: %s", out.Status, out.AIMessage)
	}

	task, err := f.tasks.GetTask(ctx, user, "t-1")
	if err != nil {
		t.Fatal(err)
	}
	if !task.Completed {
		t.Error("task not completed")
	}
	if task.Category != "Personal" {
		t.Errorf("category = %q, want the viewed category", task.Category)
	}
}
