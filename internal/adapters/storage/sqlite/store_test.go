package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomasoliva/brio-agent/internal/adapters/storage/sqlite"
	"github.com/tomasoliva/brio-agent/internal/domain"
)

const user = domain.UserID("u-1")

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "brio.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTaskRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	task := &domain.Task{
		ID:          "t-1",
		UserID:      user,
		Text:        "water the plants",
		Description: "the ones on the balcony",
		Category:    "Home",
		DueDate:     "2026-09-01",
		Recurrence:  &domain.RecurrenceRule{Type: domain.RecurWeekly, Interval: 1, DaysOfWeek: []int{1, 4}},
		SubTasks:    []domain.SubTask{{ID: "s-1", Text: "fill the can"}},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := s.GetTask(ctx, user, "t-1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Text != task.Text || got.Category != task.Category || got.DueDate != task.DueDate {
		t.Errorf("got %+v", got)
	}
	if got.Recurrence == nil || got.Recurrence.Type != domain.RecurWeekly {
		t.Errorf("recurrence lost: %+v", got.Recurrence)
	}
	if len(got.SubTasks) != 1 || got.SubTasks[0].Text != "fill the can" {
		t.Errorf("sub-tasks lost: %+v", got.SubTasks)
	}
}

func TestGetTaskWrongUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.CreateTask(ctx, &domain.Task{ID: "t-1", UserID: user, Text: "secret", Category: "Personal"}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetTask(ctx, "someone-else", "t-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for another user's record", err)
	}
}

func TestFindTaskByTextCaseInsensitive(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.CreateTask(ctx, &domain.Task{ID: "t-1", UserID: user, Text: "Buy Milk", Category: "Personal"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindTaskByText(ctx, user, "buy milk", "")
	if err != nil {
		t.Fatalf("FindTaskByText: %v", err)
	}
	if got.ID != "t-1" {
		t.Errorf("found %q", got.ID)
	}

	if _, err := s.FindTaskByText(ctx, user, "buy milk", "Work"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound with a non-matching category filter", err)
	}

	if _, err := s.FindTaskByText(ctx, user, "buy bread", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTaskPersistsChanges(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	task := &domain.Task{ID: "t-1", UserID: user, Text: "draft report", Category: "Work"}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	task.Completed = true
	task.DueDate = "2026-09-15"
	task.SubTasks = []domain.SubTask{{ID: "s-1", Text: "outline", Completed: true}}
	if err := s.UpdateTask(ctx, task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got, err := s.GetTask(ctx, user, "t-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Completed || got.DueDate != "2026-09-15" || len(got.SubTasks) != 1 {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestUpdateMissingTask(t *testing.T) {
	s := newStore(t)
	err := s.UpdateTask(context.Background(), &domain.Task{ID: "nope", UserID: user, Text: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListTasksFilter(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i, cat := range []string{"Work", "Work", "Personal"} {
		task := &domain.Task{ID: domain.TaskID(fmt.Sprintf("t-%d", i)), UserID: user, Text: "t", Category: cat}
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	work, err := s.ListTasks(ctx, user, "Work")
	if err != nil {
		t.Fatal(err)
	}
	if len(work) != 2 {
		t.Errorf("got %d Work tasks, want 2", len(work))
	}

	all, err := s.ListTasks(ctx, user, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("got %d tasks, want 3", len(all))
	}
}

func TestRenameCategoryAcrossTables(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.CreateTask(ctx, &domain.Task{ID: "t-1", UserID: user, Text: "a", Category: "Old"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateNote(ctx, &domain.Note{ID: "n-1", UserID: user, Content: "b", Category: "Old"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateGoal(ctx, &domain.Goal{ID: "g-1", UserID: user, Name: "c", Category: "Old", TargetValue: 10, Unit: "km"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateEvent(ctx, &domain.Event{ID: "e-1", UserID: user, Title: "d", Category: "Old", Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	// Another user's record must not be touched.
	if err := s.CreateTask(ctx, &domain.Task{ID: "t-2", UserID: "u-2", Text: "e", Category: "Old"}); err != nil {
		t.Fatal(err)
	}

	n, err := s.RenameTaskCategory(ctx, user, "Old", "New")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("renamed %d tasks, want 1", n)
	}

	if n, err = s.RenameNoteCategory(ctx, user, "Old", "New"); err != nil || n != 1 {
		t.Errorf("notes: n=%d err=%v", n, err)
	}
	if n, err = s.RenameGoalCategory(ctx, user, "Old", "New"); err != nil || n != 1 {
		t.Errorf("goals: n=%d err=%v", n, err)
	}
	if n, err = s.RenameEventCategory(ctx, user, "Old", "New"); err != nil || n != 1 {
		t.Errorf("events: n=%d err=%v", n, err)
	}

	other, err := s.GetTask(ctx, "u-2", "t-2")
	if err != nil {
		t.Fatal(err)
	}
	if other.Category != "Old" {
		t.Errorf("another user's category changed: %q", other.Category)
	}
}

func TestEventDateRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	date := time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC)
	if err := s.CreateEvent(ctx, &domain.Event{ID: "e-1", UserID: user, Title: "standup", Category: "Work", Date: date}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetEvent(ctx, user, "e-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Date.Equal(date) {
		t.Errorf("date = %v, want %v", got.Date, date)
	}
}

func TestContextSummaryUpsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if _, err := s.GetContextSummary(ctx, user); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for a new user", err)
	}

	if err := s.SaveContextSummary(ctx, user, "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveContextSummary(ctx, user, "second"); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetContextSummary(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Errorf("summary = %q, want the latest value", got)
	}
}

func TestJournalModeWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brio.db")
	s, err := sqlite.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.CreateTask(context.Background(), &domain.Task{ID: "t-1", UserID: user, Text: "x", Category: "Personal"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// WAL is persistent: a fresh connection to the file must report it.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}
