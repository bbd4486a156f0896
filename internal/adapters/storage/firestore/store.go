package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

// Store implements all entity store ports on Firestore. One flat
// collection per entity type, documents keyed by entity ID and scoped by
// a user_id field.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project
// (BRIO_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Firestore types
// ─────────────────────────────────────────

type recurrenceDoc struct {
	Type        string `firestore:"type"`
	Interval    int    `firestore:"interval"`
	DaysOfWeek  []int  `firestore:"days_of_week"`
	DayOfMonth  int    `firestore:"day_of_month"`
	MonthOfYear int    `firestore:"month_of_year"`
	EndDate     string `firestore:"end_date"`
	Count       int    `firestore:"count"`
}

type subTaskDoc struct {
	ID        string `firestore:"id"`
	Text      string `firestore:"text"`
	Completed bool   `firestore:"completed"`
}

type taskDoc struct {
	UserID      string         `firestore:"user_id"`
	Text        string         `firestore:"text"`
	TextLower   string         `firestore:"text_lower"` // for case-insensitive name lookup
	Description string         `firestore:"description"`
	Category    string         `firestore:"category"`
	DueDate     string         `firestore:"due_date"`
	Completed   bool           `firestore:"completed"`
	Recurrence  *recurrenceDoc `firestore:"recurrence"`
	SubTasks    []subTaskDoc   `firestore:"sub_tasks"`
	CreatedAt   time.Time      `firestore:"created_at"`
	UpdatedAt   time.Time      `firestore:"updated_at"`
}

type noteDoc struct {
	UserID    string    `firestore:"user_id"`
	Content   string    `firestore:"content"`
	Category  string    `firestore:"category"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type goalDoc struct {
	UserID       string    `firestore:"user_id"`
	Name         string    `firestore:"name"`
	Description  string    `firestore:"description"`
	Category     string    `firestore:"category"`
	TargetValue  float64   `firestore:"target_value"`
	CurrentValue float64   `firestore:"current_value"`
	Unit         string    `firestore:"unit"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

type eventDoc struct {
	UserID      string         `firestore:"user_id"`
	Title       string         `firestore:"title"`
	Description string         `firestore:"description"`
	Category    string         `firestore:"category"`
	Date        time.Time      `firestore:"date"`
	Recurrence  *recurrenceDoc `firestore:"recurrence"`
	CreatedAt   time.Time      `firestore:"created_at"`
	UpdatedAt   time.Time      `firestore:"updated_at"`
}

type profileDoc struct {
	ContextSummary string    `firestore:"context_summary"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func toRecurrenceDoc(r *domain.RecurrenceRule) *recurrenceDoc {
	if r == nil {
		return nil
	}
	return &recurrenceDoc{
		Type:        string(r.Type),
		Interval:    r.Interval,
		DaysOfWeek:  r.DaysOfWeek,
		DayOfMonth:  r.DayOfMonth,
		MonthOfYear: r.MonthOfYear,
		EndDate:     r.EndDate,
		Count:       r.Count,
	}
}

func fromRecurrenceDoc(d *recurrenceDoc) *domain.RecurrenceRule {
	if d == nil {
		return nil
	}
	return &domain.RecurrenceRule{
		Type:        domain.RecurrenceType(d.Type),
		Interval:    d.Interval,
		DaysOfWeek:  d.DaysOfWeek,
		DayOfMonth:  d.DayOfMonth,
		MonthOfYear: d.MonthOfYear,
		EndDate:     d.EndDate,
		Count:       d.Count,
	}
}

// ─────────────────────────────────────────
// TaskStore
// ─────────────────────────────────────────

func (s *Store) tasksCol() *firestore.CollectionRef { return s.client.Collection("tasks") }

func toTaskDoc(t *domain.Task) taskDoc {
	subs := make([]subTaskDoc, 0, len(t.SubTasks))
	for _, st := range t.SubTasks {
		subs = append(subs, subTaskDoc(st))
	}
	return taskDoc{
		UserID:      string(t.UserID),
		Text:        t.Text,
		TextLower:   strings.ToLower(t.Text),
		Description: t.Description,
		Category:    t.Category,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		Recurrence:  toRecurrenceDoc(t.Recurrence),
		SubTasks:    subs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromTaskDoc(id string, d taskDoc) *domain.Task {
	subs := make([]domain.SubTask, 0, len(d.SubTasks))
	for _, st := range d.SubTasks {
		subs = append(subs, domain.SubTask(st))
	}
	return &domain.Task{
		ID:          domain.TaskID(id),
		UserID:      domain.UserID(d.UserID),
		Text:        d.Text,
		Description: d.Description,
		Category:    d.Category,
		DueDate:     d.DueDate,
		Completed:   d.Completed,
		Recurrence:  fromRecurrenceDoc(d.Recurrence),
		SubTasks:    subs,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	_, err := s.tasksCol().Doc(string(task.ID)).Create(ctx, toTaskDoc(task))
	if err != nil {
		return fmt.Errorf("firestore CreateTask: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	snap, err := s.tasksCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetTask: %w", err)
	}

	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetTask decode: %w", err)
	}
	if doc.UserID != string(userID) {
		return nil, domain.ErrNotFound
	}
	return fromTaskDoc(snap.Ref.ID, doc), nil
}

func (s *Store) FindTaskByText(ctx context.Context, userID domain.UserID, text, category string) (*domain.Task, error) {
	q := s.tasksCol().
		Where("user_id", "==", string(userID)).
		Where("text_lower", "==", strings.ToLower(text))
	if category != "" {
		q = q.Where("category", "==", category)
	}

	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore FindTaskByText: %w", err)
	}

	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode taskDoc: %w", err)
	}
	return fromTaskDoc(snap.Ref.ID, doc), nil
}

func (s *Store) ListTasks(ctx context.Context, userID domain.UserID, category string) ([]*domain.Task, error) {
	q := s.tasksCol().Where("user_id", "==", string(userID))
	if category != "" {
		q = q.Where("category", "==", category)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Task
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListTasks: %w", err)
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode taskDoc: %w", err)
		}
		out = append(out, fromTaskDoc(snap.Ref.ID, doc))
	}
	return out, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	_, err := s.tasksCol().Doc(string(task.ID)).Set(ctx, toTaskDoc(task))
	if err != nil {
		return fmt.Errorf("firestore UpdateTask: %w", err)
	}
	return nil
}

func (s *Store) RenameTaskCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, s.tasksCol(), userID, oldName, newName)
}

// ─────────────────────────────────────────
// NoteStore
// ─────────────────────────────────────────

func (s *Store) notesCol() *firestore.CollectionRef { return s.client.Collection("notes") }

func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	doc := noteDoc{
		UserID:    string(note.UserID),
		Content:   note.Content,
		Category:  note.Category,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	_, err := s.notesCol().Doc(string(note.ID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateNote: %w", err)
	}
	return nil
}

func (s *Store) GetNote(ctx context.Context, userID domain.UserID, id domain.NoteID) (*domain.Note, error) {
	snap, err := s.notesCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetNote: %w", err)
	}

	var doc noteDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetNote decode: %w", err)
	}
	if doc.UserID != string(userID) {
		return nil, domain.ErrNotFound
	}
	return &domain.Note{
		ID:        id,
		UserID:    userID,
		Content:   doc.Content,
		Category:  doc.Category,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *Store) ListNotes(ctx context.Context, userID domain.UserID, category string) ([]*domain.Note, error) {
	q := s.notesCol().Where("user_id", "==", string(userID))
	if category != "" {
		q = q.Where("category", "==", category)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Note
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListNotes: %w", err)
		}

		var doc noteDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode noteDoc: %w", err)
		}
		out = append(out, &domain.Note{
			ID:        domain.NoteID(snap.Ref.ID),
			UserID:    domain.UserID(doc.UserID),
			Content:   doc.Content,
			Category:  doc.Category,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return out, nil
}

func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	doc := noteDoc{
		UserID:    string(note.UserID),
		Content:   note.Content,
		Category:  note.Category,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	_, err := s.notesCol().Doc(string(note.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore UpdateNote: %w", err)
	}
	return nil
}

func (s *Store) RenameNoteCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, s.notesCol(), userID, oldName, newName)
}

// ─────────────────────────────────────────
// GoalStore
// ─────────────────────────────────────────

func (s *Store) goalsCol() *firestore.CollectionRef { return s.client.Collection("goals") }

func (s *Store) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	doc := goalDoc{
		UserID:       string(goal.UserID),
		Name:         goal.Name,
		Description:  goal.Description,
		Category:     goal.Category,
		TargetValue:  goal.TargetValue,
		CurrentValue: goal.CurrentValue,
		Unit:         goal.Unit,
		CreatedAt:    goal.CreatedAt,
		UpdatedAt:    goal.UpdatedAt,
	}
	_, err := s.goalsCol().Doc(string(goal.ID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateGoal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID domain.UserID, id domain.GoalID) (*domain.Goal, error) {
	snap, err := s.goalsCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetGoal: %w", err)
	}

	var doc goalDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetGoal decode: %w", err)
	}
	if doc.UserID != string(userID) {
		return nil, domain.ErrNotFound
	}
	return goalFromDoc(snap.Ref.ID, doc), nil
}

func goalFromDoc(id string, doc goalDoc) *domain.Goal {
	return &domain.Goal{
		ID:           domain.GoalID(id),
		UserID:       domain.UserID(doc.UserID),
		Name:         doc.Name,
		Description:  doc.Description,
		Category:     doc.Category,
		TargetValue:  doc.TargetValue,
		CurrentValue: doc.CurrentValue,
		Unit:         doc.Unit,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func (s *Store) ListGoals(ctx context.Context, userID domain.UserID, category string) ([]*domain.Goal, error) {
	q := s.goalsCol().Where("user_id", "==", string(userID))
	if category != "" {
		q = q.Where("category", "==", category)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Goal
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListGoals: %w", err)
		}

		var doc goalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode goalDoc: %w", err)
		}
		out = append(out, goalFromDoc(snap.Ref.ID, doc))
	}
	return out, nil
}

func (s *Store) UpdateGoal(ctx context.Context, goal *domain.Goal) error {
	doc := goalDoc{
		UserID:       string(goal.UserID),
		Name:         goal.Name,
		Description:  goal.Description,
		Category:     goal.Category,
		TargetValue:  goal.TargetValue,
		CurrentValue: goal.CurrentValue,
		Unit:         goal.Unit,
		CreatedAt:    goal.CreatedAt,
		UpdatedAt:    goal.UpdatedAt,
	}
	_, err := s.goalsCol().Doc(string(goal.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore UpdateGoal: %w", err)
	}
	return nil
}

func (s *Store) RenameGoalCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, s.goalsCol(), userID, oldName, newName)
}

// ─────────────────────────────────────────
// EventStore
// ─────────────────────────────────────────

func (s *Store) eventsCol() *firestore.CollectionRef { return s.client.Collection("events") }

func (s *Store) CreateEvent(ctx context.Context, event *domain.Event) error {
	doc := eventDoc{
		UserID:      string(event.UserID),
		Title:       event.Title,
		Description: event.Description,
		Category:    event.Category,
		Date:        event.Date,
		Recurrence:  toRecurrenceDoc(event.Recurrence),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	_, err := s.eventsCol().Doc(string(event.ID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateEvent: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, userID domain.UserID, id domain.EventID) (*domain.Event, error) {
	snap, err := s.eventsCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetEvent: %w", err)
	}

	var doc eventDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetEvent decode: %w", err)
	}
	if doc.UserID != string(userID) {
		return nil, domain.ErrNotFound
	}
	return eventFromDoc(snap.Ref.ID, doc), nil
}

func eventFromDoc(id string, doc eventDoc) *domain.Event {
	return &domain.Event{
		ID:          domain.EventID(id),
		UserID:      domain.UserID(doc.UserID),
		Title:       doc.Title,
		Description: doc.Description,
		Category:    doc.Category,
		Date:        doc.Date,
		Recurrence:  fromRecurrenceDoc(doc.Recurrence),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func (s *Store) ListEvents(ctx context.Context, userID domain.UserID, category string) ([]*domain.Event, error) {
	q := s.eventsCol().Where("user_id", "==", string(userID))
	if category != "" {
		q = q.Where("category", "==", category)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Event
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListEvents: %w", err)
		}

		var doc eventDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode eventDoc: %w", err)
		}
		out = append(out, eventFromDoc(snap.Ref.ID, doc))
	}
	return out, nil
}

func (s *Store) UpdateEvent(ctx context.Context, event *domain.Event) error {
	doc := eventDoc{
		UserID:      string(event.UserID),
		Title:       event.Title,
		Description: event.Description,
		Category:    event.Category,
		Date:        event.Date,
		Recurrence:  toRecurrenceDoc(event.Recurrence),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	_, err := s.eventsCol().Doc(string(event.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore UpdateEvent: %w", err)
	}
	return nil
}

func (s *Store) RenameEventCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, s.eventsCol(), userID, oldName, newName)
}

// ─────────────────────────────────────────
// ProfileStore
// ─────────────────────────────────────────

func (s *Store) profilesCol() *firestore.CollectionRef { return s.client.Collection("profiles") }

func (s *Store) GetContextSummary(ctx context.Context, userID domain.UserID) (string, error) {
	snap, err := s.profilesCol().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("firestore GetContextSummary: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", fmt.Errorf("firestore GetContextSummary decode: %w", err)
	}
	return doc.ContextSummary, nil
}

func (s *Store) SaveContextSummary(ctx context.Context, userID domain.UserID, summary string) error {
	doc := profileDoc{
		ContextSummary: summary,
		UpdatedAt:      time.Now(),
	}
	_, err := s.profilesCol().Doc(string(userID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore SaveContextSummary: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

// renameCategory walks the matching documents and rewrites their category
// field one by one. Operations on other entity types are independent; a
// partial rename surfaces as an error with the count so far.
func (s *Store) renameCategory(ctx context.Context, col *firestore.CollectionRef, userID domain.UserID, oldName, newName string) (int64, error) {
	iter := col.
		Where("user_id", "==", string(userID)).
		Where("category", "==", oldName).
		Documents(ctx)
	defer iter.Stop()

	var n int64
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return n, fmt.Errorf("firestore renameCategory query: %w", err)
		}

		_, err = snap.Ref.Update(ctx, []firestore.Update{{Path: "category", Value: newName}})
		if err != nil {
			return n, fmt.Errorf("firestore renameCategory update: %w", err)
		}
		n++
	}
	return n, nil
}
