// Package sqlite implements the entity store ports on a single SQLite
// database, for single-box deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

// Store implements domain.TaskStore, NoteStore, GoalStore, EventStore and
// ProfileStore on one database handle.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency. modernc.org/sqlite takes pragmas
	// as _pragma=name(value) connection parameters.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		text TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		due_date TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0,
		recurrence_json TEXT,
		subtasks_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, category);

	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id, category);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		target_value REAL NOT NULL,
		current_value REAL NOT NULL DEFAULT 0,
		unit TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id, category);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		date INTEGER NOT NULL,
		recurrence_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id, category);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		context_summary TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func marshalJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// ─────────────────────────────────────────
// TaskStore
// ─────────────────────────────────────────

func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	recurrence, err := marshalRecurrence(task.Recurrence)
	if err != nil {
		return fmt.Errorf("encode recurrence: %w", err)
	}
	subtasks, err := marshalSubTasks(task.SubTasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, text, description, category, due_date, completed, recurrence_json, subtasks_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Text, task.Description, task.Category, task.DueDate,
		boolToInt(task.Completed), recurrence, subtasks,
		task.CreatedAt.Unix(), task.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

const taskColumns = `id, user_id, text, description, category, due_date, completed, recurrence_json, subtasks_json, created_at, updated_at`

func (s *Store) GetTask(ctx context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	return scanTask(row)
}

func (s *Store) FindTaskByText(ctx context.Context, userID domain.UserID, text, category string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND text = ? COLLATE NOCASE`
	args := []any{userID, text}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	return scanTask(row)
}

func (s *Store) ListTasks(ctx context.Context, userID domain.UserID, category string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	recurrence, err := marshalRecurrence(task.Recurrence)
	if err != nil {
		return fmt.Errorf("encode recurrence: %w", err)
	}
	subtasks, err := marshalSubTasks(task.SubTasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET text = ?, description = ?, category = ?, due_date = ?, completed = ?,
			recurrence_json = ?, subtasks_json = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		task.Text, task.Description, task.Category, task.DueDate, boolToInt(task.Completed),
		recurrence, subtasks, task.UpdatedAt.Unix(),
		task.ID, task.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(res)
}

func (s *Store) RenameTaskCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, "tasks", userID, oldName, newName)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var completed int
	var recurrence, subtasks sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Description, &t.Category, &t.DueDate,
		&completed, &recurrence, &subtasks, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task row: %w", err)
	}

	t.Completed = completed != 0
	t.CreatedAt = time.Unix(createdAt, 0)
	t.UpdatedAt = time.Unix(updatedAt, 0)

	if recurrence.Valid && recurrence.String != "" {
		var r domain.RecurrenceRule
		if err := json.Unmarshal([]byte(recurrence.String), &r); err != nil {
			return nil, fmt.Errorf("decode recurrence: %w", err)
		}
		t.Recurrence = &r
	}
	if subtasks.Valid && subtasks.String != "" {
		if err := json.Unmarshal([]byte(subtasks.String), &t.SubTasks); err != nil {
			return nil, fmt.Errorf("decode subtasks: %w", err)
		}
	}
	return &t, nil
}

func marshalRecurrence(r *domain.RecurrenceRule) (sql.NullString, error) {
	if r == nil {
		return sql.NullString{}, nil
	}
	return marshalJSON(r)
}

func marshalSubTasks(st []domain.SubTask) (sql.NullString, error) {
	if len(st) == 0 {
		return sql.NullString{}, nil
	}
	return marshalJSON(st)
}

// ─────────────────────────────────────────
// NoteStore
// ─────────────────────────────────────────

func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, content, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Content, note.Category,
		note.CreatedAt.Unix(), note.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *Store) GetNote(ctx context.Context, userID domain.UserID, id domain.NoteID) (*domain.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, content, category, created_at, updated_at FROM notes WHERE id = ? AND user_id = ?`,
		id, userID)
	return scanNote(row)
}

func (s *Store) ListNotes(ctx context.Context, userID domain.UserID, category string) ([]*domain.Note, error) {
	query := `SELECT id, user_id, content, category, created_at, updated_at FROM notes WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET content = ?, category = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		note.Content, note.Category, note.UpdatedAt.Unix(), note.ID, note.UserID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireRow(res)
}

func (s *Store) RenameNoteCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, "notes", userID, oldName, newName)
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var n domain.Note
	var createdAt, updatedAt int64

	err := row.Scan(&n.ID, &n.UserID, &n.Content, &n.Category, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan note row: %w", err)
	}

	n.CreatedAt = time.Unix(createdAt, 0)
	n.UpdatedAt = time.Unix(updatedAt, 0)
	return &n, nil
}

// ─────────────────────────────────────────
// GoalStore
// ─────────────────────────────────────────

func (s *Store) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, name, description, category, target_value, current_value, unit, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Name, goal.Description, goal.Category,
		goal.TargetValue, goal.CurrentValue, goal.Unit,
		goal.CreatedAt.Unix(), goal.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID domain.UserID, id domain.GoalID) (*domain.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, category, target_value, current_value, unit, created_at, updated_at
		 FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	return scanGoal(row)
}

func (s *Store) ListGoals(ctx context.Context, userID domain.UserID, category string) ([]*domain.Goal, error) {
	query := `SELECT id, user_id, name, description, category, target_value, current_value, unit, created_at, updated_at
		FROM goals WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []*domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGoal(ctx context.Context, goal *domain.Goal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, description = ?, category = ?, target_value = ?, current_value = ?, unit = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		goal.Name, goal.Description, goal.Category, goal.TargetValue, goal.CurrentValue, goal.Unit,
		goal.UpdatedAt.Unix(), goal.ID, goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (s *Store) RenameGoalCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, "goals", userID, oldName, newName)
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	var g domain.Goal
	var createdAt, updatedAt int64

	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.Category,
		&g.TargetValue, &g.CurrentValue, &g.Unit, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan goal row: %w", err)
	}

	g.CreatedAt = time.Unix(createdAt, 0)
	g.UpdatedAt = time.Unix(updatedAt, 0)
	return &g, nil
}

// ─────────────────────────────────────────
// EventStore
// ─────────────────────────────────────────

func (s *Store) CreateEvent(ctx context.Context, event *domain.Event) error {
	recurrence, err := marshalRecurrence(event.Recurrence)
	if err != nil {
		return fmt.Errorf("encode recurrence: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, user_id, title, description, category, date, recurrence_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Title, event.Description, event.Category,
		event.Date.Unix(), recurrence,
		event.CreatedAt.Unix(), event.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, userID domain.UserID, id domain.EventID) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, category, date, recurrence_json, created_at, updated_at
		 FROM events WHERE id = ? AND user_id = ?`, id, userID)
	return scanEvent(row)
}

func (s *Store) ListEvents(ctx context.Context, userID domain.UserID, category string) ([]*domain.Event, error) {
	query := `SELECT id, user_id, title, description, category, date, recurrence_json, created_at, updated_at
		FROM events WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) UpdateEvent(ctx context.Context, event *domain.Event) error {
	recurrence, err := marshalRecurrence(event.Recurrence)
	if err != nil {
		return fmt.Errorf("encode recurrence: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, description = ?, category = ?, date = ?, recurrence_json = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		event.Title, event.Description, event.Category, event.Date.Unix(), recurrence,
		event.UpdatedAt.Unix(), event.ID, event.UserID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireRow(res)
}

func (s *Store) RenameEventCategory(ctx context.Context, userID domain.UserID, oldName, newName string) (int64, error) {
	return s.renameCategory(ctx, "events", userID, oldName, newName)
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	var date, createdAt, updatedAt int64
	var recurrence sql.NullString

	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Category,
		&date, &recurrence, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event row: %w", err)
	}

	e.Date = time.Unix(date, 0)
	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)

	if recurrence.Valid && recurrence.String != "" {
		var r domain.RecurrenceRule
		if err := json.Unmarshal([]byte(recurrence.String), &r); err != nil {
			return nil, fmt.Errorf("decode recurrence: %w", err)
		}
		e.Recurrence = &r
	}
	return &e, nil
}

// ─────────────────────────────────────────
// ProfileStore
// ─────────────────────────────────────────

func (s *Store) GetContextSummary(ctx context.Context, userID domain.UserID) (string, error) {
	var summary string
	err := s.db.QueryRowContext(ctx,
		`SELECT context_summary FROM profiles WHERE user_id = ?`, userID).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get context summary: %w", err)
	}
	return summary, nil
}

func (s *Store) SaveContextSummary(ctx context.Context, userID domain.UserID, summary string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, context_summary, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET context_summary = excluded.context_summary, updated_at = excluded.updated_at`,
		userID, summary, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save context summary: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) renameCategory(ctx context.Context, table string, userID domain.UserID, oldName, newName string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET category = ? WHERE user_id = ? AND category = ?`,
		newName, userID, oldName,
	)
	if err != nil {
		return 0, fmt.Errorf("rename category in %s: %w", table, err)
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
