package domain

import "time"

// RecurrenceType enumerates the supported repeat cadences.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurYearly  RecurrenceType = "yearly"
)

// RecurrenceRule describes how a task or event repeats.
// Interval is always >= 1 after normalization.
type RecurrenceRule struct {
	Type        RecurrenceType `json:"type"`
	Interval    int            `json:"interval"`
	DaysOfWeek  []int          `json:"daysOfWeek,omitempty"`  // weekday indices 0-6
	DayOfMonth  int            `json:"dayOfMonth,omitempty"`  // 1-31
	MonthOfYear int            `json:"monthOfYear,omitempty"` // 1-12
	EndDate     string         `json:"endDate,omitempty"`     // "2006-01-02", cleared if unparseable
	Count       int            `json:"count,omitempty"`
}

type SubTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID          TaskID          `json:"id"`
	UserID      UserID          `json:"user_id"`
	Text        string          `json:"text"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	DueDate     string          `json:"due_date,omitempty"` // "2006-01-02", empty = no due date
	Completed   bool            `json:"completed"`
	Recurrence  *RecurrenceRule `json:"recurrence,omitempty"`
	SubTasks    []SubTask       `json:"sub_tasks,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Note struct {
	ID        NoteID    `json:"id"`
	UserID    UserID    `json:"user_id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Goal struct {
	ID           GoalID    `json:"id"`
	UserID       UserID    `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	TargetValue  float64   `json:"target_value"`
	CurrentValue float64   `json:"current_value"`
	Unit         string    `json:"unit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Event struct {
	ID          EventID         `json:"id"`
	UserID      UserID          `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Recurrence  *RecurrenceRule `json:"recurrence,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UserProfile carries the only per-user state the assistant core persists:
// the rolling context summary fed back into future prompts.
type UserProfile struct {
	UserID         UserID    `json:"user_id"`
	ContextSummary string    `json:"context_summary"`
	UpdatedAt      time.Time `json:"updated_at"`
}
