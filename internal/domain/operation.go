package domain

import "time"

// Action tags the kind of structured instruction the model extracted
// from a user command.
type Action string

const (
	ActionAddTask       Action = "addTask"
	ActionAddNote       Action = "addNote"
	ActionAddGoal       Action = "addGoal"
	ActionAddEvent      Action = "addEvent"
	ActionUpdateTask    Action = "updateTask"
	ActionClarification Action = "clarification"
	ActionSuggestion    Action = "suggestion"
	ActionUnknown       Action = "unknown"
)

// Operation is a closed sum over the actions above: exactly one concrete
// payload shape per action, so invalid field combinations cannot be built.
// Executable operations (everything except clarification, suggestion and
// unknown) must carry a concrete, known category before execution.
type Operation interface {
	Action() Action
}

// AddTask creates a task. Text is required at execution time.
type AddTask struct {
	Text        string          `json:"text,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	DueDate     string          `json:"dueDate,omitempty"` // "2006-01-02" after normalization
	Recurrence  *RecurrenceRule `json:"recurrenceRule,omitempty"`
	SubTasks    []string        `json:"subTasks,omitempty"`
}

// AddNote creates a note. Content is required at execution time.
type AddNote struct {
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`
}

// AddGoal creates a goal. Name, TargetValue and Unit are required at
// execution time.
type AddGoal struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	TargetValue float64 `json:"targetValue,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

// AddEvent creates a calendar event. Title and Date are required at
// execution time. Date is RFC 3339 after normalization.
type AddEvent struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Date        string          `json:"date,omitempty"`
	Recurrence  *RecurrenceRule `json:"recurrenceRule,omitempty"`
}

// SubTaskInput is a sub-item as the model emits it.
type SubTaskInput struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed,omitempty"`
}

// UpdateTask mutates an existing task. The target is resolved by TaskID
// when present, otherwise by case-insensitive exact match on Text across
// the user's tasks. Pointer fields are overwritten only when present;
// SubTasksToAdd appends, SubTasks replaces the sub-item list wholesale.
type UpdateTask struct {
	TaskID        string          `json:"taskIdToUpdate,omitempty"`
	Text          string          `json:"text,omitempty"`
	Category      string          `json:"category,omitempty"`
	DueDate       *string         `json:"dueDate,omitempty"`
	Completed     *bool           `json:"completed,omitempty"`
	Recurrence    *RecurrenceRule `json:"recurrenceRule,omitempty"`
	SubTasksToAdd []string        `json:"subTasksToAdd,omitempty"`
	SubTasks      *[]SubTaskInput `json:"subTasks,omitempty"`
}

// Clarification asks the user a follow-up question instead of acting.
type Clarification struct {
	Message string `json:"message,omitempty"`
}

// Suggestion proposes something without touching any store.
type Suggestion struct {
	Message string `json:"message,omitempty"`
}

// Unknown marks input the model could not turn into an instruction.
type Unknown struct {
	Err string `json:"error,omitempty"`
}

func (AddTask) Action() Action       { return ActionAddTask }
func (AddNote) Action() Action       { return ActionAddNote }
func (AddGoal) Action() Action       { return ActionAddGoal }
func (AddEvent) Action() Action      { return ActionAddEvent }
func (UpdateTask) Action() Action    { return ActionUpdateTask }
func (Clarification) Action() Action { return ActionClarification }
func (Suggestion) Action() Action    { return ActionSuggestion }
func (Unknown) Action() Action       { return ActionUnknown }

// OperationEnvelope is the wire form of an Operation: a tag plus the
// action-specific payload.
type OperationEnvelope struct {
	Action  Action    `json:"action"`
	Payload Operation `json:"payload"`
}

// Envelope wraps operations for transport.
func Envelope(ops []Operation) []OperationEnvelope {
	out := make([]OperationEnvelope, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperationEnvelope{Action: op.Action(), Payload: op})
	}
	return out
}

// ExecutedOperationResult records the outcome of one attempted operation.
// Created once per operation, immutable afterwards.
type ExecutedOperationResult struct {
	Type    string `json:"type"`              // human label derived from the action
	Summary string `json:"summary,omitempty"` // truncated primary text
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"` // present iff not Success
}

// ChatMessage is one turn of a chat-session transcript. The transcript is
// held client-side and only its distilled summary persists.
type ChatMessage struct {
	Sender             Sender                    `json:"sender"`
	Message            string                    `json:"message"`
	Timestamp          time.Time                 `json:"timestamp,omitempty"`
	ExecutedOps        []ExecutedOperationResult `json:"executedOps,omitempty"`
	IsAudioPlaceholder bool                      `json:"isAudioPlaceholder,omitempty"`
}

// InlineData is a binary attachment (e.g. recorded audio) passed through
// to the model untouched.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// MessagePart is one piece of user input: text, inline binary, or both.
type MessagePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}
