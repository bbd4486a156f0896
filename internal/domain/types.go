package domain

import "time"

type UserID string
type TaskID string
type NoteID string
type GoalID string
type EventID string

type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

type InteractionMode string

const (
	ModeQuickCommand InteractionMode = "quickCommand" // one request/response, no transcript
	ModeChatSession  InteractionMode = "chatSession"  // multi-turn, transcript summarized at session end
)

const (
	// CategoryAll is the "no filter" sentinel. Executable operations must
	// never carry it; the normalizer resolves it to a concrete category.
	CategoryAll = "All Projects"

	// CategoryDefault is the last-resort fallback when neither the current
	// category nor the available list yields a concrete one.
	CategoryDefault = "Personal"
)

// ContextSummaryMaxLen caps the persisted per-user context summary.
// When exceeded, the suffix (most recent content) is kept.
const ContextSummaryMaxLen = 10_000

type Timestamp = time.Time
