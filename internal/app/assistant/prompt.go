package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

const baseSystemPrompt = `
You are "Brio", the assistant inside a personal productivity dashboard (tasks, notes, goals, calendar events).

Your job: turn the user's request into structured operations the dashboard can execute, plus a short friendly reply.

You MUST answer with a single JSON object of this exact shape:
{
  "reply": "short natural-language answer to the user",
  "operations": [ { "action": "...", "payload": { ... } } ]
}

Supported actions and their payload fields:
- addTask: text (required), description, category, dueDate ("YYYY-MM-DD"), recurrenceRule, subTasks (list of strings)
- addNote: content (required), category
- addGoal: name (required), targetValue (required, number), unit (required), description, category
- addEvent: title (required), date (required, "YYYY-MM-DD HH:MM" or full timestamp), description, category, recurrenceRule
- updateTask: taskIdToUpdate OR text (to find the task by name), then any of: dueDate, category, completed, recurrenceRule, subTasksToAdd (list of strings), subTasks (full replacement list)
- clarification: message (ask the user a follow-up question when the request is ambiguous)
- suggestion: message (propose something without changing any data)
- unknown: error (when the request cannot be mapped to anything above)

recurrenceRule shape: {"type": "daily"|"weekly"|"monthly"|"yearly", "interval": 1, "daysOfWeek": [0-6], "dayOfMonth": n, "monthOfYear": n, "endDate": "YYYY-MM-DD", "count": n}

Rules:
- Emit one operation per distinct intent; a single message can produce several operations.
- Use the current category unless the user names another one. NEVER use "All Projects" as a category.
- Resolve relative dates ("tomorrow", "next Friday") against today's date given below.
- A reminder at a specific time of day is an event, not a task.
- Answer in the same language as the user. Keep the reply to one or two sentences.
`

const greetingInstruction = `The user just opened a chat session and has not said anything yet. Produce a short, warm greeting in "reply" and an empty "operations" list.`

// PromptContext carries everything the prompt embeds besides the user's
// own message.
type PromptContext struct {
	Now             time.Time
	CurrentCategory string
	Categories      []string
	ContextSummary  string
	Greeting        bool // chat session opening turn, no user input yet
}

// BuildSystemPrompt assembles the full system instruction: persona and
// output contract, today's and tomorrow's dates, the category situation
// and what we remember about the user.
func BuildSystemPrompt(pc PromptContext) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	today := pc.Now.Format("2006-01-02")
	tomorrow := pc.Now.AddDate(0, 0, 1).Format("2006-01-02")
	fmt.Fprintf(&b, "\nToday is %s (%s). Tomorrow is %s.\n", today, pc.Now.Weekday(), tomorrow)

	if len(pc.Categories) > 0 {
		fmt.Fprintf(&b, "Available categories: %s.\n", strings.Join(pc.Categories, ", "))
	}
	if pc.CurrentCategory != "" {
		fmt.Fprintf(&b, "The user is currently viewing the %q category.\n", pc.CurrentCategory)
	}

	if pc.ContextSummary != "" {
		b.WriteString("\nWhat you remember about this user from earlier sessions:\n")
		b.WriteString(pc.ContextSummary)
		b.WriteString("\n")
	}

	if pc.Greeting {
		b.WriteString("\n")
		b.WriteString(greetingInstruction)
		b.WriteString("\n")
	}

	return b.String()
}

const summarySystemPrompt = `
You maintain a compact long-term memory about a user of a productivity dashboard.

Given the existing memory and the transcript of the chat session that just ended, write the updated memory: the user's preferences, recurring themes, naming habits and anything useful for interpreting future requests.

Answer with the memory text only, no preamble. Stay under 1500 words. Merge new information into the existing memory instead of appending a log.
`

// BuildSummaryPrompt renders the session-end summarization request.
func BuildSummaryPrompt(existing string, transcript []domain.ChatMessage) string {
	var b strings.Builder

	if existing != "" {
		b.WriteString("Existing memory:\n")
		b.WriteString(existing)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Existing memory: (empty)\n\n")
	}

	b.WriteString("Session transcript:\n")
	for _, m := range transcript {
		if m.IsAudioPlaceholder {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Message)
	}

	return b.String()
}
