package assistant

import (
	"slices"
	"time"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

// ResolveCategory picks the concrete category an operation executes
// against: the current one when it is concrete and known, otherwise the
// first concrete known category, otherwise the fixed fallback.
func ResolveCategory(current string, available []string) string {
	if current != "" && current != domain.CategoryAll && slices.Contains(available, current) {
		return current
	}
	for _, c := range available {
		if c != "" && c != domain.CategoryAll {
			return c
		}
	}
	return domain.CategoryDefault
}

// Normalize post-processes one extracted operation: it resolves the
// category to a concrete known one, reformats date fields and validates
// recurrence rules. Invalid optional fields are cleared, never rejected;
// missing required fields are the executor's concern.
func Normalize(op domain.Operation, current string, available []string) domain.Operation {
	switch o := op.(type) {
	case domain.AddTask:
		o.Category = normalizeCategory(o.Category, current, available)
		o.DueDate = normalizeDate(o.DueDate)
		o.Recurrence = normalizeRecurrence(o.Recurrence)
		return o
	case domain.AddNote:
		o.Category = normalizeCategory(o.Category, current, available)
		return o
	case domain.AddGoal:
		o.Category = normalizeCategory(o.Category, current, available)
		return o
	case domain.AddEvent:
		o.Category = normalizeCategory(o.Category, current, available)
		o.Date = normalizeTimestamp(o.Date)
		o.Recurrence = normalizeRecurrence(o.Recurrence)
		return o
	case domain.UpdateTask:
		o.Category = normalizeCategory(o.Category, current, available)
		if o.DueDate != nil {
			if d := normalizeDate(*o.DueDate); d != "" {
				o.DueDate = &d
			} else {
				o.DueDate = nil
			}
		}
		o.Recurrence = normalizeRecurrence(o.Recurrence)
		return o
	default:
		// clarification, suggestion and unknown pass through untouched
		return op
	}
}

func normalizeCategory(category, current string, available []string) string {
	if category != "" && category != domain.CategoryAll && slices.Contains(available, category) {
		return category
	}
	return ResolveCategory(current, available)
}

// normalizeDate reduces a date field to "2006-01-02" or clears it. A full
// timestamp is accepted and cut down to its calendar date; anything else
// is dropped rather than guessed at.
func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	return ""
}

// normalizeTimestamp reduces an event date to RFC 3339 or clears it. A
// bare calendar date is coerced to noon on that date.
func normalizeTimestamp(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(time.RFC3339)
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local)
		return noon.Format(time.RFC3339)
	}
	return ""
}

func normalizeRecurrence(r *domain.RecurrenceRule) *domain.RecurrenceRule {
	if r == nil {
		return nil
	}
	switch r.Type {
	case domain.RecurDaily, domain.RecurWeekly, domain.RecurMonthly, domain.RecurYearly:
	default:
		return nil
	}

	out := *r
	if out.Interval < 1 {
		out.Interval = 1
	}
	out.EndDate = normalizeDate(out.EndDate)

	if len(out.DaysOfWeek) > 0 {
		days := make([]int, 0, len(out.DaysOfWeek))
		for _, d := range out.DaysOfWeek {
			if d >= 0 && d <= 6 {
				days = append(days, d)
			}
		}
		out.DaysOfWeek = days
	}

	return &out
}
