package assistant_test

import (
	"strings"
	"testing"

	"github.com/tomasoliva/brio-agent/internal/app/assistant"
	"github.com/tomasoliva/brio-agent/internal/domain"
)

func TestComposeSuccessClause(t *testing.T) {
	msg, status := assistant.Compose("Done", []domain.ExecutedOperationResult{
		{Type: "Task", Summary: "buy milk", Success: true},
		{Type: "Event", Summary: "dentist appointment on Tuesday aft", Success: true},
	})

	if status != assistant.StatusOK {
		t.Errorf("status = %s, want ok", status)
	}
	if !strings.HasPrefix(msg, "Done.") {
		t.Errorf("model reply not punctuated: %q", msg)
	}
	if !strings.Contains(msg, "Task 'buy milk") {
		t.Errorf("success clause missing task: %q", msg)
	}
	if strings.Contains(msg, "dentist appointment on Tuesday aft") {
		t.Errorf("summary not truncated in clause: %q", msg)
	}
}

func TestComposeFailureClause(t *testing.T) {
	msg, status := assistant.Compose("Here you go!", []domain.ExecutedOperationResult{
		{Type: "Task", Summary: "buy milk", Success: true},
		{Type: "Note", Success: false, Error: "Note content is required."},
	})

	if status != assistant.StatusOK {
		t.Errorf("partial failure with a success should stay ok, got %s", status)
	}
	if !strings.Contains(msg, "However, some actions failed: Note failed: Note content is required.") {
		t.Errorf("failure clause missing: %q", msg)
	}
}

func TestComposeAllFailed(t *testing.T) {
	msg, status := assistant.Compose("", []domain.ExecutedOperationResult{
		{Type: "Command", Success: false, Error: "Could not understand the request."},
	})

	if status != assistant.StatusError {
		t.Errorf("status = %s, want error when nothing succeeded", status)
	}
	if msg == "" {
		t.Error("reply must never be empty")
	}
}

func TestComposeNoResults(t *testing.T) {
	msg, status := assistant.Compose("Hello! How can I help?", nil)
	if status != assistant.StatusOK {
		t.Errorf("status = %s, want ok", status)
	}
	if msg != "Hello! How can I help?" {
		t.Errorf("reply changed without results: %q", msg)
	}
}
