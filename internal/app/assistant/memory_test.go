package assistant_test

import (
	"context"
	"strings"
	"testing"

	"github.com/tomasoliva/brio-agent/internal/adapters/llm"
	memstore "github.com/tomasoliva/brio-agent/internal/adapters/storage/memory"
	"github.com/tomasoliva/brio-agent/internal/app/assistant"
	"github.com/tomasoliva/brio-agent/internal/domain"
)

func TestEndSessionEmptyTranscript(t *testing.T) {
	mock := llm.NewMockLLM()
	profiles := memstore.NewProfileStore()
	mem := assistant.NewContextMemory(mock, profiles)
	ctx := context.Background()

	if err := profiles.SaveContextSummary(ctx, user, "previous summary"); err != nil {
		t.Fatal(err)
	}

	res, err := mem.EndSession(ctx, user, []domain.ChatMessage{
		{Sender: domain.SenderUser, Message: "   "},
		{Sender: domain.SenderAI, Message: "voice note", IsAudioPlaceholder: true},
	})
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if res.Changed {
		t.Error("empty transcript must not change the summary")
	}
	if len(mock.Requests) != 0 {
		t.Errorf("no model call expected, got %d", len(mock.Requests))
	}

	summary, err := profiles.GetContextSummary(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if summary != "previous summary" {
		t.Errorf("summary = %q, want untouched previous value", summary)
	}
}

func TestEndSessionPersistsNewSummary(t *testing.T) {
	mock := llm.NewMockLLM("User prefers morning workouts and is training for a half marathon.")
	profiles := memstore.NewProfileStore()
	mem := assistant.NewContextMemory(mock, profiles)
	ctx := context.Background()

	if err := profiles.SaveContextSummary(ctx, user, "User likes running."); err != nil {
		t.Fatal(err)
	}

	res, err := mem.EndSession(ctx, user, []domain.ChatMessage{
		{Sender: domain.SenderUser, Message: "I signed up for a half marathon"},
	})
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if !res.Changed {
		t.Error("summary should be marked changed")
	}

	summary, err := profiles.GetContextSummary(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if summary != "User prefers morning workouts and is training for a half marathon." {
		t.Errorf("persisted summary = %q", summary)
	}

	// The previous summary must be offered to the model for merging.
	if len(mock.Requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(mock.Requests))
	}
	prompt := mock.Requests[0].Parts[0].Text
	if !strings.Contains(prompt, "User likes running.") {
		t.Errorf("prompt missing previous summary: %q", prompt)
	}
	if !strings.Contains(prompt, "I signed up for a half marathon") {
		t.Errorf("prompt missing transcript: %q", prompt)
	}
}

func TestEndSessionUnchangedSummaryNotRewritten(t *testing.T) {
	mock := llm.NewMockLLM("Same as before.")
	profiles := memstore.NewProfileStore()
	mem := assistant.NewContextMemory(mock, profiles)
	ctx := context.Background()

	if err := profiles.SaveContextSummary(ctx, user, "Same as before."); err != nil {
		t.Fatal(err)
	}

	res, err := mem.EndSession(ctx, user, []domain.ChatMessage{
		{Sender: domain.SenderUser, Message: "nothing new"},
	})
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if res.Changed {
		t.Error("identical summary should not count as changed")
	}
}

func TestEndSessionCapsSummaryLength(t *testing.T) {
	long := strings.Repeat("x", domain.ContextSummaryMaxLen) + "TAIL"
	mock := llm.NewMockLLM(long)
	profiles := memstore.NewProfileStore()
	mem := assistant.NewContextMemory(mock, profiles)
	ctx := context.Background()

	res, err := mem.EndSession(ctx, user, []domain.ChatMessage{
		{Sender: domain.SenderUser, Message: "a very long session"},
	})
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	if got := len([]rune(res.Summary)); got != domain.ContextSummaryMaxLen {
		t.Errorf("summary length = %d, want %d", got, domain.ContextSummaryMaxLen)
	}
	if !strings.HasSuffix(res.Summary, "TAIL") {
		t.Error("cap must keep the end of the summary, not the start")
	}
}
