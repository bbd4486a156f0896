package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomasoliva/brio-agent/internal/domain"
	"github.com/tomasoliva/brio-agent/internal/observability"
)

const summarizeTimeout = 60 * time.Second

// ContextMemory owns the per-user rolling summary: it stays untouched
// while a session runs and is rewritten once, at session end, from the
// transcript plus the previous summary.
type ContextMemory struct {
	llm      domain.LLMClient
	profiles domain.ProfileStore
	now      func() time.Time
}

func NewContextMemory(llm domain.LLMClient, profiles domain.ProfileStore) *ContextMemory {
	return &ContextMemory{llm: llm, profiles: profiles, now: time.Now}
}

type EndSessionResult struct {
	Summary string
	Changed bool
}

// EndSession summarizes the transcript into the persisted context summary.
// An empty transcript is a no-op that still acknowledges "unchanged". A
// summarization or persistence failure is reported but never blocks the
// session from ending.
func (m *ContextMemory) EndSession(ctx context.Context, userID domain.UserID, transcript []domain.ChatMessage) (EndSessionResult, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	if transcriptEmpty(transcript) {
		log.Info("session ended with empty transcript, summary unchanged")
		return EndSessionResult{Changed: false}, nil
	}

	existing, err := m.profiles.GetContextSummary(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return EndSessionResult{}, fmt.Errorf("load context summary: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	raw, err := m.llm.Generate(ctx, domain.GenerateRequest{
		System: summarySystemPrompt,
		Parts:  []domain.MessagePart{{Text: BuildSummaryPrompt(existing, transcript)}},
	})
	if err != nil {
		log.Error("session summarization failed", "error", err)
		return EndSessionResult{Summary: existing}, fmt.Errorf("summarize session: %w", err)
	}

	summary := capSummary(strings.TrimSpace(raw))
	if summary == existing {
		log.Info("session summary unchanged")
		return EndSessionResult{Summary: existing, Changed: false}, nil
	}

	if err := m.profiles.SaveContextSummary(ctx, userID, summary); err != nil {
		log.Error("failed to persist context summary", "error", err)
		return EndSessionResult{Summary: existing}, fmt.Errorf("persist context summary: %w", err)
	}

	log.Info("context summary updated", "length", len(summary))
	return EndSessionResult{Summary: summary, Changed: true}, nil
}

// capSummary enforces the length cap, keeping the suffix so the most
// recent content survives.
func capSummary(s string) string {
	r := []rune(s)
	if len(r) <= domain.ContextSummaryMaxLen {
		return s
	}
	return string(r[len(r)-domain.ContextSummaryMaxLen:])
}

func transcriptEmpty(transcript []domain.ChatMessage) bool {
	for _, m := range transcript {
		if m.IsAudioPlaceholder {
			continue
		}
		if strings.TrimSpace(m.Message) != "" {
			return false
		}
	}
	return true
}
