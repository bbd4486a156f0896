package assistant

import (
	"strings"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

// StatusHint tells the caller how the command went overall. It is
// advisory: partial failures still produce a usable reply.
type StatusHint string

const (
	StatusOK    StatusHint = "ok"
	StatusError StatusHint = "error"
)

const composeSummaryLen = 20

const defaultReply = "Okay."

// Compose merges the model's reply with a plain-language audit of what
// was executed. Successes and failures each become one appended clause;
// raw error codes never reach the user.
func Compose(modelReply string, results []domain.ExecutedOperationResult) (string, StatusHint) {
	msg := strings.TrimSpace(modelReply)
	if msg == "" {
		msg = defaultReply
	}
	msg = ensureTerminalPunctuation(msg)

	var done, failed []string
	for _, r := range results {
		if r.Success {
			done = append(done, r.Type+" '"+truncate(r.Summary, composeSummaryLen)+"...'")
		} else {
			failed = append(failed, r.Type+" failed: "+r.Error)
		}
	}

	if len(done) > 0 {
		msg += " Done: " + strings.Join(done, ", ") + "."
	}
	if len(failed) > 0 {
		msg += " However, some actions failed: " + strings.Join(failed, ", ") + "."
	}

	status := StatusOK
	if len(failed) > 0 && len(done) == 0 {
		status = StatusError
	}
	return msg, status
}

func ensureTerminalPunctuation(s string) string {
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
