package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/tomasoliva/brio-agent/internal/domain"
	"github.com/tomasoliva/brio-agent/internal/observability"
)

// The model call is the single blocking step of a command; a hung service
// must degrade to an unknown operation, never stall the request.
const extractTimeout = 60 * time.Second

const formatErrorMessage = "AI response format error."

// Extractor frames a user command for the language-model service and
// parses the structured result back into operations.
type Extractor struct {
	llm domain.LLMClient
	now func() time.Time
}

func NewExtractor(llm domain.LLMClient) *Extractor {
	return &Extractor{llm: llm, now: time.Now}
}

type ExtractInput struct {
	Parts           []domain.MessagePart
	CurrentCategory string
	Categories      []string
	Mode            domain.InteractionMode
	ContextSummary  string
	History         []domain.ChatMessage
}

type ExtractOutput struct {
	Reply      string
	Operations []domain.Operation
	// OverallError is set only when the model call itself failed; the
	// operations then contain a single unknown carrying the same message.
	OverallError string
}

// Extract runs one model round trip. It never returns an error: transport
// failures surface as OverallError, malformed output as an unknown
// operation, so the caller always has something to execute or report.
func (e *Extractor) Extract(ctx context.Context, in ExtractInput) ExtractOutput {
	log := observability.LoggerFromContext(ctx)

	greeting := in.Mode == domain.ModeChatSession && len(in.History) == 0 && partsEmpty(in.Parts)

	system := BuildSystemPrompt(PromptContext{
		Now:             e.now(),
		CurrentCategory: in.CurrentCategory,
		Categories:      in.Categories,
		ContextSummary:  in.ContextSummary,
		Greeting:        greeting,
	})

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	raw, err := e.llm.Generate(ctx, domain.GenerateRequest{
		System:     system,
		Parts:      in.Parts,
		History:    in.History,
		JSONOutput: true,
	})
	if err != nil {
		log.Error("intent extraction failed", "error", err)
		msg := err.Error()
		return ExtractOutput{
			Operations:   []domain.Operation{domain.Unknown{Err: msg}},
			OverallError: msg,
		}
	}

	return parseModelResponse(raw)
}

type wireOperation struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type wireResponse struct {
	Reply      string           `json:"reply"`
	Operations *[]wireOperation `json:"operations"`
}

// parseModelResponse applies the lenient parsing policy: anything that is
// not the expected shape becomes a single unknown operation rather than a
// failed request, and whatever prose is salvageable is kept as the reply.
func parseModelResponse(raw string) ExtractOutput {
	text := stripCodeFence(raw)

	var resp wireResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		// Not JSON at all: the raw text is the model's best-effort prose.
		return ExtractOutput{
			Reply:      strings.TrimSpace(raw),
			Operations: []domain.Operation{domain.Unknown{Err: formatErrorMessage}},
		}
	}

	if resp.Operations == nil {
		return ExtractOutput{
			Reply:      resp.Reply,
			Operations: []domain.Operation{domain.Unknown{Err: formatErrorMessage}},
		}
	}

	ops := make([]domain.Operation, 0, len(*resp.Operations))
	for _, w := range *resp.Operations {
		ops = append(ops, decodeOperation(w))
	}

	return ExtractOutput{Reply: resp.Reply, Operations: ops}
}

func decodeOperation(w wireOperation) domain.Operation {
	unmarshal := func(v any) domain.Operation {
		if len(w.Payload) > 0 {
			if err := json.Unmarshal(w.Payload, v); err != nil {
				return domain.Unknown{Err: formatErrorMessage}
			}
		}
		return nil
	}

	switch domain.Action(w.Action) {
	case domain.ActionAddTask:
		var op domain.AddTask
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	case domain.ActionAddNote:
		var op domain.AddNote
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	case domain.ActionAddGoal:
		var op domain.AddGoal
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	case domain.ActionAddEvent:
		var op domain.AddEvent
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	case domain.ActionUpdateTask:
		var op domain.UpdateTask
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	case domain.ActionClarification:
		var op domain.Clarification
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	case domain.ActionSuggestion:
		var op domain.Suggestion
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	case domain.ActionUnknown:
		var op domain.Unknown
		if bad := unmarshal(&op); bad != nil {
			return bad
		}
		return op
	default:
		return domain.Unknown{Err: "Unsupported action: " + w.Action}
	}
}

// stripCodeFence removes a markdown ```json fence if the model wrapped its
// answer in one despite the structured-output request.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func partsEmpty(parts []domain.MessagePart) bool {
	for _, p := range parts {
		if strings.TrimSpace(p.Text) != "" || p.InlineData != nil {
			return false
		}
	}
	return true
}
