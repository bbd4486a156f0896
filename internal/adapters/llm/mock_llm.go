package llm

import (
	"context"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

// MockLLM is a scriptable stand-in for the model service, used in local
// mode and tests. Responses are returned in order; when the script runs
// out (or none was given) every call answers with a harmless no-op.
type MockLLM struct {
	Responses []string
	Err       error

	calls    int
	Requests []domain.GenerateRequest // everything Generate received, for assertions
}

func NewMockLLM(responses ...string) *MockLLM {
	return &MockLLM{Responses: responses}
}

func (m *MockLLM) Generate(_ context.Context, req domain.GenerateRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if m.calls < len(m.Responses) {
		resp := m.Responses[m.calls]
		m.calls++
		return resp, nil
	}
	if req.JSONOutput {
		return `{"reply": "Okay, noted.", "operations": []}`, nil
	}
	return "Okay, noted.", nil
}
