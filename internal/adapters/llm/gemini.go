package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates an LLMClient based on Vertex AI (Gemini).
// Uses environment variables for project and region to simplify.
func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	projectID := os.Getenv("BRIO_GCP_PROJECT")
	location := os.Getenv("BRIO_GCP_LOCATION")
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("BRIO_GCP_PROJECT and BRIO_GCP_LOCATION must be set")
	}

	modelName := os.Getenv("BRIO_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// buildContents turns the request's history and current input parts into
// the conversation the model sees: prior turns first, then the current
// text and/or inline binary (e.g. recorded audio) as one user turn.
func buildContents(req domain.GenerateRequest) []*genai.Content {
	var contents []*genai.Content
	for _, m := range req.History {
		if m.IsAudioPlaceholder {
			continue
		}
		var role genai.Role = genai.RoleUser
		if m.Sender == domain.SenderAI {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Message, role))
	}

	var parts []*genai.Part
	for _, p := range req.Parts {
		if p.Text != "" {
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		if p.InlineData != nil {
			parts = append(parts, genai.NewPartFromBytes(p.InlineData.Data, p.InlineData.MIMEType))
		}
	}
	if len(parts) > 0 {
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
	return contents
}

// Generate implements domain.LLMClient using Vertex AI.
func (g *GeminiClient) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	contents := buildContents(req)

	// Model config
	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(8192)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}
	if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}
