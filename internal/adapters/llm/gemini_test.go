package llm

import (
	"testing"

	"google.golang.org/genai"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

func TestBuildContents(t *testing.T) {
	req := domain.GenerateRequest{
		History: []domain.ChatMessage{
			{Sender: domain.SenderUser, Message: "add a task"},
			{Sender: domain.SenderAI, Message: "Done!"},
			{Sender: domain.SenderUser, Message: "voice note", IsAudioPlaceholder: true},
		},
		Parts: []domain.MessagePart{
			{Text: "now mark it complete"},
			{InlineData: &domain.InlineData{MIMEType: "audio/ogg", Data: []byte{0x4f}}},
		},
	}

	contents := buildContents(req)
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3 (two history turns + current input)", len(contents))
	}

	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, c := range contents {
		if genai.Role(c.Role) != wantRoles[i] {
			t.Errorf("contents[%d].Role = %q, want %q", i, c.Role, wantRoles[i])
		}
	}

	if len(contents[2].Parts) != 2 {
		t.Fatalf("current turn has %d parts, want text + inline data", len(contents[2].Parts))
	}
	if contents[2].Parts[0].Text != "now mark it complete" {
		t.Errorf("text part = %q", contents[2].Parts[0].Text)
	}
	if contents[2].Parts[1].InlineData == nil || contents[2].Parts[1].InlineData.MIMEType != "audio/ogg" {
		t.Errorf("inline data part = %+v", contents[2].Parts[1])
	}
}

func TestBuildContentsNoInput(t *testing.T) {
	contents := buildContents(domain.GenerateRequest{})
	if len(contents) != 0 {
		t.Errorf("got %d contents for an empty request, want 0", len(contents))
	}
}
