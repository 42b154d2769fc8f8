package openai

import (
	"strings"
	"testing"
)

func TestNewClientRequiresModel(t *testing.T) {
	if _, err := NewClient("key", " "); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestBuildResumePromptSubstitutesVersion(t *testing.T) {
	messages := BuildResumePrompt("v2", "resume body", "gpt-4o-mini")
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Role != "system" || messages[1].Role != "developer" || messages[2].Role != "user" {
		t.Fatalf("unexpected roles: %+v", messages)
	}
	if !strings.Contains(messages[1].Content, "Prompt version: v2") {
		t.Fatalf("developer message missing version: %q", messages[1].Content)
	}
	if !strings.Contains(messages[2].Content, "resume body") {
		t.Fatalf("user message missing document text")
	}
}

func TestBuildJobAdPromptIncludesSourceURL(t *testing.T) {
	messages := BuildJobAdPrompt("v1", "ad text", "https://example.com/job", "gpt-4o-mini")
	if !strings.Contains(messages[2].Content, "https://example.com/job") {
		t.Fatalf("user message missing source url: %q", messages[2].Content)
	}
}
