package openai

import (
	"fmt"
	"log"
	"strings"

	"resume-builder/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptResume  = "You are an expert resume parser. Respond with JSON only. Never omit keys. Output must match the schema exactly."
	systemPromptJobAd   = "You are an expert job post parser. Respond with JSON only. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildResumePrompt creates the chat messages for a resume extraction request.
func BuildResumePrompt(promptVersion string, documentText string, model string) []Message {
	developer := resolveTemplate(promptVersion, model, llm.ResumePromptTemplate)
	return []Message{
		{Role: "system", Content: systemPromptResume},
		{Role: "developer", Content: developer},
		{Role: "user", Content: fmt.Sprintf("Document Text:\n%s", documentText)},
	}
}

// BuildJobAdPrompt creates the chat messages for a job posting request.
func BuildJobAdPrompt(promptVersion string, adText string, sourceURL string, model string) []Message {
	developer := resolveTemplate(promptVersion, model, llm.JobAdPromptTemplate)
	user := fmt.Sprintf("Job Posting Text:\n%s", adText)
	if strings.TrimSpace(sourceURL) != "" {
		user = fmt.Sprintf("Source URL: %s\n\n%s", sourceURL, user)
	}
	return []Message{
		{Role: "system", Content: systemPromptJobAd},
		{Role: "developer", Content: developer},
		{Role: "user", Content: user},
	}
}

func buildFixPrompt(raw []byte) []Message {
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "user", Content: fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))},
	}
}

func resolveTemplate(promptVersion string, model string, lookup func(string) (string, bool)) string {
	version := strings.TrimSpace(promptVersion)
	template, ok := lookup(version)
	if !ok {
		log.Printf("unknown prompt version %q, using default", version)
	}
	replacer := strings.NewReplacer(
		"{{PROMPT_VERSION}}", version,
		"{{MODEL}}", model,
	)
	return replacer.Replace(template)
}
