package fragments

import (
	"encoding/json"
	"time"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ParseJob tracks one document-to-fragment extraction.
type ParseJob struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	DocumentID    string          `json:"documentId"`
	PromptVersion string          `json:"promptVersion"`
	Status        string          `json:"status"`
	Result        json.RawMessage `json:"result,omitempty"`
	FailCode      string          `json:"failCode,omitempty"`
	FailReason    string          `json:"failReason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}
