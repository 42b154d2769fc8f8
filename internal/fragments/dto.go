package fragments

import (
	"encoding/json"
	"time"
)

type createParseJobRequest struct {
	DocumentID    string `json:"documentId"`
	RawText       string `json:"rawText"`
	PromptVersion string `json:"promptVersion"`
}

// ParseJobResponse is the API shape for a parse job.
type ParseJobResponse struct {
	FragmentID  string          `json:"fragmentId"`
	DocumentID  string          `json:"documentId"`
	Status      string          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	FailCode    string          `json:"failCode,omitempty"`
	FailReason  string          `json:"failReason,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

func toParseJobResponse(job ParseJob) ParseJobResponse {
	resp := ParseJobResponse{
		FragmentID:  job.ID,
		DocumentID:  job.DocumentID,
		Status:      job.Status,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Status == StatusCompleted {
		resp.Result = job.Result
	}
	if job.Status == StatusFailed {
		resp.FailCode = job.FailCode
		resp.FailReason = job.FailReason
	}
	return resp
}
