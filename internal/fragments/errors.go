package fragments

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNotReady     = errors.New("fragment not ready")
	ErrParseFailed  = errors.New("parse failed")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	FailCodeExtraction = "EXTRACTION_ERROR"
	FailCodeLLMTimeout = "LLM_TIMEOUT"
	FailCodeLLMSchema  = "LLM_SCHEMA_MISMATCH"
	FailCodeStorage    = "STORAGE_ERROR"
	FailCodeInternal   = "INTERNAL_ERROR"
)
