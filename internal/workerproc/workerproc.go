package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/fragments"
	"resume-builder/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingFragmentID indicates a message missing the fragment id.
type ErrMissingFragmentID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingFragmentID) Error() string { return "missing fragment id" }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	FragmentID string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process fragment"
	}
	return "process fragment: " + e.Err.Error()
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.FragmentID) == "" {
		return msg, meta, ErrMissingFragmentID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// HandleMessage parses, validates, and processes a message payload.
func HandleMessage(ctx context.Context, app *bootstrap.App, body string) error {
	if app == nil || app.FragmentsService == nil {
		return errors.New("fragments service not configured")
	}

	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}

	ctxWithRequest := fragments.WithRequestID(ctx, msg.RequestID)
	if err := app.FragmentsService.Process(ctxWithRequest, msg.FragmentID); err != nil {
		return ErrProcess{FragmentID: msg.FragmentID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}
