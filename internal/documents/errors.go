package documents

import "errors"

var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput covers malformed upload requests.
	ErrInvalidInput = errors.New("invalid input")
)
