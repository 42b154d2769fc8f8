package profiles

import "errors"

var (
	// ErrNotFound means the referenced profile does not exist.
	ErrNotFound = errors.New("profile not found")
	// ErrUnauthorized means the caller does not own the referenced profile.
	ErrUnauthorized = errors.New("profile not owned by caller")
	// ErrInvalidInput covers malformed requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidSection is returned for section names outside the closed set.
	ErrInvalidSection = errors.New("unknown profile section")
	// ErrWriteInFlight rejects a section submit while a prior write-through
	// for the same section has not resolved.
	ErrWriteInFlight = errors.New("section write already in flight")
	// ErrRemoteRead wraps store failures during the read half of a write-through.
	ErrRemoteRead = errors.New("remote read failed")
	// ErrRemoteWrite wraps store failures during a section or full-document write.
	ErrRemoteWrite = errors.New("remote write failed")
	// ErrFragmentNotReady means the referenced parse fragment has not
	// completed; nothing can be merged from it yet.
	ErrFragmentNotReady = errors.New("fragment not ready")
	// ErrParseFailure means the parse pipeline did not yield usable
	// structured data for the referenced fragment.
	ErrParseFailure = errors.New("parsing failed")
)
