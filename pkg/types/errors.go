package types

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrNotReady is returned when a store operation is attempted before a
	// successful open.
	ErrNotReady = errors.New("store not ready")
	// ErrEmptyQuery is returned when a search is attempted with blank or
	// whitespace-only query text.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrStoreTooNew is returned when the persisted schema version exceeds
	// the version this build knows about. The store must be deleted and
	// rebuilt; it is never silently downgraded.
	ErrStoreTooNew = errors.New("index schema is newer than this build: delete the index and re-run indexing")
	// ErrInvalidInput is returned when a caller-supplied value fails
	// validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIndexInProgress is returned when a bulk build is requested while
	// another build is already running.
	ErrIndexInProgress = errors.New("an index build is already in progress")
)
