package service

import "errors"

// Sentinel errors returned by services. The API layer maps these to HTTP
// status codes.
var (
	// ErrHierarchyNotFound is returned when a hierarchy id is unknown.
	ErrHierarchyNotFound = errors.New("hierarchy not found")

	// ErrRunNotFound is returned when a run id is unknown.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunNotCancellable is returned when cancelling a run that already
	// reached a terminal state.
	ErrRunNotCancellable = errors.New("run is not cancellable")

	// ErrMissingConfig is returned when a run is started with neither an
	// inline hierarchy nor a registered hierarchy id.
	ErrMissingConfig = errors.New("either hierarchy_id or hierarchy must be provided")
)
