// Package core holds the error taxonomy shared by the queue store, the
// track resolver, the session controller, and the Spotify client. Callers
// branch on these kinds to pick the right user-facing explanation.
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReference is returned for a catalog reference whose kind is not
	// one of track, album, or playlist.
	ErrInvalidReference = errors.New("unsupported catalog reference")

	// ErrInsufficientScope is returned when a catalog call is rejected for a
	// missing permission scope. Remediation is re-authorization, not retry.
	ErrInsufficientScope = errors.New("insufficient permission scope")

	// ErrNoActiveSession is returned when a resume or advance is requested for
	// a channel that has no persisted queue pointer.
	ErrNoActiveSession = errors.New("no active session")

	// ErrEmptySource is returned when a catalog album or playlist resolves to
	// zero tracks.
	ErrEmptySource = errors.New("catalog reference contains no tracks")

	// ErrNotAuthorized is returned for a user-scoped operation when the user
	// has never completed the authorization dance.
	ErrNotAuthorized = errors.New("user has not authorized the catalog service")
)

// ExternalServiceError reports a non-2xx response from the catalog or the
// token endpoint. The status code is kept so callers can surface it.
type ExternalServiceError struct {
	Status int
	Body   string
}

func (e *ExternalServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("external service returned status %d", e.Status)
	}
	return fmt.Sprintf("external service returned status %d: %s", e.Status, e.Body)
}

// PersistenceError reports a failed document-store operation. Persistence
// failures are fatal to the request that triggered them and are never retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
