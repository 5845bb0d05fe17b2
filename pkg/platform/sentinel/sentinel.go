// Package sentinel holds infrastructure errors that stores, queues and
// transports return, possibly wrapped. Callers match them with errors.Is and
// translate them into coded domain errors at the service boundary.
package sentinel

import "errors"

var (
	// ErrNotFound means the record is not in the store.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means a peer agent or upstream API could not be reached.
	ErrUnavailable = errors.New("unavailable")
	// ErrLockTimeout means the queue lease was still held when the wait ran out.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)
