package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no credential was available for the call.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired means a 401 exhausted the refresh budget and the
	// session was signed out.
	ErrSessionExpired = errors.New("session expired")

	// ErrTimeout means the call exceeded its deadline. Never retried.
	ErrTimeout = errors.New("request timed out")

	// ErrNoReadWriteEndpoint means a branch has no read-write endpoint.
	ErrNoReadWriteEndpoint = errors.New("branch has no read-write endpoint")

	// ErrNoDatabasesFound means no connection tuple could be built for a
	// branch.
	ErrNoDatabasesFound = errors.New("no usable databases found for branch")
)

// RequestError is any non-2xx, non-401 response from the resource API.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
