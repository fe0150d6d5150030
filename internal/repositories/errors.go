package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist in the backing store
	ErrNotFound = errors.New("record not found")
	// ErrStaleCounter is returned when a counter write lost an optimistic concurrency race
	ErrStaleCounter = errors.New("prize counters changed since they were read")
	// ErrAlreadyRecorded is returned when a participant already carries a played marker
	ErrAlreadyRecorded = errors.New("participant award already recorded")
	// ErrMalformed is returned when a stored record cannot be decoded into the domain model
	ErrMalformed = errors.New("malformed record")
)

// UpstreamError describes a failed call to a backing store
type UpstreamError struct {
	Op     string // Operation, e.g. "loadAll"
	Target string // Collection, URL path or resource
	Status int    // HTTP status when known, 0 otherwise
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.Target, e.Status, errString(e.Err))
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Target, errString(e.Err))
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
