package services

import "errors"

var (
	// ErrValidation is returned for malformed or missing request input
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when the admin credential does not match
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConfiguration is returned when the prize catalog is missing, empty or malformed
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstreamUnavailable is returned when a backing store call fails or times out
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
