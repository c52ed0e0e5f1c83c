// Package apperr holds the sentinel errors shared across Dev Architect layers.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrBusy     = errors.New("generation already in progress")
	ErrInvalid  = errors.New("invalid argument")

	// ErrInputRejected marks a blank prompt. No request is made.
	ErrInputRejected = errors.New("prompt is empty")
	// ErrServiceUnavailable marks a transport or non-success response from the generation service.
	ErrServiceUnavailable = errors.New("generation service unavailable")
	// ErrMalformedResponse marks a response that is not JSON or fails document validation.
	ErrMalformedResponse = errors.New("malformed generation response")
)
