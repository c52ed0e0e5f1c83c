// Package generator is the boundary to the hosted language model that turns
// a prompt into architecture text.
package generator

import (
	"context"
	"fmt"
)

// Request is one generation call. Instruction is sent as the system
// instruction and Prompt as the user turn.
type Request struct {
	Prompt      string
	Instruction string
}

// Service returns the raw model text for a request.
type Service interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// StatusError is a non-success response from the generation service.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generator: status %d %s", e.Code, e.Status)
	}
	return fmt.Sprintf("generator: status %d %s: %s", e.Code, e.Status, e.Message)
}

// Description is the human-readable status text shown to users.
func (e *StatusError) Description() string {
	if e.Status != "" {
		return e.Status
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}
