package dds

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse means the text model returned nothing usable.
	ErrEmptyResponse = errors.New("text API response was empty")
	// ErrSchemaViolation means the reply could not be parsed as a report.
	ErrSchemaViolation = errors.New("failed to parse report JSON")
	// ErrNoImageReturned means the image model produced no payload.
	ErrNoImageReturned = errors.New("no image was generated")
)

// GenerationError wraps any failure of the two-step pipeline.
type GenerationError struct {
	Step string // "report" or "image"
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("gemini API failure (%s): %v", e.Step, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
