// Package errs defines the failure taxonomy of the fetch pipeline and the
// messages shown to the user for each failure class.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigurationError means no backend credential is available.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// UpstreamError means the backend call failed or returned no text.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: empty response", e.Provider)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError means the backend text was not a JSON document.
type MalformedResponseError struct {
	Excerpt string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response %q: %v", e.Excerpt, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaViolationError means a JSON payload could not be coerced into the
// minimum shape of a record kind.
type SchemaViolationError struct {
	Kind   string
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", e.Kind, e.Field, e.Reason)
}

// Class groups errors by how they are presented.
type Class int

const (
	ClassUnknown Class = iota
	ClassConfiguration
	ClassUpstream
	ClassData
)

// Classify returns the presentation class of err.
func Classify(err error) Class {
	var (
		cfgErr    *ConfigurationError
		upErr     *UpstreamError
		malformed *MalformedResponseError
		schema    *SchemaViolationError
	)
	switch {
	case err == nil:
		return ClassUnknown
	case errors.As(err, &cfgErr):
		return ClassConfiguration
	case errors.As(err, &upErr):
		return ClassUpstream
	case errors.As(err, &malformed), errors.As(err, &schema):
		return ClassData
	}
	return ClassUnknown
}

// UserMessage converts any pipeline error into the single string shown by
// the presentation layer.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case ClassConfiguration:
		return "AI backend is not configured: set ai.api_key in the config or TECHPULSE_AI_KEY."
	case ClassUpstream:
		return "Could not reach the AI service. Press r to retry."
	case ClassData:
		return "The AI service returned data we could not read. Press r to retry."
	}
	return "Something went wrong: " + err.Error()
}
