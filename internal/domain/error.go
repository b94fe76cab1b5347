package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNoJSONFound        = errors.New("no JSON object found in model output")
	ErrInvalidCoordinates = errors.New("model output has no finite lat/lng")
	ErrRateLimited        = errors.New("too many requests for this session")
)

// GatewayError carries the upstream status and body of a failed model call.
// Single attempt only; callers surface it instead of retrying.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway http %d: %s", e.Status, e.Body)
}

// MalformedJSONError means a JSON-looking span was located in the model
// output but did not parse. Raw keeps the offending slice for diagnostics.
type MalformedJSONError struct {
	Raw string
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON in model output: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }
