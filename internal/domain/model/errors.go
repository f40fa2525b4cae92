package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// Fatal: raised before any network call.
	ErrConfiguration = errors.New("configuration error")

	// Fatal to the run: nothing to sync.
	ErrUpstreamAuth        = errors.New("upstream authentication failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Scoped to a single item.
	ErrValidation             = errors.New("destination validation error")
	ErrDestinationUnavailable = errors.New("destination unavailable")
)

// ValidationError is a 4xx answer from the destination API.
type ValidationError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *ValidationError) Error() string {
	payload := strings.TrimSpace(string(e.Payload))
	if payload == "" {
		return fmt.Sprintf("%s: status %d", ErrValidation, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrValidation, e.StatusCode, payload)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsFatal reports whether err must abort a whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrUpstreamAuth) ||
		errors.Is(err, ErrUpstreamUnavailable)
}
