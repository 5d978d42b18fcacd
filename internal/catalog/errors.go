package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the upstream catalog has no such entity.
var ErrNotFound = errors.New("catalog: entity not found")

// ErrUnknownKind is returned for entity kinds without a catalog.
var ErrUnknownKind = errors.New("catalog: unknown entity kind")

// HTTPError represents an unexpected HTTP status from the upstream API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("catalog: http %d: %s", e.StatusCode, body)
}

// IsRetryable reports whether the status is worth retrying.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// Failure records an entity or media URL that could not be fetched.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
