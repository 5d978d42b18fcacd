package api

import (
	"github.com/MJE43/swipematch/internal/catalog"
	"github.com/MJE43/swipematch/internal/engine"
	"github.com/MJE43/swipematch/internal/gesture"
	"github.com/MJE43/swipematch/internal/stats"
	"github.com/MJE43/swipematch/internal/store"
)

// APIError represents a structured error response with context
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e APIError) Error() string {
	return e.Message
}

// Error types
const (
	ErrTypeValidation  = "validation_error"
	ErrTypeInvalidJSON = "invalid_json"
	ErrTypeNotFound    = "not_found"
	ErrTypeConflict    = "conflict"
	ErrTypeUpstream    = "upstream_error"
	ErrTypeUnavailable = "service_unavailable"
	ErrTypeTimeout     = "timeout"
	ErrTypeInternal    = "internal_error"
)

// ErrorCategory groups error types for logging
type ErrorCategory string

const (
	CategoryClient   ErrorCategory = "client"
	CategoryUpstream ErrorCategory = "upstream"
	CategorySystem   ErrorCategory = "system"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation, ErrTypeInvalidJSON, ErrTypeNotFound, ErrTypeConflict:
		return CategoryClient
	case ErrTypeUpstream:
		return CategoryUpstream
	default:
		return CategorySystem
	}
}

// CreateProfileRequest starts a new swipe session.
type CreateProfileRequest struct {
	Kind string `json:"kind"`
	Mode string `json:"mode,omitempty"`
	// Seed is drawn at random when omitted.
	Seed *int64 `json:"seed,omitempty"`
	// Range overrides the configured identifier bounds for the kind.
	Range *engine.Bounds `json:"range,omitempty"`
}

// ProfileResponse is a profile with its current and upcoming identifiers.
type ProfileResponse struct {
	Profile store.Profile `json:"profile"`
	Current int64         `json:"current"`
	Next    int64         `json:"next"`
}

// SwipeRequest carries a recorded gesture for the current card.
type SwipeRequest struct {
	// EntityID must name the current card when set.
	EntityID string          `json:"entity_id,omitempty"`
	Events   []gesture.Event `json:"events"`
}

// SwipeResponse reports the replayed gesture and its effect.
type SwipeResponse struct {
	Outcome   gesture.Outcome        `json:"outcome"`
	Replay    gesture.ReplayResult   `json:"replay"`
	Judgement *store.JudgementRecord `json:"judgement,omitempty"`
	Profile   ProfileResponse        `json:"profile"`
}

// JudgeRequest sets or clears a judgement manually.
type JudgeRequest struct {
	Judgement store.Judgement `json:"judgement"`
}

// StatsResponse combines the analytics summary with kind specific figures.
type StatsResponse struct {
	ProfileID string           `json:"profile_id"`
	Kind      string           `json:"kind"`
	Summary   stats.Summary    `json:"summary"`
	Types     *stats.TypeStats `json:"types,omitempty"`
}

// BatchRequest fetches several catalog entities at once.
type BatchRequest struct {
	IDs     []int64 `json:"ids"`
	Preload bool    `json:"preload,omitempty"`
}

// BatchResponse lists fetched entities and per-id failures.
type BatchResponse struct {
	Entities        []catalog.Entity  `json:"entities"`
	Failures        []catalog.Failure `json:"failures"`
	PreloadFailures []catalog.Failure `json:"preload_failures,omitempty"`
}

// VerifyRequest asks for a Go and JavaScript evaluation of one input.
type VerifyRequest struct {
	Seed   int64 `json:"seed"`
	Cursor int64 `json:"cursor"`
	Min    int64 `json:"min"`
	Max    int64 `json:"max"`
}
