package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]any),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause records the underlying error message
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final APIError
func (eb *ErrorBuilder) Build() APIError {
	var ctx map[string]any
	if len(eb.context) > 0 {
		ctx = eb.context
	}
	return APIError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   ctx,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler writes error responses and logs them.
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Write logs apiErr and writes it with status.
func (eh *ErrorHandler) Write(w http.ResponseWriter, r *http.Request, status int, apiErr APIError) {
	if apiErr.RequestID == "" {
		apiErr.RequestID = middleware.GetReqID(r.Context())
	}
	eh.log(r, apiErr, status)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Type", apiErr.Type)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		eh.logger.Error("encode error response", zap.Error(err))
	}
}

// HandleError converts err into an internal error response.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if apiErr, ok := err.(APIError); ok {
		eh.Write(w, r, status, apiErr)
		return
	}
	eh.Write(w, r, status, NewError(ErrTypeInternal, err.Error()).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build())
}

// HandleValidationError reports a bad request field.
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	eh.Write(w, r, http.StatusBadRequest, NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithContext("field", field).
		Build())
}

// HandleNotFound reports a missing resource.
func (eh *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request, resource, id string) {
	eh.Write(w, r, http.StatusNotFound, NewError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("id", id).
		Build())
}

func (eh *ErrorHandler) log(r *http.Request, apiErr APIError, status int) {
	fields := []zap.Field{
		zap.String("type", apiErr.Type),
		zap.String("category", string(GetErrorCategory(apiErr.Type))),
		zap.Int("status", status),
		zap.String("request_id", apiErr.RequestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("message", apiErr.Message),
	}
	if len(apiErr.Context) > 0 {
		fields = append(fields, zap.Any("context", apiErr.Context))
	}
	if status >= 500 {
		eh.logger.Error("request failed", fields...)
		return
	}
	eh.logger.Warn("request rejected", fields...)
}

// RecoveryHandler turns panics into 500 responses.
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				eh.logger.Error("panic recovered",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rvr),
					zap.Stack("stack"),
				)
				eh.Write(w, r, http.StatusInternalServerError, NewError(ErrTypeInternal, "Internal server error").
					WithContext("path", r.URL.Path).
					Build())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
