// Package api exposes profiles, swipes, judgements and statistics over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MJE43/swipematch/internal/catalog"
	"github.com/MJE43/swipematch/internal/engine"
	"github.com/MJE43/swipematch/internal/engine/jsref"
	"github.com/MJE43/swipematch/internal/gesture"
	"github.com/MJE43/swipematch/internal/store"
)

// Catalog is the upstream entity source.
type Catalog interface {
	Entity(ctx context.Context, kind string, id int64) (*catalog.Entity, error)
	FetchMany(ctx context.Context, kind string, ids []int64) ([]catalog.Entity, []catalog.Failure)
	Preload(ctx context.Context, urls []string) []catalog.Failure
}

// Options configures a Server.
type Options struct {
	DB store.DB
	// Catalog may be nil; catalog routes then answer 503 and swipes are
	// recorded without entity attributes.
	Catalog Catalog
	Logger  *zap.Logger
	Gesture gesture.Config
	// Ranges holds identifier bounds [min, max) per entity kind.
	Ranges         map[string]engine.Bounds
	RequestTimeout time.Duration
}

// Server handles HTTP requests
type Server struct {
	db           store.DB
	catalog      Catalog
	evaluator    *jsref.Evaluator
	errorHandler *ErrorHandler
	logger       *zap.Logger
	gesture      gesture.Config
	ranges       map[string]engine.Bounds
	timeout      time.Duration
	startTime    time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	evaluator, err := jsref.New()
	if err != nil {
		return nil, err
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg := opts.Gesture
	if cfg == (gesture.Config{}) {
		cfg = gesture.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	return &Server{
		db:           opts.DB,
		catalog:      opts.Catalog,
		evaluator:    evaluator,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		gesture:      cfg,
		ranges:       opts.Ranges,
		timeout:      timeout,
		startTime:    time.Now(),
	}, nil
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/profiles", s.handleCreateProfile)
		r.Route("/profiles/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Post("/advance", s.handleAdvance)
			r.Post("/swipes", s.handleSwipe)
			r.Get("/judgements", s.handleListJudgements)
			r.Put("/judgements/{entityID}", s.handleJudge)
			r.Get("/stats", s.handleStats)
		})
		r.Get("/catalog/{kind}/{id}", s.handleCatalogEntity)
		r.Post("/catalog/{kind}/batch", s.handleCatalogBatch)
		r.Post("/sequence/verify", s.handleVerify)
	})

	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Swipematch-Version", Version)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// decodeJSON reads a JSON body, rejecting unknown fields.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.errorHandler.Write(w, r, http.StatusBadRequest,
			NewError(ErrTypeInvalidJSON, "Invalid JSON body").WithCause(err).Build())
		return false
	}
	return true
}
