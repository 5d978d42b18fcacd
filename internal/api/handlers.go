package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MJE43/swipematch/internal/catalog"
	"github.com/MJE43/swipematch/internal/engine"
	"github.com/MJE43/swipematch/internal/gesture"
	"github.com/MJE43/swipematch/internal/stats"
	"github.com/MJE43/swipematch/internal/store"
)

const maxBatchSize = 100

// POST /api/v1/profiles
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !catalog.ValidKind(req.Kind) {
		s.errorHandler.HandleValidationError(w, r, "kind", "kind must be cat or pokemon")
		return
	}
	mode, err := engine.ParseMode(req.Mode)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "mode", err.Error())
		return
	}
	bounds, ok := s.ranges[req.Kind]
	if req.Range != nil {
		bounds, ok = *req.Range, true
	}
	if !ok {
		s.errorHandler.HandleValidationError(w, r, "range", "no identifier range configured for "+req.Kind)
		return
	}
	seed := engine.RandomSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	p := &store.Profile{
		ID:       uuid.New(),
		Kind:     req.Kind,
		Mode:     string(mode),
		Seed:     seed,
		Cursor:   1,
		RangeMin: bounds.Min,
		RangeMax: bounds.Max,
	}
	seq, err := s.sequenceFor(p)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "range", err.Error())
		return
	}
	if err := s.db.CreateProfile(r.Context(), p); err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.logger.Info("profile created",
		zap.String("profile_id", p.ID.String()),
		zap.String("kind", p.Kind),
		zap.String("mode", p.Mode),
	)
	s.writeJSON(w, http.StatusCreated, profileResponse(p, seq))
}

// GET /api/v1/profiles/{id}
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, seq, ok := s.loadSequence(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, profileResponse(p, seq))
}

// POST /api/v1/profiles/{id}/advance
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	p, seq, ok := s.loadSequence(w, r)
	if !ok {
		return
	}
	if _, err := seq.Advance(r.Context()); err != nil {
		s.handleStoreError(w, r, err, "profile", p.ID.String())
		return
	}
	s.writeJSON(w, http.StatusOK, profileResponse(p, seq))
}

// POST /api/v1/profiles/{id}/swipes
//
// Replays the gesture against the current card. A like or dislike is
// recorded and the sequence advances; a cancel changes nothing.
func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	p, seq, ok := s.loadSequence(w, r)
	if !ok {
		return
	}
	var req SwipeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Events) == 0 {
		s.errorHandler.HandleValidationError(w, r, "events", "at least one event is required")
		return
	}

	current := seq.Current()
	entityID := strconv.FormatInt(current, 10)
	if req.EntityID != "" && req.EntityID != entityID {
		s.staleSwipe(w, r, req.EntityID, entityID)
		return
	}

	res, err := gesture.Replay(s.gesture, req.Events)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "events", err.Error())
		return
	}

	resp := SwipeResponse{Outcome: res.Outcome, Replay: res}
	if res.Outcome != gesture.Cancel {
		rec := &store.JudgementRecord{
			ProfileID: p.ID,
			EntityID:  entityID,
			Judgement: store.Like,
		}
		if res.Outcome == gesture.Dislike {
			rec.Judgement = store.Dislike
		}
		s.annotate(r, p.Kind, current, rec)

		// The cursor read above is the compare value: if another swipe
		// advanced first, nothing is stored.
		cursor, err := s.db.RecordSwipe(r.Context(), rec, seq.State().Cursor)
		if errors.Is(err, store.ErrCursorMoved) {
			s.staleSwipe(w, r, entityID, "")
			return
		}
		if err != nil {
			s.handleStoreError(w, r, err, "profile", p.ID.String())
			return
		}
		seq.Reset(cursor)
		resp.Judgement = rec
		s.logger.Debug("swipe recorded",
			zap.String("profile_id", p.ID.String()),
			zap.String("entity_id", entityID),
			zap.Stringer("outcome", res.Outcome),
		)
	}
	resp.Profile = profileResponse(p, seq)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) staleSwipe(w http.ResponseWriter, r *http.Request, entityID, current string) {
	b := NewError(ErrTypeConflict, "Swipe does not target the current card").
		WithContext("entity_id", entityID)
	if current != "" {
		b = b.WithContext("current", current)
	}
	s.errorHandler.Write(w, r, http.StatusConflict, b.Build())
}

// annotate copies catalog attributes onto rec. Catalog failures are logged
// and the judgement is kept without them.
func (s *Server) annotate(r *http.Request, kind string, id int64, rec *store.JudgementRecord) {
	if s.catalog == nil {
		return
	}
	e, err := s.catalog.Entity(r.Context(), kind, id)
	if err != nil {
		s.logger.Warn("catalog lookup failed",
			zap.String("kind", kind),
			zap.Int64("id", id),
			zap.Error(err),
		)
		return
	}
	rec.Name = e.Name
	rec.MediaURL = e.MediaURL
	rec.Tags = e.Tags
}

// PUT /api/v1/profiles/{id}/judgements/{entityID}
func (s *Server) handleJudge(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	entityID := chi.URLParam(r, "entityID")
	var req JudgeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	rec := &store.JudgementRecord{ProfileID: p.ID, EntityID: entityID, Judgement: req.Judgement}
	if _, err := s.db.GetJudgement(r.Context(), p.ID, entityID); errors.Is(err, store.ErrNotFound) {
		if id, perr := strconv.ParseInt(entityID, 10, 64); perr == nil {
			s.annotate(r, p.Kind, id, rec)
		}
	}
	if err := s.db.SaveJudgement(r.Context(), rec); err != nil {
		s.handleStoreError(w, r, err, "profile", p.ID.String())
		return
	}
	saved, err := s.db.GetJudgement(r.Context(), p.ID, entityID)
	if err != nil {
		s.handleStoreError(w, r, err, "judgement", entityID)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

// GET /api/v1/profiles/{id}/judgements?judgement=like&page=1&per_page=50
func (s *Server) handleListJudgements(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	q := store.JudgementsQuery{ProfileID: p.ID}
	if v := r.URL.Query().Get("judgement"); v != "" {
		j, err := store.ParseJudgement(v)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "judgement", err.Error())
			return
		}
		q.Judgement = &j
	}
	var err error
	if q.Page, err = intParam(r, "page"); err != nil {
		s.errorHandler.HandleValidationError(w, r, "page", "page must be an integer")
		return
	}
	if q.PerPage, err = intParam(r, "per_page"); err != nil {
		s.errorHandler.HandleValidationError(w, r, "per_page", "per_page must be an integer")
		return
	}

	page, err := s.db.ListJudgements(r.Context(), q)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// GET /api/v1/profiles/{id}/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	records, err := s.db.AllJudgements(r.Context(), p.ID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	resp := StatsResponse{
		ProfileID: p.ID.String(),
		Kind:      p.Kind,
		Summary:   stats.Summarize(records),
	}
	if p.Kind == catalog.KindPokemon {
		ts := stats.PokemonTypes(records)
		resp.Types = &ts
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GET /api/v1/catalog/{kind}/{id}
func (s *Server) handleCatalogEntity(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !s.catalogReady(w, r, kind) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "id", "id must be an integer")
		return
	}
	e, err := s.catalog.Entity(r.Context(), kind, id)
	if err != nil {
		s.handleCatalogError(w, r, err, kind, id)
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

// POST /api/v1/catalog/{kind}/batch
func (s *Server) handleCatalogBatch(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !s.catalogReady(w, r, kind) {
		return
	}
	var req BatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 || len(req.IDs) > maxBatchSize {
		s.errorHandler.HandleValidationError(w, r, "ids", "between 1 and 100 ids are required")
		return
	}

	entities, failures := s.catalog.FetchMany(r.Context(), kind, req.IDs)
	resp := BatchResponse{Entities: entities, Failures: failures}
	if resp.Failures == nil {
		resp.Failures = []catalog.Failure{}
	}
	if req.Preload {
		urls := make([]string, 0, len(entities))
		for _, e := range entities {
			urls = append(urls, e.MediaURL)
		}
		resp.PreloadFailures = s.catalog.Preload(r.Context(), urls)
		for _, f := range resp.PreloadFailures {
			s.logger.Warn("media preload failed", zap.String("url", f.ID), zap.String("reason", f.Reason))
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/sequence/verify
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	report, err := s.evaluator.Verify(req.Seed, req.Cursor, req.Min, req.Max)
	if errors.Is(err, engine.ErrInvalidBounds) {
		s.errorHandler.HandleValidationError(w, r, "max", err.Error())
		return
	}
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// ---------- helpers ----------

func (s *Server) loadProfile(w http.ResponseWriter, r *http.Request) (*store.Profile, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "id", "profile id must be a UUID")
		return nil, false
	}
	p, err := s.db.GetProfile(r.Context(), id)
	if err != nil {
		s.handleStoreError(w, r, err, "profile", raw)
		return nil, false
	}
	return p, true
}

func (s *Server) loadSequence(w http.ResponseWriter, r *http.Request) (*store.Profile, *engine.Sequence, bool) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return nil, nil, false
	}
	seq, err := s.sequenceFor(p)
	if err != nil {
		s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
		return nil, nil, false
	}
	return p, seq, true
}

func (s *Server) sequenceFor(p *store.Profile) (*engine.Sequence, error) {
	mode, err := engine.ParseMode(p.Mode)
	if err != nil {
		return nil, err
	}
	return engine.NewSequence(
		p.ID.String(),
		engine.State{Seed: p.Seed, Cursor: p.Cursor},
		engine.Bounds{Min: p.RangeMin, Max: p.RangeMax},
		mode,
		s.db,
	)
}

func profileResponse(p *store.Profile, seq *engine.Sequence) ProfileResponse {
	out := *p
	out.Cursor = seq.State().Cursor
	return ProfileResponse{
		Profile: out,
		Current: seq.Current(),
		Next:    seq.PreviewNext(),
	}
}

func (s *Server) catalogReady(w http.ResponseWriter, r *http.Request, kind string) bool {
	if s.catalog == nil {
		s.errorHandler.Write(w, r, http.StatusServiceUnavailable,
			NewError(ErrTypeUnavailable, "Catalog is not configured").Build())
		return false
	}
	if !catalog.ValidKind(kind) {
		s.errorHandler.HandleValidationError(w, r, "kind", "kind must be cat or pokemon")
		return false
	}
	return true
}

func (s *Server) handleStoreError(w http.ResponseWriter, r *http.Request, err error, resource, id string) {
	if errors.Is(err, store.ErrNotFound) {
		s.errorHandler.HandleNotFound(w, r, resource, id)
		return
	}
	if errors.Is(err, store.ErrCursorMoved) {
		s.errorHandler.Write(w, r, http.StatusConflict, NewError(ErrTypeConflict, "Profile was advanced by another request").
			WithContext(resource, id).
			Build())
		return
	}
	s.errorHandler.HandleError(w, r, err, http.StatusInternalServerError)
}

func (s *Server) handleCatalogError(w http.ResponseWriter, r *http.Request, err error, kind string, id int64) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.errorHandler.HandleNotFound(w, r, kind, strconv.FormatInt(id, 10))
	case errors.Is(err, catalog.ErrUnknownKind):
		s.errorHandler.HandleValidationError(w, r, "kind", err.Error())
	default:
		s.errorHandler.Write(w, r, http.StatusBadGateway, NewError(ErrTypeUpstream, "Catalog request failed").
			WithContext("kind", kind).
			WithContext("id", id).
			WithCause(err).
			Build())
	}
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
