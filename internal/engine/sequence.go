package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mode selects how a cursor is mapped to an identifier.
type Mode string

const (
	// ModeHash is the sin/XOR spread used by the browser client. Default.
	ModeHash Mode = "hash"
	// ModeShuffle visits every identifier once per pass.
	ModeShuffle Mode = "shuffle"
)

// ParseMode accepts "hash", "shuffle" or "" (hash).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHash:
		return ModeHash, nil
	case ModeShuffle:
		return ModeShuffle, nil
	default:
		return "", fmt.Errorf("engine: unknown sequence mode %q", s)
	}
}

// Value evaluates the mode at cursor.
func (m Mode) Value(seed, cursor int64, b Bounds) (int64, error) {
	if m == ModeShuffle {
		return ShuffleValue(seed, cursor, b.Min, b.Max)
	}
	return CurrentValue(seed, cursor, b.Min, b.Max)
}

// State is the persisted part of a sequence.
type State struct {
	Seed   int64 `json:"seed"`
	Cursor int64 `json:"cursor"`
}

// CursorStore persists cursor increments. IncrementCursor must move the
// cursor from `from` to from+1 atomically and fail when the stored cursor is
// no longer `from`; that compare is what keeps separate Sequence values over
// the same key from advancing twice past one item.
type CursorStore interface {
	IncrementCursor(ctx context.Context, key string, from int64) (int64, error)
}

// Sequence binds a persisted State to its bounds and store. Its mutex only
// orders calls on this value; callers holding other Sequence values for the
// same key are ordered by the store.
type Sequence struct {
	mu     sync.Mutex
	key    string
	state  State
	bounds Bounds
	mode   Mode
	store  CursorStore
}

// NewSequence validates the bounds for the mode and returns a Sequence.
func NewSequence(key string, st State, b Bounds, mode Mode, store CursorStore) (*Sequence, error) {
	if _, err := mode.Value(st.Seed, st.Cursor, b); err != nil {
		return nil, err
	}
	return &Sequence{
		key:    key,
		state:  st,
		bounds: b,
		mode:   mode,
		store:  store,
	}, nil
}

// Current returns the identifier at the stored cursor.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valueAt(s.state.Cursor)
}

// PreviewNext returns the identifier after the next Advance without
// consuming the cursor.
func (s *Sequence) PreviewNext() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valueAt(s.state.Cursor + 1)
}

// State returns a copy of the persisted state.
func (s *Sequence) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Advance persists cursor+1 and returns the new current identifier. The
// in-memory cursor only moves once the store has accepted the increment.
// A store rejection because another writer advanced first is returned
// wrapped.
func (s *Sequence) Advance(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor := s.state.Cursor + 1
	if s.store != nil {
		stored, err := s.store.IncrementCursor(ctx, s.key, s.state.Cursor)
		if err != nil {
			return 0, fmt.Errorf("engine: advance %s: %w", s.key, err)
		}
		cursor = stored
	}
	s.state.Cursor = cursor
	return s.valueAt(cursor), nil
}

// Reset replaces the cursor with one persisted elsewhere, such as by a
// transaction that also stored a judgement.
func (s *Sequence) Reset(cursor int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cursor = cursor
}

// bounds were validated in NewSequence, so the error is unreachable.
func (s *Sequence) valueAt(cursor int64) int64 {
	v, _ := s.mode.Value(s.state.Seed, cursor, s.bounds)
	return v
}
