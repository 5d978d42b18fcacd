package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a profile or judgement does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrCursorMoved is returned when a profile cursor no longer holds the value
// the caller advanced from.
var ErrCursorMoved = errors.New("store: cursor moved")

// DB represents the database interface
type DB interface {
	Close() error
	Migrate(ctx context.Context) error
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]Profile, error)
	IncrementCursor(ctx context.Context, profileID string, from int64) (int64, error)
	SaveJudgement(ctx context.Context, rec *JudgementRecord) error
	RecordSwipe(ctx context.Context, rec *JudgementRecord, from int64) (int64, error)
	GetJudgement(ctx context.Context, profileID uuid.UUID, entityID string) (*JudgementRecord, error)
	ListJudgements(ctx context.Context, q JudgementsQuery) (*JudgementsPage, error)
	AllJudgements(ctx context.Context, profileID uuid.UUID) ([]JudgementRecord, error)
}

// Profile is one player's sequence state.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Mode      string    `json:"mode"`
	Seed      int64     `json:"seed"`
	Cursor    int64     `json:"cursor"`
	RangeMin  int64     `json:"range_min"`
	RangeMax  int64     `json:"range_max"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Judgement is the verdict on one entity.
type Judgement int8

const (
	NotJudged Judgement = 0
	Like      Judgement = 1
	Dislike   Judgement = -1
)

func (j Judgement) String() string {
	switch j {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return "not_judged"
	}
}

// ParseJudgement accepts like, dislike and not_judged.
func ParseJudgement(s string) (Judgement, error) {
	switch s {
	case "like":
		return Like, nil
	case "dislike":
		return Dislike, nil
	case "not_judged", "":
		return NotJudged, nil
	}
	return NotJudged, fmt.Errorf("store: unknown judgement %q", s)
}

// MarshalJSON encodes the wire format: true, false or null.
func (j Judgement) MarshalJSON() ([]byte, error) {
	switch j {
	case Like:
		return []byte("true"), nil
	case Dislike:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes true, false or null.
func (j *Judgement) UnmarshalJSON(b []byte) error {
	var v *bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("store: judgement must be true, false or null: %w", err)
	}
	switch {
	case v == nil:
		*j = NotJudged
	case *v:
		*j = Like
	default:
		*j = Dislike
	}
	return nil
}

// JudgementRecord is a stored judgement with the entity attributes captured
// when it was made.
type JudgementRecord struct {
	ProfileID uuid.UUID `json:"profile_id"`
	EntityID  string    `json:"entity_id"`
	Judgement Judgement `json:"judgement"`
	Name      string    `json:"name,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JudgementsQuery represents query parameters for listing judgements
type JudgementsQuery struct {
	ProfileID uuid.UUID  `json:"profile_id"`
	Judgement *Judgement `json:"judgement,omitempty"`
	Page      int        `json:"page"`
	PerPage   int        `json:"perPage"`
}

// JudgementsPage represents a paginated judgements response
type JudgementsPage struct {
	Judgements []JudgementRecord `json:"judgements"`
	TotalCount int               `json:"totalCount"`
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalPages int               `json:"totalPages"`
}
