package gesture

import "fmt"

// Outcome is the classification of a completed gesture.
type Outcome int

const (
	Cancel Outcome = iota
	Like
	Dislike
)

// Classify maps the last rotation to an outcome. Both comparisons are
// strict, so a rotation exactly at ±threshold cancels.
func Classify(cfg Config, rotation float64) Outcome {
	switch {
	case rotation > cfg.RotationThreshold:
		return Like
	case rotation < -cfg.RotationThreshold:
		return Dislike
	default:
		return Cancel
	}
}

func (o Outcome) String() string {
	switch o {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return "cancel"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "like":
		*o = Like
	case "dislike":
		*o = Dislike
	case "cancel", "":
		*o = Cancel
	default:
		return fmt.Errorf("gesture: unknown outcome %q", b)
	}
	return nil
}
