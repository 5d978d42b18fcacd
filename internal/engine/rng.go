// Package engine produces the deterministic "next item" sequence for a
// profile. A sequence is a pure function of (seed, cursor): replaying the
// same pair always yields the same item identifier.
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidBounds is returned when max <= min. It indicates a misconfigured
// catalog range, not a runtime condition.
var ErrInvalidBounds = errors.New("engine: max must be greater than min")

// sinScale spreads sin() output so the fractional part looks uniform.
const sinScale = 10000

// Bounds is the half-open identifier range [Min, Max).
type Bounds struct {
	Min int64 `json:"min" yaml:"min"`
	Max int64 `json:"max" yaml:"max"`
}

// Validate reports ErrInvalidBounds for empty or inverted ranges.
func (b Bounds) Validate() error {
	if b.Max <= b.Min {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidBounds, b.Min, b.Max)
	}
	return nil
}

// Size returns the number of identifiers in the range.
func (b Bounds) Size() int64 {
	return b.Max - b.Min
}

// CurrentValue returns the identifier at cursor for the given seed.
//
// The formula is fixed for compatibility with sequences persisted by the
// browser client:
//
//	modular  = (cursor mod max) + min
//	combined = int32(seed) XOR int32(modular)
//	x        = sin(combined) * 10000
//	result   = min + floor((x - floor(x)) * (max - min))
//
// Repeats are possible before the range is exhausted; this is a seeded
// spread, not a shuffle. Use ModeShuffle when a pass must not repeat.
func CurrentValue(seed, cursor, min, max int64) (int64, error) {
	b := Bounds{Min: min, Max: max}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return hashValue(seed, cursor, b), nil
}

// PreviewNext returns the identifier the sequence will yield after the next
// advance. It never touches persisted state.
func PreviewNext(seed, cursor, min, max int64) (int64, error) {
	return CurrentValue(seed, cursor+1, min, max)
}

// MustCurrentValue is CurrentValue for callers with static bounds. It panics
// on invalid bounds.
func MustCurrentValue(seed, cursor, min, max int64) int64 {
	v, err := CurrentValue(seed, cursor, min, max)
	if err != nil {
		panic(err)
	}
	return v
}

func hashValue(seed, cursor int64, b Bounds) int64 {
	// Go's % truncates toward zero like the JS remainder operator. A zero
	// max yields NaN in JS, which ToInt32 turns into 0.
	var modular int32
	if b.Max != 0 {
		modular = toInt32(cursor%b.Max + b.Min)
	}
	combined := toInt32(seed) ^ modular
	f := fraction(float64(combined))
	return b.Min + scaleIndex(f, b.Size())
}

// scaleIndex converts f in [0, 1) to an offset in [0, n).
func scaleIndex(f float64, n int64) int64 {
	idx := int64(math.Floor(f * float64(n)))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// fraction maps n to [0, 1) through the scaled sine.
func fraction(n float64) float64 {
	x := math.Sin(n) * sinScale
	return x - math.Floor(x)
}

// toInt32 applies the ECMAScript ToInt32 conversion for integral inputs:
// the value is taken modulo 2^32 and reinterpreted as signed.
func toInt32(v int64) int32 {
	return int32(uint32(v))
}

// RandomSeed returns a fresh non-negative seed that survives the 32-bit
// truncation unchanged.
func RandomSeed() int64 {
	return rand.Int64N(math.MaxInt32)
}
