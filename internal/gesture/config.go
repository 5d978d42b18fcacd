// Package gesture turns pointer and touch drags on a card into visual
// feedback and classifies the release as a like, a dislike or a cancel.
package gesture

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

// Config holds the tunable constants of the mapper.
type Config struct {
	// RotationThreshold is the minimum |rotation| in radians at release for a
	// like or dislike.
	RotationThreshold float64 `yaml:"rotation_threshold" json:"rotation_threshold"`
	// RadiansPerPixel scales horizontal displacement to rotation.
	RadiansPerPixel float64 `yaml:"radians_per_pixel" json:"radians_per_pixel"`
	XScale          float64 `yaml:"x_scale" json:"x_scale"`
	YScale          float64 `yaml:"y_scale" json:"y_scale"`
	// MaxShadowOpacity bounds the shadow alpha, 0..1.
	MaxShadowOpacity float64       `yaml:"max_shadow_opacity" json:"max_shadow_opacity"`
	ResetTransition  time.Duration `yaml:"reset_transition" json:"reset_transition"`
	LikeColor        string        `yaml:"like_color" json:"like_color"`
	DislikeColor     string        `yaml:"dislike_color" json:"dislike_color"`
}

// DefaultConfig returns the constants of the production card component.
func DefaultConfig() Config {
	return Config{
		RotationThreshold: math.Pi / 25,
		RadiansPerPixel:   math.Pi / 4600,
		XScale:            1.0 / 3,
		YScale:            1.0 / 4,
		MaxShadowOpacity:  0.6,
		ResetTransition:   400 * time.Millisecond,
		LikeColor:         "#33bb33",
		DislikeColor:      "#bb3333",
	}
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate rejects configurations the mapper cannot evaluate.
func (c Config) Validate() error {
	if !(c.RotationThreshold > 0) {
		return fmt.Errorf("gesture: rotation threshold must be positive, got %v", c.RotationThreshold)
	}
	if !finite(c.RadiansPerPixel) {
		return fmt.Errorf("gesture: radians per pixel must be finite")
	}
	if !finite(c.XScale) || !finite(c.YScale) {
		return fmt.Errorf("gesture: x and y scale must be finite")
	}
	if !(c.MaxShadowOpacity >= 0 && c.MaxShadowOpacity <= 1) {
		return fmt.Errorf("gesture: max shadow opacity must be within [0, 1], got %v", c.MaxShadowOpacity)
	}
	if c.ResetTransition < 0 {
		return fmt.Errorf("gesture: reset transition must not be negative")
	}
	for _, col := range []string{c.LikeColor, c.DislikeColor} {
		if !hexColor.MatchString(col) {
			return fmt.Errorf("gesture: color %q is not #rrggbb", col)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
