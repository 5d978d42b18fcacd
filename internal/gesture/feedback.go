package gesture

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Sample is the displacement of the pointer from the gesture start.
// DiffY only counts upward drags and is never negative.
type Sample struct {
	DiffX float64 `json:"diff_x"`
	DiffY float64 `json:"diff_y"`
}

// SampleAt computes the displacement of (x, y) from the start point.
func SampleAt(startX, startY, x, y float64) Sample {
	return Sample{
		DiffX: startX - x,
		DiffY: math.Max(0, startY-y),
	}
}

// Feedback is the styling a host applies to the card element.
type Feedback struct {
	Neutral       bool          `json:"neutral"`
	Rotation      float64       `json:"rotation"`
	TranslateX    float64       `json:"translate_x"`
	TranslateY    float64       `json:"translate_y"`
	ShadowColor   string        `json:"shadow_color,omitempty"`
	ShadowOpacity uint8         `json:"shadow_opacity"`
	Transition    time.Duration `json:"transition"`
}

// NeutralFeedback resets the card, animating back over the reset transition.
func NeutralFeedback(cfg Config) Feedback {
	return Feedback{Neutral: true, Transition: cfg.ResetTransition}
}

// FeedbackFor maps a drag sample to feedback. Drag feedback has no
// transition so the card tracks the pointer exactly.
func FeedbackFor(cfg Config, s Sample) Feedback {
	rotation := -s.DiffX * cfg.RadiansPerPixel
	opacity := shadowOpacity(cfg, rotation)
	color := cfg.DislikeColor
	if rotation > 0 {
		color = cfg.LikeColor
	}
	return Feedback{
		Rotation:      rotation,
		TranslateX:    -s.DiffX * cfg.XScale,
		TranslateY:    -s.DiffY * cfg.YScale,
		ShadowColor:   color + fmt.Sprintf("%02x", opacity),
		ShadowOpacity: opacity,
	}
}

// shadowOpacity grows linearly with |rotation| and is clamped at the
// threshold.
func shadowOpacity(cfg Config, rotation float64) uint8 {
	if !(cfg.RotationThreshold > 0) {
		return 0
	}
	ratio := math.Min(cfg.RotationThreshold, math.Abs(rotation)) / cfg.RotationThreshold
	v := math.Floor(ratio * cfg.MaxShadowOpacity * 255)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Transform renders the CSS transform property.
func (f Feedback) Transform() string {
	if f.Neutral {
		return "none"
	}
	return fmt.Sprintf("rotateZ(%srad) translate(%spx, %spx)",
		formatFloat(-f.Rotation), formatFloat(f.TranslateX), formatFloat(f.TranslateY))
}

// TransitionCSS renders the CSS transition property.
func (f Feedback) TransitionCSS() string {
	if f.Transition <= 0 {
		return "none"
	}
	secs := formatFloat(f.Transition.Seconds())
	return fmt.Sprintf("box-shadow %ss, transform %ss", secs, secs)
}

// BoxShadow renders the CSS box-shadow property.
func (f Feedback) BoxShadow() string {
	if f.Neutral || f.ShadowColor == "" {
		return "none"
	}
	return "0 0 0.5rem 0.5rem " + f.ShadowColor
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
