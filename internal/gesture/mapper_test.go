package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exactConfig uses binary fractions so boundary rotations are exact.
func exactConfig() Config {
	cfg := DefaultConfig()
	cfg.RadiansPerPixel = 0.25
	cfg.RotationThreshold = 5
	return cfg
}

type recorder struct {
	applied  []Feedback
	likes    int
	dislikes int
}

func (r *recorder) mapper(cfg Config) *Mapper {
	return NewMapper(cfg, TargetFunc(func(fb Feedback) { r.applied = append(r.applied, fb) }),
		func() { r.likes++ }, func() { r.dislikes++ })
}

func TestMoveWithoutStartIsNeutral(t *testing.T) {
	var r recorder
	m := r.mapper(DefaultConfig())

	fb := m.Move(10, 10)
	assert.True(t, fb.Neutral)
	assert.Equal(t, 400*time.Millisecond, fb.Transition)
	assert.Equal(t, "none", fb.Transform())
	assert.Equal(t, "none", fb.BoxShadow())
	assert.Equal(t, 0.0, m.LastRotation())
	require.Len(t, r.applied, 1)
}

func TestStartIsIdempotent(t *testing.T) {
	m := NewMapper(DefaultConfig(), nil, nil, nil)
	require.True(t, m.Start(100, 100))
	require.False(t, m.Start(5, 5))

	st, ok := m.Gesture()
	require.True(t, ok)
	assert.Equal(t, State{StartX: 100, StartY: 100}, st)
}

func TestDeadZoneCancels(t *testing.T) {
	var r recorder
	m := r.mapper(DefaultConfig())
	m.Start(100, 100)
	fb := m.Move(40, 100)

	assert.InDelta(t, -60*math.Pi/4600, fb.Rotation, 1e-12)
	assert.Equal(t, Cancel, m.End())
	assert.Zero(t, r.likes+r.dislikes)
	assert.Equal(t, 0.0, m.LastRotation())
	assert.False(t, m.Active())
}

func TestFarLeftDislikes(t *testing.T) {
	var r recorder
	m := r.mapper(DefaultConfig())
	m.Start(100, 100)
	fb := m.Move(-500, 100)

	assert.InDelta(t, -0.4098, fb.Rotation, 1e-3)
	assert.Equal(t, Dislike, m.End())
	assert.Equal(t, 1, r.dislikes)
	assert.Zero(t, r.likes)
	assert.True(t, r.applied[len(r.applied)-1].Neutral)
}

func TestFarRightLikes(t *testing.T) {
	var r recorder
	m := r.mapper(DefaultConfig())
	m.Start(0, 0)
	m.Move(700, 0)
	assert.Equal(t, Like, m.End())
	assert.Equal(t, 1, r.likes)
}

func TestThresholdBoundaryIsStrict(t *testing.T) {
	cfg := exactConfig()
	tests := []struct {
		name string
		dx   float64
		want Outcome
	}{
		{"exactly +threshold", 20, Cancel},
		{"exactly -threshold", -20, Cancel},
		{"just above +threshold", 20.5, Like},
		{"just below -threshold", -20.5, Dislike},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper(cfg, nil, nil, nil)
			m.Start(0, 0)
			m.Move(tt.dx, 0)
			assert.Equal(t, tt.want, m.End())
		})
	}
	assert.Equal(t, Cancel, Classify(cfg, 5))
	assert.Equal(t, Like, Classify(cfg, math.Nextafter(5, 6)))
}

func TestRotationLinearAndSignReversing(t *testing.T) {
	cfg := DefaultConfig()
	prev := math.Inf(1)
	for dx := -300.0; dx <= 300; dx += 7 {
		fb := FeedbackFor(cfg, Sample{DiffX: dx})
		assert.InDelta(t, -dx*cfg.RadiansPerPixel, fb.Rotation, 1e-15)
		assert.Less(t, fb.Rotation, prev)
		prev = fb.Rotation
	}
}

func TestDiffYNeverNegative(t *testing.T) {
	for _, y := range []float64{-1000, -1, 0, 50, 99, 100, 101, 5000} {
		s := SampleAt(0, 100, 0, y)
		assert.GreaterOrEqual(t, s.DiffY, 0.0)
	}
	m := NewMapper(DefaultConfig(), nil, nil, nil)
	m.Start(0, 100)
	down := m.Move(0, 400)
	assert.Equal(t, 0.0, down.TranslateY)
	up := m.Move(0, 0)
	assert.InDelta(t, -25.0, up.TranslateY, 1e-12)
}

func TestShadowOpacityMonotoneAndClamped(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, uint8(0), shadowOpacity(cfg, 0))

	var prev uint8
	for r := 0.0; r <= cfg.RotationThreshold; r += cfg.RotationThreshold / 50 {
		op := shadowOpacity(cfg, r)
		assert.GreaterOrEqual(t, op, prev)
		assert.Equal(t, op, shadowOpacity(cfg, -r))
		prev = op
	}
	clamped := shadowOpacity(cfg, cfg.RotationThreshold)
	assert.Equal(t, uint8(153), clamped)
	assert.Equal(t, clamped, shadowOpacity(cfg, 3*cfg.RotationThreshold))
	assert.Equal(t, clamped, shadowOpacity(cfg, -10))
}

func TestShadowColor(t *testing.T) {
	cfg := DefaultConfig()
	like := FeedbackFor(cfg, Sample{DiffX: -1000})
	assert.Equal(t, "#33bb3399", like.ShadowColor)
	assert.Equal(t, "0 0 0.5rem 0.5rem #33bb3399", like.BoxShadow())

	dislike := FeedbackFor(cfg, Sample{DiffX: 1000})
	assert.Equal(t, "#bb333399", dislike.ShadowColor)

	still := FeedbackFor(cfg, Sample{})
	assert.Equal(t, "#bb333300", still.ShadowColor)
}

func TestDragFeedbackCSS(t *testing.T) {
	cfg := exactConfig()
	cfg.XScale, cfg.YScale = 0.5, 0.25
	fb := FeedbackFor(cfg, Sample{DiffX: -8, DiffY: 4})

	assert.Equal(t, "rotateZ(-2rad) translate(4px, -1px)", fb.Transform())
	assert.Equal(t, "none", fb.TransitionCSS())
	assert.Equal(t, "box-shadow 0.4s, transform 0.4s", NeutralFeedback(cfg).TransitionCSS())
}

func TestAbortSkipsCallbacks(t *testing.T) {
	var r recorder
	m := r.mapper(DefaultConfig())
	m.Start(0, 0)
	m.Move(900, 0)
	m.Abort()

	assert.False(t, m.Active())
	assert.Zero(t, r.likes)
	assert.Equal(t, Cancel, m.End())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.RotationThreshold = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.MaxShadowOpacity = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.LikeColor = "green"
	assert.Error(t, bad.Validate())

	for name, mutate := range map[string]func(*Config){
		"nan opacity":  func(c *Config) { c.MaxShadowOpacity = math.NaN() },
		"nan x scale":  func(c *Config) { c.XScale = math.NaN() },
		"inf y scale":  func(c *Config) { c.YScale = math.Inf(-1) },
		"inf radians":  func(c *Config) { c.RadiansPerPixel = math.Inf(1) },
		"nan rotation": func(c *Config) { c.RotationThreshold = math.NaN() },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestOutcomeText(t *testing.T) {
	for _, o := range []Outcome{Cancel, Like, Dislike} {
		b, err := o.MarshalText()
		require.NoError(t, err)
		var back Outcome
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, o, back)
	}
	var o Outcome
	assert.Error(t, o.UnmarshalText([]byte("superlike")))
}
