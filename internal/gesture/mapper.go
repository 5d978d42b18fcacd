package gesture

// State is the start point of the active gesture.
type State struct {
	StartX float64 `json:"start_x"`
	StartY float64 `json:"start_y"`
}

// Target receives feedback for the rendered card.
type Target interface {
	Apply(Feedback)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(Feedback)

// Apply calls f.
func (f TargetFunc) Apply(fb Feedback) { f(fb) }

// Mapper is the Idle -> Active -> Idle state machine for one card.
// It is owned by the UI dispatch loop and is not safe for concurrent use.
type Mapper struct {
	cfg          Config
	target       Target
	onLike       func()
	onDislike    func()
	active       *State
	lastRotation float64
}

// NewMapper returns an idle mapper. target, onLike and onDislike may be nil.
func NewMapper(cfg Config, target Target, onLike, onDislike func()) *Mapper {
	return &Mapper{
		cfg:       cfg,
		target:    target,
		onLike:    onLike,
		onDislike: onDislike,
	}
}

// Config returns the mapper constants.
func (m *Mapper) Config() Config { return m.cfg }

// Active reports whether a gesture is in progress.
func (m *Mapper) Active() bool { return m.active != nil }

// Gesture returns the start point of the active gesture.
func (m *Mapper) Gesture() (State, bool) {
	if m.active == nil {
		return State{}, false
	}
	return *m.active, true
}

// LastRotation returns the rotation recorded by the last drag.
func (m *Mapper) LastRotation() float64 { return m.lastRotation }

// Start begins a gesture at (x, y). A second start while active is ignored
// and Start reports false.
func (m *Mapper) Start(x, y float64) bool {
	if m.active != nil {
		return false
	}
	m.active = &State{StartX: x, StartY: y}
	return true
}

// Move updates the feedback for a pointer at (x, y). Without an active
// gesture the card is reset to neutral.
func (m *Mapper) Move(x, y float64) Feedback {
	if m.active == nil {
		fb := NeutralFeedback(m.cfg)
		m.apply(fb)
		return fb
	}
	fb := FeedbackFor(m.cfg, SampleAt(m.active.StartX, m.active.StartY, x, y))
	m.lastRotation = fb.Rotation
	m.apply(fb)
	return fb
}

// End finishes the gesture, resets the card and fires at most one of the
// like and dislike callbacks.
func (m *Mapper) End() Outcome {
	m.active = nil
	m.apply(NeutralFeedback(m.cfg))

	outcome := Classify(m.cfg, m.lastRotation)
	m.lastRotation = 0

	switch outcome {
	case Like:
		if m.onLike != nil {
			m.onLike()
		}
	case Dislike:
		if m.onDislike != nil {
			m.onDislike()
		}
	}
	return outcome
}

// Abort drops the active gesture without classifying it.
func (m *Mapper) Abort() {
	if m.active == nil {
		return
	}
	m.active = nil
	m.lastRotation = 0
	m.apply(NeutralFeedback(m.cfg))
}

func (m *Mapper) apply(fb Feedback) {
	if m.target != nil {
		m.target.Apply(fb)
	}
}
