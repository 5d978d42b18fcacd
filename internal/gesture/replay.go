package gesture

import (
	"fmt"
	"math"
)

// EventType is the phase of a recorded input event.
type EventType string

const (
	EventStart EventType = "start"
	EventMove  EventType = "move"
	EventEnd   EventType = "end"
)

// Source is the input device of a recorded event.
type Source string

const (
	SourcePointer Source = "pointer"
	SourceTouch   Source = "touch"
)

// Event is one entry of a recorded gesture trace.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Source Source    `json:"source,omitempty"`
}

// ReplayResult summarises a replayed trace.
type ReplayResult struct {
	Outcome      Outcome  `json:"outcome"`
	Completed    bool     `json:"completed"`
	Moves        int      `json:"moves"`
	PeakRotation float64  `json:"peak_rotation"`
	LastDrag     Feedback `json:"last_drag"`
	Applied      int      `json:"applied"`
}

// Replay drives a fresh mapper through a trace. Pointer events go through a
// PointerBinding on a private bus, touch events through a TouchBinding. A
// trace without an end event is abandoned and reports Completed=false.
func Replay(cfg Config, events []Event) (ReplayResult, error) {
	if err := cfg.Validate(); err != nil {
		return ReplayResult{}, err
	}

	var res ReplayResult
	target := TargetFunc(func(fb Feedback) {
		res.Applied++
		if fb.Neutral {
			return
		}
		res.Moves++
		res.LastDrag = fb
		if math.Abs(fb.Rotation) > math.Abs(res.PeakRotation) {
			res.PeakRotation = fb.Rotation
		}
	})
	m := NewMapper(cfg, target,
		func() { res.Outcome = Like },
		func() { res.Outcome = Dislike },
	)

	bus := NewBus()
	pointer := BindPointer(m, bus)
	defer pointer.Close()
	touch := BindTouch(m)

	for i, ev := range events {
		p := Point{X: ev.X, Y: ev.Y}
		switch ev.Source {
		case "", SourcePointer:
			switch ev.Type {
			case EventStart:
				pointer.Down(p)
			case EventMove:
				if pointer.Listening() {
					bus.Emit(PointerMove, p)
				} else {
					m.Move(p.X, p.Y)
				}
			case EventEnd:
				if pointer.Listening() {
					bus.Emit(PointerUp, p)
				} else {
					m.End()
				}
				res.Completed = true
			default:
				return ReplayResult{}, fmt.Errorf("gesture: event %d: unknown type %q", i, ev.Type)
			}
		case SourceTouch:
			touches := []TouchPoint{{X: ev.X, Y: ev.Y}}
			switch ev.Type {
			case EventStart:
				touch.TouchStart(touches)
			case EventMove:
				touch.TouchMove(touches)
			case EventEnd:
				touch.TouchEnd()
				res.Completed = true
			default:
				return ReplayResult{}, fmt.Errorf("gesture: event %d: unknown type %q", i, ev.Type)
			}
		default:
			return ReplayResult{}, fmt.Errorf("gesture: event %d: unknown source %q", i, ev.Source)
		}
		if res.Completed {
			break
		}
	}
	return res, nil
}
