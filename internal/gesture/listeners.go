package gesture

import "sync"

// EventKind identifies a global pointer event.
type EventKind int

const (
	PointerMove EventKind = iota
	PointerUp
)

// Point is a viewport coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EventSource is the host's window-level event bus. Listen returns a
// function that removes the listener.
type EventSource interface {
	Listen(kind EventKind, fn func(Point)) (remove func())
}

// PointerBinding feeds mouse-style input to a mapper. Pointer-down is scoped
// to the card element; move and release are global so a drag may leave the
// card. Global listeners exist only while a gesture is active.
type PointerBinding struct {
	mapper   *Mapper
	source   EventSource
	removers []func()
	closed   bool
}

// BindPointer attaches a mapper to a global event source.
func BindPointer(m *Mapper, src EventSource) *PointerBinding {
	return &PointerBinding{mapper: m, source: src}
}

// Down handles pointer-down on the card.
func (b *PointerBinding) Down(p Point) {
	if b.closed || !b.mapper.Start(p.X, p.Y) {
		return
	}
	b.removers = append(b.removers,
		b.source.Listen(PointerMove, func(p Point) { b.mapper.Move(p.X, p.Y) }),
		b.source.Listen(PointerUp, func(Point) { b.release() }),
	)
}

// Listening reports whether global listeners are attached.
func (b *PointerBinding) Listening() bool { return len(b.removers) > 0 }

// Close detaches global listeners and abandons any active gesture. Hosts
// call it on teardown.
func (b *PointerBinding) Close() {
	b.closed = true
	b.detach()
	b.mapper.Abort()
}

func (b *PointerBinding) release() {
	b.detach()
	b.mapper.End()
}

func (b *PointerBinding) detach() {
	for _, remove := range b.removers {
		remove()
	}
	b.removers = nil
}

// TouchPoint is one entry of a touch list.
type TouchPoint struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// TouchBinding feeds element-scoped touch events to a mapper. Only the first
// target touch is tracked.
type TouchBinding struct {
	mapper *Mapper
}

// BindTouch attaches a mapper to touch input.
func BindTouch(m *Mapper) TouchBinding {
	return TouchBinding{mapper: m}
}

// TouchStart handles touchstart.
func (t TouchBinding) TouchStart(touches []TouchPoint) {
	if len(touches) == 0 {
		return
	}
	t.mapper.Start(touches[0].X, touches[0].Y)
}

// TouchMove handles touchmove.
func (t TouchBinding) TouchMove(touches []TouchPoint) {
	if len(touches) == 0 {
		return
	}
	t.mapper.Move(touches[0].X, touches[0].Y)
}

// TouchEnd handles touchend.
func (t TouchBinding) TouchEnd() Outcome {
	return t.mapper.End()
}

// Bus is an in-process EventSource.
type Bus struct {
	mu        sync.Mutex
	next      int
	listeners map[EventKind]map[int]func(Point)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[EventKind]map[int]func(Point))}
}

// Listen implements EventSource.
func (b *Bus) Listen(kind EventKind, fn func(Point)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners[kind] == nil {
		b.listeners[kind] = make(map[int]func(Point))
	}
	id := b.next
	b.next++
	b.listeners[kind][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners[kind], id)
			b.mu.Unlock()
		})
	}
}

// Emit delivers p to every listener of kind.
func (b *Bus) Emit(kind EventKind, p Point) {
	b.mu.Lock()
	fns := make([]func(Point), 0, len(b.listeners[kind]))
	for _, fn := range b.listeners[kind] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

// Count returns the number of attached listeners.
func (b *Bus) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.listeners {
		n += len(m)
	}
	return n
}
