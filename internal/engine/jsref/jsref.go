// Package jsref evaluates the sequence formula as JavaScript, the way the
// browser client computes it, so the Go port can be checked against it.
package jsref

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/MJE43/swipematch/internal/engine"
)

const script = `
function currentValue(seed, cursor, min, max) {
  var modularCursor = (cursor % max) + min;
  var combinedSeed = seed ^ modularCursor;
  var x = Math.sin(combinedSeed) * 10000;
  var fractional = x - Math.floor(x);
  return min + Math.floor(fractional * (max - min));
}
`

// Evaluator wraps a goja runtime holding the reference function. A runtime
// is not goroutine safe, so calls are serialised.
type Evaluator struct {
	mu      sync.Mutex
	runtime *goja.Runtime
	current goja.Callable
}

// New compiles the reference script.
func New() (*Evaluator, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("jsref: compile reference: %w", err)
	}
	fn, ok := goja.AssertFunction(vm.Get("currentValue"))
	if !ok {
		return nil, fmt.Errorf("jsref: currentValue is not a function")
	}
	return &Evaluator{runtime: vm, current: fn}, nil
}

// CurrentValue runs the reference formula.
func (e *Evaluator) CurrentValue(seed, cursor, min, max int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.current(goja.Undefined(),
		e.runtime.ToValue(seed),
		e.runtime.ToValue(cursor),
		e.runtime.ToValue(min),
		e.runtime.ToValue(max),
	)
	if err != nil {
		return 0, fmt.Errorf("jsref: evaluate: %w", err)
	}
	return res.ToInteger(), nil
}

// Report compares the Go and JavaScript results for one input.
type Report struct {
	Seed   int64 `json:"seed"`
	Cursor int64 `json:"cursor"`
	Min    int64 `json:"min"`
	Max    int64 `json:"max"`
	Go     int64 `json:"go"`
	JS     int64 `json:"js"`
	Match  bool  `json:"match"`
}

// Verify evaluates both implementations.
func (e *Evaluator) Verify(seed, cursor, min, max int64) (Report, error) {
	goVal, err := engine.CurrentValue(seed, cursor, min, max)
	if err != nil {
		return Report{}, err
	}
	jsVal, err := e.CurrentValue(seed, cursor, min, max)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Seed:   seed,
		Cursor: cursor,
		Min:    min,
		Max:    max,
		Go:     goVal,
		JS:     jsVal,
		Match:  goVal == jsVal,
	}, nil
}
