package watchdog

import (
	"context"
	"sync"
)

// Step is one scripted outcome for FakeIo.Get. If Err is non-nil it is
// returned and Edge is ignored.
type Step struct {
	Edge Edge
	Err  error
}

// FakeIo is a test double implementing Io with scripted Get outcomes.
// Once the script is exhausted, Get blocks until ctx is cancelled and the
// Exhausted channel is closed, so run-loop tests can script a finite
// scenario and then stop the loop.
type FakeIo struct {
	mu sync.Mutex

	// Steps contains scripted Get outcomes, consumed one per call.
	Steps []Step

	// ClearError, if set, is returned by Clear.
	ClearError error

	// Exhausted is closed when the last step has been consumed.
	Exhausted chan struct{}

	// Expected records the expected edge passed to each Get call.
	Expected []Edge

	// ClearCalls counts Clear invocations.
	ClearCalls int

	index     int
	exhausted bool
}

// NewFakeIo creates a FakeIo with the given script.
func NewFakeIo(steps []Step) *FakeIo {
	return &FakeIo{Steps: steps, Exhausted: make(chan struct{})}
}

// Get returns the next scripted outcome, or blocks until cancellation once
// the script has been consumed.
func (f *FakeIo) Get(ctx context.Context, expected Edge) (Edge, error) {
	f.mu.Lock()
	f.Expected = append(f.Expected, expected)
	if f.index < len(f.Steps) {
		step := f.Steps[f.index]
		f.index++
		if f.index == len(f.Steps) && !f.exhausted {
			f.exhausted = true
			close(f.Exhausted)
		}
		f.mu.Unlock()
		return step.Edge, step.Err
	}
	f.mu.Unlock()
	<-ctx.Done()
	return Falling, ctx.Err()
}

// Clear counts the call and returns ClearError.
func (f *FakeIo) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClearCalls++
	return f.ClearError
}

// Clears returns the number of Clear calls so far. Safe to call while the
// run loop is still driving the fake.
func (f *FakeIo) Clears() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ClearCalls
}
