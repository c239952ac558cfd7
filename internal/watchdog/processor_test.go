package watchdog

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// feed advances the clock by one interval per call.
func feed(t *testing.T, p *Processor, edge Edge, state State, at time.Time) *StateEvent {
	t.Helper()
	event, err := p.Process(edge, nil, state, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return event
}

func TestRecoveryAfterMinBeats(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond).WithRange(TimeoutRange(10 * time.Millisecond))
	p := NewProcessor(cfg, base)

	edges := []Edge{Rising, Falling, Rising, Falling}
	for i, e := range edges {
		event := feed(t, p, e, StateFault, base.Add(time.Duration(i+1)*100*time.Millisecond))
		if i < len(edges)-1 {
			if event != nil {
				t.Fatalf("edge %d: expected no event, got %v", i, event)
			}
			continue
		}
		if event == nil {
			t.Fatal("expected OK event after min_beats*2 edges")
		}
		if event.State != StateOk {
			t.Fatalf("expected OK, got %v", event)
		}
	}
}

func TestRecoveryDeniedByLateViolation(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond)
	p := NewProcessor(cfg, base)

	// min_beats*2 - 1 good edges, then a repeat instead of the fourth.
	now := base
	for i, e := range []Edge{Rising, Falling, Rising} {
		now = now.Add(100 * time.Millisecond)
		if event := feed(t, p, e, StateFault, now); event != nil {
			t.Fatalf("edge %d: expected no event, got %v", i, event)
		}
	}

	now = now.Add(100 * time.Millisecond)
	event := feed(t, p, Rising, StateFault, now) // expected Falling
	if event == nil {
		t.Fatal("expected OUT_OF_ORDER after repeat with 3 accepted edges")
	}
	if event.State != StateFault || event.Kind != FaultOutOfOrder {
		t.Fatalf("expected FAULT(OUT_OF_ORDER), got %v", event)
	}

	// Progress was reset: a full new hysteresis window is required again.
	for i, e := range []Edge{Falling, Rising, Falling} {
		now = now.Add(100 * time.Millisecond)
		if event := feed(t, p, e, StateFault, now); event != nil {
			t.Fatalf("post-reset edge %d: expected no event, got %v", i, event)
		}
	}
	now = now.Add(100 * time.Millisecond)
	event = feed(t, p, Rising, StateFault, now)
	if event == nil || event.State != StateOk {
		t.Fatalf("expected OK after 4 fresh edges, got %v", event)
	}
}

func TestTimeoutResetsProgress(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond)
	p := NewProcessor(cfg, base)

	now := base
	for _, e := range []Edge{Rising, Falling, Rising} {
		now = now.Add(100 * time.Millisecond)
		feed(t, p, e, StateFault, now)
	}

	now = now.Add(200 * time.Millisecond)
	event, err := p.Process(Falling, ErrTimeout, StateFault, now)
	if err != nil {
		t.Fatalf("timeout must be absorbed, got error: %v", err)
	}
	if event == nil || event.Kind != FaultTimeout || event.State != StateFault {
		t.Fatalf("expected FAULT(TIMEOUT), got %v", event)
	}

	// 3 more edges must not be enough: the count restarted at zero.
	// The expected edge after the timeout is still Falling.
	for i, e := range []Edge{Falling, Rising, Falling} {
		now = now.Add(100 * time.Millisecond)
		if event := feed(t, p, e, StateFault, now); event != nil {
			t.Fatalf("post-timeout edge %d: expected no event, got %v", i, event)
		}
	}
	now = now.Add(100 * time.Millisecond)
	if event := feed(t, p, Rising, StateFault, now); event == nil || event.State != StateOk {
		t.Fatalf("expected OK on fourth post-timeout edge, got %v", event)
	}
}

func TestFatalErrorPropagated(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond)
	p := NewProcessor(cfg, base)

	boom := errors.New("socket gone")
	event, err := p.Process(Falling, boom, StateFault, base.Add(100*time.Millisecond))
	if event != nil {
		t.Errorf("expected no event on fatal error, got %v", event)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected error to be forwarded unchanged, got %v", err)
	}
}

func TestNoEventsWhileOk(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond)
	p := NewProcessor(cfg, base)

	now := base
	next := Rising
	for i := 0; i < 20; i++ {
		now = now.Add(100 * time.Millisecond)
		if event := feed(t, p, next, StateOk, now); event != nil {
			t.Fatalf("edge %d: expected no event while OK, got %v", i, event)
		}
		next = next.Not()
	}
}

func TestWindowTooEarly(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond).WithRange(WindowRange(10 * time.Millisecond))
	p := NewProcessor(cfg, base)

	// 80ms elapsed < interval - window (90ms): rejected.
	event := feed(t, p, Rising, StateFault, base.Add(80*time.Millisecond))
	if event == nil || event.Kind != FaultWindow || event.State != StateFault {
		t.Fatalf("expected FAULT(WINDOW) for early edge, got %v", event)
	}

	// Exactly interval - window: accepted.
	if event := feed(t, p, Rising, StateFault, base.Add(170*time.Millisecond)); event != nil {
		t.Fatalf("expected edge at window boundary to be accepted, got %v", event)
	}
}

func TestWindowCheckAppliesToEveryPoll(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond).WithRange(WindowRange(10 * time.Millisecond))
	p := NewProcessor(cfg, base)

	now := base.Add(100 * time.Millisecond)
	feed(t, p, Rising, StateFault, now)

	// The second edge of the pair is held to the same raw-elapsed check.
	now = now.Add(50 * time.Millisecond)
	event := feed(t, p, Falling, StateFault, now)
	if event == nil || event.Kind != FaultWindow {
		t.Fatalf("expected FAULT(WINDOW) on early second edge, got %v", event)
	}
}

func TestSingleStrayEdgeTolerated(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond)
	p := NewProcessor(cfg, base)

	// One accepted edge, then a repeat: tolerated as a glitch.
	now := base.Add(100 * time.Millisecond)
	feed(t, p, Rising, StateFault, now)
	now = now.Add(100 * time.Millisecond)
	if event := feed(t, p, Rising, StateFault, now); event != nil {
		t.Fatalf("expected single stray edge to be tolerated, got %v", event)
	}

	// Stray edges right after a reset never fault either.
	p2 := NewProcessor(cfg, base)
	now = base
	for i := 0; i < 3; i++ {
		now = now.Add(100 * time.Millisecond)
		if event := feed(t, p2, Falling, StateFault, now); event != nil {
			t.Fatalf("stray edge %d after reset: expected no event, got %v", i, event)
		}
	}
}

func TestRepeatWhileOkFaultsImmediately(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond)
	p := NewProcessor(cfg, base)

	// Recover first.
	now := base
	for _, e := range []Edge{Rising, Falling, Rising, Falling} {
		now = now.Add(100 * time.Millisecond)
		feed(t, p, e, StateFault, now)
	}

	// A frozen peer repeating its last edge is caught on the first repeat:
	// the beat count is still above the stray-edge allowance.
	now = now.Add(100 * time.Millisecond)
	event := feed(t, p, Falling, StateOk, now) // expected Rising
	if event == nil || event.Kind != FaultOutOfOrder {
		t.Fatalf("expected FAULT(OUT_OF_ORDER) while OK, got %v", event)
	}
}

func TestNextTracksAlternation(t *testing.T) {
	cfg := NewConfig(100 * time.Millisecond)
	p := NewProcessor(cfg, base)

	if p.Next() != Rising {
		t.Fatalf("expected first edge RISING, got %v", p.Next())
	}
	feed(t, p, Rising, StateFault, base.Add(100*time.Millisecond))
	if p.Next() != Falling {
		t.Errorf("expected FALLING after accepted RISING, got %v", p.Next())
	}
	// A rejected edge does not flip the expectation.
	feed(t, p, Rising, StateFault, base.Add(200*time.Millisecond))
	if p.Next() != Falling {
		t.Errorf("expected FALLING after stray edge, got %v", p.Next())
	}
}
