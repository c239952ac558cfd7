package watchdog

import (
	"context"
	"sync/atomic"
	"time"
)

// Watchdog owns an Io backend and drives the poll -> process -> publish loop.
// The published state is a lock-free atomic readable from any goroutine;
// everything else is private to Run.
type Watchdog struct {
	io       Io
	state    atomic.Bool // true = StateOk
	cfg      Config
	notifier *Notifier
}

// New creates a watchdog over the given backend. The watchdog starts in
// StateFault and takes exclusive ownership of io: after New the backend must
// only be driven by Run.
func New(cfg Config, io Io) *Watchdog {
	return &Watchdog{
		io:       io,
		cfg:      cfg,
		notifier: NewNotifier(),
	}
}

// Config returns the watchdog configuration.
func (w *Watchdog) Config() Config { return w.cfg }

// State returns the current published state. Never blocks; the value may be
// stale by up to one poll interval.
func (w *Watchdog) State() State {
	return StateFromBool(w.state.Load())
}

// Subscribe returns a new independent handle on the state event stream.
// Subscribers see every future transition, or only the latest one if they
// fall behind (capacity-1, latest wins).
func (w *Watchdog) Subscribe() *Subscription {
	return w.notifier.Subscribe()
}

// Run drives the watchdog until ctx is cancelled or the backend fails with a
// non-timeout error. It is intended to occupy one goroutine for the lifetime
// of the process.
//
// The first published event is always Fault(Initial), even though the state
// already reads Fault at creation, so subscribers observe the initial
// reason. Every transition into Fault pauses for the warm-up period and then
// clears the backend's buffered input before polling resumes.
func (w *Watchdog) Run(ctx context.Context) error {
	if err := w.setFault(ctx, FaultInitial); err != nil {
		return err
	}
	p := NewProcessor(w.cfg, time.Now())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		edge, ioErr := w.io.Get(ctx, p.Next())
		if ioErr != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		event, err := p.Process(edge, ioErr, w.State(), time.Now())
		if err != nil {
			return err
		}
		if event == nil {
			continue
		}
		if event.State == StateOk {
			w.setOk()
		} else if err := w.setFault(ctx, event.Kind); err != nil {
			return err
		}
	}
}

func (w *Watchdog) setOk() {
	if w.State() == StateOk {
		return
	}
	w.state.Store(true)
	w.notifier.Publish(OkEvent())
}

// setFault publishes the fault with its reason even when the boolean state
// is already Fault, and re-runs warm-up for every fault event.
func (w *Watchdog) setFault(ctx context.Context, kind FaultKind) error {
	w.state.Store(false)
	w.notifier.Publish(FaultEvent(kind))
	return w.warmup(ctx)
}

func (w *Watchdog) warmup(ctx context.Context) error {
	t := time.NewTimer(w.cfg.warmup)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	return w.io.Clear(ctx)
}
