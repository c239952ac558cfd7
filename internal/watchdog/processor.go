package watchdog

import "time"

// Processor is the pure, single-threaded decision core. Given the outcome of
// one I/O poll and the currently published state it decides whether a state
// change event must be emitted. It carries only fixed-size state: the count
// of consecutive accepted edges since the last fault, the expected next edge
// and the instant of the previous poll.
//
// The Processor is driven only by the run loop; it needs no synchronization.
type Processor struct {
	packets  int
	next     Edge
	lastPoll time.Time
	cfg      Config
}

// NewProcessor returns a processor expecting a Rising edge first, with its
// poll timer primed at now.
func NewProcessor(cfg Config, now time.Time) *Processor {
	return &Processor{
		next:     Rising,
		lastPoll: now,
		cfg:      cfg,
	}
}

// Next returns the edge value the peer is expected to send next.
func (p *Processor) Next() Edge { return p.next }

// Process classifies one poll outcome. edge and err are the result of
// Io.Get; current is the published state; now is the poll instant.
//
// It returns at most one event; nil means no observable change. A timeout
// from the transport is absorbed into a Fault(Timeout) event. Any other
// error is returned unchanged and terminates the run loop.
func (p *Processor) Process(edge Edge, err error, current State, now time.Time) (*StateEvent, error) {
	elapsed := now.Sub(p.lastPoll)
	// The timer resets on every poll regardless of outcome.
	p.lastPoll = now

	if err != nil {
		if IsTimeout(err) {
			p.packets = 0
			return eventPtr(FaultEvent(FaultTimeout)), nil
		}
		return nil, err
	}

	// Early-arrival check. Uses the raw elapsed time on every poll, no
	// matter which edge was expected.
	if p.cfg.rng.Kind == RangeWindow && elapsed < p.cfg.interval-p.cfg.rng.D {
		p.packets = 0
		return eventPtr(FaultEvent(FaultWindow)), nil
	}

	if edge == p.next {
		p.next = p.next.Not()
		if current == StateFault {
			p.packets++
			// Two accepted edges make one full alternation cycle.
			if p.packets >= p.cfg.minBeats*2 {
				return eventPtr(OkEvent()), nil
			}
		}
		return nil, nil
	}

	// Repeated edge value. A single stray edge is tolerated as a glitch;
	// a second one in a row is an ordering fault.
	if p.packets > 1 {
		p.packets = 0
		return eventPtr(FaultEvent(FaultOutOfOrder)), nil
	}
	return nil, nil
}

func eventPtr(e StateEvent) *StateEvent { return &e }
