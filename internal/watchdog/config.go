package watchdog

import "time"

// Config is the immutable watchdog configuration. It is a value type built
// with NewConfig and the With* methods; once handed to a Watchdog it is
// never modified.
type Config struct {
	interval time.Duration
	rng      Range
	warmup   time.Duration
	minBeats int
}

// NewConfig returns a configuration for the given beat interval with the
// documented defaults: range Timeout(interval + 10%), warmup 2*interval,
// min beats 2.
func NewConfig(interval time.Duration) Config {
	return Config{
		interval: interval,
		rng:      TimeoutRange(interval + interval/10),
		warmup:   2 * interval,
		minBeats: 2,
	}
}

// WithRange sets the beat acceptance policy.
func (c Config) WithRange(r Range) Config {
	c.rng = r
	return c
}

// WithWarmup sets the grace period after entering Fault during which polling
// is paused and stale input discarded.
func (c Config) WithWarmup(warmup time.Duration) Config {
	c.warmup = warmup
	return c
}

// WithMinBeats sets the number of consecutive good beats required before a
// Fault -> Ok transition. One beat is one accepted alternating edge; the
// processor requires a full alternation cycle per beat, i.e. 2*minBeats
// accepted edges.
func (c Config) WithMinBeats(n int) Config {
	c.minBeats = n
	return c
}

// Interval returns the nominal beat period.
func (c Config) Interval() time.Duration { return c.interval }

// Range returns the beat acceptance policy.
func (c Config) Range() Range { return c.rng }

// Warmup returns the post-fault grace period.
func (c Config) Warmup() time.Duration { return c.warmup }

// MinBeats returns the recovery threshold in beats.
func (c Config) MinBeats() int { return c.minBeats }

// IOTimeout returns the deadline backends must apply to a single Get call:
// the beat interval plus the range bound. An edge that has not arrived by
// then is late regardless of policy.
func (c Config) IOTimeout() time.Duration {
	return c.interval + c.rng.D
}
