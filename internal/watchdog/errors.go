package watchdog

import (
	"errors"
	"net"
)

// ErrTimeout is returned by Io.Get when no edge was observed before the
// deadline. It is the only error the processor absorbs; everything else is
// fatal to the run loop.
var ErrTimeout = errors.New("watchdog: timed out")

// IsTimeout reports whether err represents a deadline expiry. Backends built
// on the net package surface deadline errors as net.Error with Timeout()
// true; those are folded into ErrTimeout here so backends do not have to
// translate them.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
