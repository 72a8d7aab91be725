package btmon

import (
	"time"

	"github.com/fako1024/btmon/bt"
)

// WithCentral sets the platform adapter used for discovery
func WithCentral(central bt.Central) func(*Reader) {
	return func(r *Reader) {
		r.central = central
	}
}

// WithTimeout sets the overall discovery deadline
func WithTimeout(timeout time.Duration) func(*Reader) {
	return func(r *Reader) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithPumpInterval sets the duration of a single event pump iteration
func WithPumpInterval(interval time.Duration) func(*Reader) {
	return func(r *Reader) {
		if interval > 0 {
			r.pumpInterval = interval
		}
	}
}

// WithPump sets the factory providing a fresh event pump per discovery run
func WithPump(newPump func() Pump) func(*Reader) {
	return func(r *Reader) {
		r.newPump = newPump
	}
}

// WithClock sets the time source used to enforce the deadline
func WithClock(now func() time.Time) func(*Reader) {
	return func(r *Reader) {
		r.now = now
	}
}

// WithLogger sets a logger
func WithLogger(logger Logger) func(*Reader) {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}
