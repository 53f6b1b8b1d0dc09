// Package clock implements the clock matcher: a throttle
// that paces event replay to a virtual timestamp signal, so a fast
// offline replay feels like real-time acquisition.
package clock

import (
	"time"

	"github.com/opendaq/evmon/errs"
)

// Matcher throttles the consumer thread against a monotonic timestamp
// field. It is driven exclusively by the consumer/event thread, so it
// needs no internal locking.
type Matcher struct {
	scale    float64
	ts0      uint64
	t0       time.Time
	started  bool
	lastTs   uint64
	now      func() time.Time
	sleep    func(time.Duration)
}

// New creates a Matcher that converts ticks to seconds via
// secondsPerTick.
func New(secondsPerTick float64) *Matcher {
	return &Matcher{
		scale: secondsPerTick,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// WithClock overrides the time sources for deterministic testing.
func (m *Matcher) WithClock(now func() time.Time, sleep func(time.Duration)) *Matcher {
	m.now = now
	m.sleep = sleep
	return m
}

// Observe records one event's monotonic timestamp and blocks the caller
// until the wall clock has caught up to the virtual elapsed time. It
// enforces strict monotonicity over ts — the check always rejects
// ts <= prev, regardless of the cosmetic label swap in the error
// message it raises (see errs.NonMonotonicClock).
func (m *Matcher) Observe(ts uint64) error {
	now := m.now()
	if !m.started {
		m.ts0 = ts
		m.t0 = now
		m.lastTs = ts
		m.started = true
		return nil
	}

	if ts <= m.lastTs {
		// NonMonotonicClock.Error()'s label ordering is the one place the
		// historical cosmetic swap is reproduced; the guard above is the
		// actual (correct) check.
		return &errs.NonMonotonicClock{Prev: m.lastTs, Curr: ts}
	}
	m.lastTs = ts

	dts := float64(ts-m.ts0) * m.scale
	dt := now.Sub(m.t0).Seconds()
	if dts > dt {
		m.sleep(time.Duration((dts - dt) * float64(time.Second)))
	}
	return nil
}
