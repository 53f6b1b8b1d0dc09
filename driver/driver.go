// Package driver implements the per-event execution order:
// bind the current Input, run the optional clock matcher, reset cut
// state, evaluate every cuttable sink in insertion order, then unbind
// and advance the event counter.
package driver

import (
	"github.com/opendaq/evmon/clock"
	"github.com/opendaq/evmon/graph"
	"github.com/opendaq/evmon/input"
	"github.com/opendaq/evmon/logx"
)

var log = logx.ForComponent("driver")

// ClockSource extracts the monotonic timestamp used for clock-matching
// from the current event, when clock-matching is configured.
type ClockSource func(port input.Port) (uint64, bool)

// Driver owns the assembled Graph and the optional clock matcher, and
// runs one event at a time through it.
type Driver struct {
	graph       *graph.Graph
	matcher     *clock.Matcher
	clockSource ClockSource
	eventID     uint64
}

// New creates a Driver over graph g. matcher and clockSource are both nil
// when the configuration does not enable clock-matching.
func New(g *graph.Graph, matcher *clock.Matcher, clockSource ClockSource) *Driver {
	return &Driver{graph: g, matcher: matcher, clockSource: clockSource}
}

// EventID returns the next event id DoEvent will assign.
func (d *Driver) EventID() uint64 { return d.eventID }

// DoEvent runs one full event through the graph.
// It returns a non-nil error only for a fatal clock regression
// (*errs.NonMonotonicClock); transform-node panics for fatal per-event
// errors (TypeMismatch) are expected to propagate to the caller, which
// the consumer thread treats as a fatal process condition.
func (d *Driver) DoEvent(port input.Port) error {
	if d.matcher != nil && d.clockSource != nil {
		ts, ok := d.clockSource(port)
		if ok {
			if err := d.matcher.Observe(ts); err != nil {
				log.WithError(err).Error("clock regression, stopping")
				return err
			}
		}
	}

	d.graph.Evaluate(d.eventID)

	port.UnbindSignals()
	d.eventID++
	return nil
}
