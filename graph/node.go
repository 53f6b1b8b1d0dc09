// Package graph implements the node-graph evaluation engine: the transform-node catalogue, per-event memoised evaluation,
// cut propagation, and the dependency-driven Graph/Builder that
// constructs and deduplicates it.
//
// Every node type implements Node. Process is idempotent per event id —
// each concrete type embeds nodeBase and calls its guard at the top of
// Process, a run-once-per-event adaptation of a run-once-per-cycle
// tick guard.
package graph

import "github.com/opendaq/evmon/value"

// neverRun is the epoch sentinel meaning "has not processed any event
// yet". Event ids are assigned sequentially starting at 0 by the event
// driver, so this value is never itself a legal event id.
const neverRun = ^uint64(0)

// Node is a graph vertex: a stable, lifetime-scoped handle owned
// exclusively by the Graph that built it.
type Node interface {
	// Location is the diagnostic source-location string recorded at
	// construction.
	Location() string

	// Process evaluates this node for eventID, pulling its dependencies
	// lazily. It is a no-op if this node already ran for eventID.
	Process(eventID uint64)

	// Output returns a named output Value. Single-output node kinds
	// accept "" (or any name — they ignore it). Process must have been
	// called for the current event before Output is meaningful.
	Output(name string) *value.Value
}

// nodeBase provides the per-event memoisation guard shared by every
// concrete node type.
type nodeBase struct {
	loc   string
	epoch uint64
}

func newNodeBase(loc string) nodeBase {
	return nodeBase{loc: loc, epoch: neverRun}
}

func (b *nodeBase) Location() string { return b.loc }

// alreadyRan reports whether eventID has already been processed, and
// marks it processed as a side effect. Call this first thing in every
// Process implementation.
func (b *nodeBase) alreadyRan(eventID uint64) bool {
	if b.epoch == eventID {
		return true
	}
	b.epoch = eventID
	return false
}
