// Package input defines the abstract pull interface event producers
// implement and the per-signal member kinds
// a Signal leaf binds against.
package input

import "github.com/opendaq/evmon/value"

// MemberKind selects which of a compound signal's streams a bind
// targets.
type MemberKind int

const (
	MemberID MemberKind = iota
	MemberEnd
	MemberV
)

func (k MemberKind) String() string {
	switch k {
	case MemberID:
		return "id"
	case MemberEnd:
		return "end"
	case MemberV:
		return "v"
	default:
		return "unknown"
	}
}

// Port is the external event producer: a file chain, a network socket,
// or a spawned unpacker process, abstracted behind a pull interface.
// Concrete sources are out of this module's scope.
type Port interface {
	// Fetch pulls one event into the background buffer. It returns false
	// on end-of-stream (not an error — streaming sources may reappear
	// later, so the ingest thread keeps retrying rather than exiting).
	Fetch() (bool, error)

	// Buffer commits the fetched event into the foreground slot, making
	// it visible to GetData.
	Buffer()

	// GetData returns the scalar buffer bound to signalID and the number
	// of valid leading entries in it. Signals missing from the current
	// event return (nil, 0): they are silently treated as empty for that
	// event.
	GetData(signalID int) ([]value.Scalar, int)

	// BindSignal registers one member stream of a signal. Called once per
	// signal, per member, by the Input implementation's constructor.
	// typ must be an integer type for MemberID/MemberEnd.
	BindSignal(name string, kind MemberKind, signalID int, typ value.Type)

	// UnbindSignals releases all signal bindings, called on Input
	// shutdown.
	UnbindSignals()
}
