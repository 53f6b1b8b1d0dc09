// Package value implements the sparse multi-hit signal vector that flows
// between graph nodes: a tagged scalar union and the Value triple built
// from it.
package value

import (
	"fmt"
	"math"
)

// Type tags the concrete representation a Value (or a bare Scalar) holds.
type Type int

const (
	// None marks a Scalar or Value that has never been assigned a concrete
	// type. It is invalid to read from.
	None Type = iota
	U64
	I64
	F64
)

func (t Type) String() string {
	switch t {
	case U64:
		return "u64"
	case I64:
		return "i64"
	case F64:
		return "f64"
	default:
		return "none"
	}
}

// Scalar is a tagged union over {u64, i64, f64}.
type Scalar struct {
	Type Type
	U64  uint64
	I64  int64
	F64  float64
}

// F64Of returns the scalar widened to float64. asSigned reinterprets a
// U64's bit pattern as int64 before widening; it has no effect on other
// types.
func (s Scalar) F64Of(asSigned bool) float64 {
	switch s.Type {
	case U64:
		if asSigned {
			return float64(int64(s.U64))
		}
		return float64(s.U64)
	case I64:
		return float64(s.I64)
	case F64:
		return s.F64
	default:
		panic(fmt.Sprintf("value: F64Of on untyped scalar"))
	}
}

// IsFiniteFloat reports whether a float-typed scalar is neither NaN nor
// infinite. It is always true for integer types.
func (s Scalar) IsFiniteFloat() bool {
	if s.Type != F64 {
		return true
	}
	return !math.IsNaN(s.F64) && !math.IsInf(s.F64, 0)
}

// U64Scalar, I64Scalar and F64Scalar are convenience constructors.
func U64Scalar(v uint64) Scalar { return Scalar{Type: U64, U64: v} }
func I64Scalar(v int64) Scalar  { return Scalar{Type: I64, I64: v} }
func F64Scalar(v float64) Scalar { return Scalar{Type: F64, F64: v} }

// Value is the flow datum passed between graph nodes: a run-length
// encoded sparse multi-hit vector keyed by channel id.
//
// Invariants: ID is strictly increasing; End is non-decreasing with
// End[len-1] == len(V); Type, once set to a concrete tag, never changes.
type Value struct {
	typ Type
	ID  []uint32
	End []uint32
	V   []Scalar
}

// TypeMismatchError is returned by SetType when called with a different
// concrete type after one was already fixed.
type TypeMismatchError struct {
	Have, Want Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value: type already set to %s, cannot change to %s", e.Have, e.Want)
}

// Clear resets the ID/End/V vectors but preserves the declared Type.
func (v *Value) Clear() {
	v.ID = v.ID[:0]
	v.End = v.End[:0]
	v.V = v.V[:0]
}

// GetType returns the Value's declared concrete type, or None if never set.
func (v *Value) GetType() Type { return v.typ }

// SetType fixes the concrete type of this Value. It may be called
// repeatedly with the same type; calling it with a different concrete
// type after one was already set returns a *TypeMismatchError.
func (v *Value) SetType(t Type) error {
	if v.typ != None && t != None && t != v.typ {
		return &TypeMismatchError{Have: v.typ, Want: t}
	}
	if v.typ == None {
		v.typ = t
	}
	return nil
}

// MustSetType is SetType but panics on mismatch; used by call sites that
// have already validated the type is fixed for the node's lifetime.
func (v *Value) MustSetType(t Type) {
	if err := v.SetType(t); err != nil {
		panic(err)
	}
}

// GetID returns the per-group channel ids.
func (v *Value) GetID() []uint32 { return v.ID }

// GetEnd returns the per-group exclusive end offsets into V.
func (v *Value) GetEnd() []uint32 { return v.End }

// GetV returns the flat multi-hit sequence.
func (v *Value) GetV() []Scalar { return v.V }

// GetF64 widens V[i] to float64, reinterpreting a U64's bits as signed
// when asSigned is true.
func (v *Value) GetF64(i int, asSigned bool) float64 {
	return v.V[i].F64Of(asSigned)
}

// Len returns the number of channel groups currently held.
func (v *Value) Len() int { return len(v.ID) }

// GroupRange returns the half-open [start, end) slice range of V holding
// the i-th group's hits.
func (v *Value) GroupRange(i int) (start, end int) {
	if i == 0 {
		return 0, int(v.End[0])
	}
	return int(v.End[i-1]), int(v.End[i])
}

// Push appends (channel, scalar). If channel equals the last appended
// channel it extends that group; otherwise it opens a new group. Channels
// must be pushed in non-decreasing order; Push panics on a decrease since
// that indicates a node bug (the Signal leaf skips an input event whose
// channel ids decrease, before it reaches Push).
func (v *Value) Push(channel uint32, s Scalar) {
	if err := v.SetType(s.Type); err != nil {
		panic(err)
	}
	if len(v.ID) > 0 {
		last := v.ID[len(v.ID)-1]
		if channel < last {
			panic(fmt.Sprintf("value: channel %d pushed after %d (non-monotonic)", channel, last))
		}
		if channel == last {
			v.End[len(v.End)-1]++
			v.V = append(v.V, s)
			return
		}
	}
	v.ID = append(v.ID, channel)
	prevEnd := uint32(0)
	if len(v.End) > 0 {
		prevEnd = v.End[len(v.End)-1]
	}
	v.End = append(v.End, prevEnd+1)
	v.V = append(v.V, s)
}

// Valid reports whether the well-formedness invariants hold: ID strictly
// increasing, End non-decreasing with End[last] == len(V).
func (v *Value) Valid() bool {
	for i := 1; i < len(v.ID); i++ {
		if v.ID[i] <= v.ID[i-1] {
			return false
		}
	}
	for i := 1; i < len(v.End); i++ {
		if v.End[i] < v.End[i-1] {
			return false
		}
	}
	if len(v.End) > 0 && int(v.End[len(v.End)-1]) != len(v.V) {
		return false
	}
	return len(v.ID) == len(v.End)
}
