package graph

import (
	"github.com/opendaq/evmon/input"
	"github.com/opendaq/evmon/value"
)

// Shape selects a Signal leaf's buffer layout.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeSingleHit
	ShapeMultiHit
)

// Signal is the leaf node that copies Input-port buffers into a Value of
// the declared shape and type, dropping NaN/Inf on float types.
type Signal struct {
	nodeBase
	port  input.Port
	shape Shape
	typ   value.Type

	idSignal, endSignal, vSignal int

	out value.Value
}

// NewSignal builds a Signal leaf. idSignal/endSignal are ignored for
// ShapeScalar; endSignal is ignored for ShapeSingleHit.
func NewSignal(loc string, port input.Port, shape Shape, typ value.Type, idSignal, endSignal, vSignal int) *Signal {
	return &Signal{
		nodeBase:  newNodeBase(loc),
		port:      port,
		shape:     shape,
		typ:       typ,
		idSignal:  idSignal,
		endSignal: endSignal,
		vSignal:   vSignal,
	}
}

func (s *Signal) Output(string) *value.Value { return &s.out }

func (s *Signal) Process(eventID uint64) {
	if s.alreadyRan(eventID) {
		return
	}
	s.out.Clear()
	s.out.MustSetType(s.typ)

	vBuf, vN := s.port.GetData(s.vSignal)

	switch s.shape {
	case ShapeScalar:
		if vN == 0 {
			return
		}
		s.pushFiltered(0, vBuf[0])

	case ShapeSingleHit:
		idBuf, idN := s.port.GetData(s.idSignal)
		if idN != vN {
			warnLengthMismatch(s.loc, "single-hit id/v length mismatch")
			return
		}
		for i := 0; i < vN; i++ {
			channel := uint32(asIndex(idBuf[i]))
			if n := s.out.Len(); n > 0 && channel < s.out.GetID()[n-1] {
				log.WithField("source", s.loc).Warn("single-hit channel ids out of order, event skipped")
				s.out.Clear()
				return
			}
			s.pushFiltered(channel, vBuf[i])
		}

	case ShapeMultiHit:
		idBuf, idN := s.port.GetData(s.idSignal)
		endBuf, endN := s.port.GetData(s.endSignal)
		if idN != endN {
			warnLengthMismatch(s.loc, "multi-hit id/end length mismatch")
			return
		}
		prevEnd := 0
		for i := 0; i < idN; i++ {
			end := asIndex(endBuf[i])
			if end > vN || end < prevEnd {
				warnLengthMismatch(s.loc, "multi-hit end exceeds v buffer")
				s.out.Clear()
				s.out.MustSetType(s.typ)
				return
			}
			channel := uint32(asIndex(idBuf[i]))
			if n := s.out.Len(); n > 0 && channel < s.out.GetID()[n-1] {
				log.WithField("source", s.loc).Warn("multi-hit channel ids out of order, event skipped")
				s.out.Clear()
				return
			}
			for j := prevEnd; j < end; j++ {
				s.pushFiltered(channel, vBuf[j])
			}
			prevEnd = end
		}
	}
}

func (s *Signal) pushFiltered(channel uint32, v value.Scalar) {
	if s.typ == value.F64 && !v.IsFiniteFloat() {
		return
	}
	s.out.Push(channel, v)
}

// Alias is the identity node used for late-binding of parser identifiers.
type Alias struct {
	nodeBase
	child Node
}

// NewAlias wraps child, preserving its output unchanged.
func NewAlias(loc string, child Node) *Alias {
	return &Alias{nodeBase: newNodeBase(loc), child: child}
}

func (a *Alias) Process(eventID uint64) {
	if a.alreadyRan(eventID) {
		return
	}
	a.child.Process(eventID)
}

func (a *Alias) Output(name string) *value.Value { return a.child.Output(name) }

// SignalUser composes a Value from separate id/end/v streams. end is
// optional — when absent, each hit is its own group (one hit per
// channel, like ShapeSingleHit).
type SignalUser struct {
	nodeBase
	id, end, v Node
	out        value.Value
}

// NewSignalUser builds a SignalUser node; end may be nil.
func NewSignalUser(loc string, id, end, v Node) *SignalUser {
	return &SignalUser{nodeBase: newNodeBase(loc), id: id, end: end, v: v}
}

func (s *SignalUser) Output(string) *value.Value { return &s.out }

func (s *SignalUser) Process(eventID uint64) {
	if s.alreadyRan(eventID) {
		return
	}
	s.id.Process(eventID)
	s.v.Process(eventID)
	idVal := s.id.Output("")
	vVal := s.v.Output("")

	s.out.Clear()
	s.out.MustSetType(vVal.GetType())

	idV := idVal.GetV()

	if s.end != nil {
		s.end.Process(eventID)
		endVal := s.end.Output("")
		endV := endVal.GetV()
		if len(idV) != len(endV) {
			warnLengthMismatch(s.loc, "SignalUser id/end length mismatch")
			return
		}
		prev := 0
		for i := range idV {
			channel := uint32(asIndex(idV[i]))
			end := asIndex(endV[i])
			if end > len(vVal.GetV()) || end < prev {
				warnLengthMismatch(s.loc, "SignalUser end exceeds v buffer")
				return
			}
			for j := prev; j < end; j++ {
				s.out.Push(channel, vVal.GetV()[j])
			}
			prev = end
		}
		return
	}

	vv := vVal.GetV()
	if len(idV) != len(vv) {
		warnLengthMismatch(s.loc, "SignalUser id/v length mismatch")
		return
	}
	for i := range idV {
		s.out.Push(uint32(asIndex(idV[i])), vv[i])
	}
}

// Member projects a sub-stream of a compound signal identified by a
// dotted suffix; the suffix addressing itself is a thin
// pass-through since the compound decomposition already happened at
// Signal-bind time — Member exists as a distinct node so the graph
// builder can dedupe and name the projection independently of its
// parent.
type Member struct {
	nodeBase
	parent Node
	suffix string
}

// NewMember projects suffix from parent's output.
func NewMember(loc string, parent Node, suffix string) *Member {
	return &Member{nodeBase: newNodeBase(loc), parent: parent, suffix: suffix}
}

func (m *Member) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	m.parent.Process(eventID)
}

func (m *Member) Output(string) *value.Value { return m.parent.Output(m.suffix) }

// MemberSuffix reports the suffix this Member projects, for diagnostics.
func (m *Member) MemberSuffix() string { return m.suffix }
