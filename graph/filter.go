package graph

import "github.com/opendaq/evmon/value"

// RangeCondition is one of FilterRange's per-channel gates: nodeⱼ ∈
// [lower, upper] with independently open/closed bounds.
type RangeCondition struct {
	Src                  Node
	Lower, Upper         float64
	LowerOpen, UpperOpen bool
}

func (c *RangeCondition) holds(v float64) bool {
	if c.LowerOpen {
		if v <= c.Lower {
			return false
		}
	} else if v < c.Lower {
		return false
	}
	if c.UpperOpen {
		if v >= c.Upper {
			return false
		}
	} else if v > c.Upper {
		return false
	}
	return true
}

// FilterRange passes an argument node's channel through only if every
// condition's source node holds a value in range for that same channel.
type FilterRange struct {
	nodeBase
	args       []Node
	conditions []*RangeCondition
	out        value.Value
}

// NewFilterRange builds a FilterRange node over args, gated by
// conditions.
func NewFilterRange(loc string, args []Node, conditions []*RangeCondition) *FilterRange {
	return &FilterRange{nodeBase: newNodeBase(loc), args: args, conditions: conditions}
}

func (f *FilterRange) Output(string) *value.Value { return &f.out }

func (f *FilterRange) Process(eventID uint64) {
	if f.alreadyRan(eventID) {
		return
	}
	for _, a := range f.args {
		a.Process(eventID)
	}
	for _, c := range f.conditions {
		c.Src.Process(eventID)
	}

	f.out.Clear()
	if len(f.args) == 0 {
		return
	}
	primary := f.args[0].Output("")
	f.out.MustSetType(primary.GetType())

	for i := 0; i < primary.Len(); i++ {
		channel := primary.GetID()[i]
		if !f.passesAllConditions(channel) {
			continue
		}
		lo, hi := primary.GroupRange(i)
		for j := lo; j < hi; j++ {
			f.out.Push(channel, primary.GetV()[j])
		}
	}
}

func (f *FilterRange) passesAllConditions(channel uint32) bool {
	for _, c := range f.conditions {
		v, ok := singleValueAt(c.Src.Output(""), channel)
		if !ok || !c.holds(v) {
			return false
		}
	}
	return true
}

func singleValueAt(v *value.Value, channel uint32) (float64, bool) {
	id := v.GetID()
	lo, hi := 0, len(id)
	for lo < hi {
		mid := (lo + hi) / 2
		if id[mid] < channel {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(id) || id[lo] != channel {
		return 0, false
	}
	start, end := v.GroupRange(lo)
	if start >= end {
		return 0, false
	}
	return v.GetF64(start, false), true
}

// ZeroSuppress drops hits with |v| <= cutoff.
type ZeroSuppress struct {
	nodeBase
	src    Node
	cutoff float64
	out    value.Value
}

// NewZeroSuppress builds a ZeroSuppress node.
func NewZeroSuppress(loc string, src Node, cutoff float64) *ZeroSuppress {
	return &ZeroSuppress{nodeBase: newNodeBase(loc), src: src, cutoff: cutoff}
}

func (z *ZeroSuppress) Output(string) *value.Value { return &z.out }

func (z *ZeroSuppress) Process(eventID uint64) {
	if z.alreadyRan(eventID) {
		return
	}
	z.src.Process(eventID)
	src := z.src.Output("")

	z.out.Clear()
	z.out.MustSetType(src.GetType())
	for i := 0; i < src.Len(); i++ {
		channel := src.GetID()[i]
		lo, hi := src.GroupRange(i)
		for j := lo; j < hi; j++ {
			v := src.GetV()[j]
			if absScalar(v) <= z.cutoff {
				continue
			}
			z.out.Push(channel, v)
		}
	}
}

func absScalar(s value.Scalar) float64 {
	f := s.F64Of(true)
	if f < 0 {
		return -f
	}
	return f
}

// Tpat passes a channel through iff (v & mask) != 0. Applies
// only to integer-typed sources.
type Tpat struct {
	nodeBase
	src  Node
	mask uint64
	out  value.Value
}

// NewTpat builds a Tpat node.
func NewTpat(loc string, src Node, mask uint64) *Tpat {
	return &Tpat{nodeBase: newNodeBase(loc), src: src, mask: mask}
}

func (t *Tpat) Output(string) *value.Value { return &t.out }

func (t *Tpat) Process(eventID uint64) {
	if t.alreadyRan(eventID) {
		return
	}
	t.src.Process(eventID)
	src := t.src.Output("")

	t.out.Clear()
	t.out.MustSetType(src.GetType())
	for i := 0; i < src.Len(); i++ {
		channel := src.GetID()[i]
		lo, hi := src.GroupRange(i)
		for j := lo; j < hi; j++ {
			v := src.GetV()[j]
			bits := v.U64
			if v.Type != value.U64 {
				bits = uint64(v.I64)
			}
			if bits&t.mask != 0 {
				t.out.Push(channel, v)
			}
		}
	}
}

// SelectId retains channels in [first, last] inclusive.
type SelectId struct {
	nodeBase
	src         Node
	first, last uint32
	out         value.Value
}

// NewSelectId builds a SelectId node.
func NewSelectId(loc string, src Node, first, last uint32) *SelectId {
	return &SelectId{nodeBase: newNodeBase(loc), src: src, first: first, last: last}
}

func (s *SelectId) Output(string) *value.Value { return &s.out }

func (s *SelectId) Process(eventID uint64) {
	if s.alreadyRan(eventID) {
		return
	}
	s.src.Process(eventID)
	src := s.src.Output("")

	s.out.Clear()
	s.out.MustSetType(src.GetType())
	for i := 0; i < src.Len(); i++ {
		channel := src.GetID()[i]
		if channel < s.first || channel > s.last {
			continue
		}
		lo, hi := src.GroupRange(i)
		for j := lo; j < hi; j++ {
			s.out.Push(channel, src.GetV()[j])
		}
	}
}
