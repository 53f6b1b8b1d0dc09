package graph

import (
	"math"

	"github.com/opendaq/evmon/value"
)

// Merge merges same-type streams by channel, preserving per-channel hit
// order from the source list.
type Merge struct {
	nodeBase
	srcs []Node
	out  value.Value
}

// NewMerge builds a Merge node over srcs, in declared argument order.
func NewMerge(loc string, srcs []Node) *Merge {
	return &Merge{nodeBase: newNodeBase(loc), srcs: srcs}
}

func (m *Merge) Output(string) *value.Value { return &m.out }

func (m *Merge) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	for _, s := range m.srcs {
		s.Process(eventID)
	}
	vals := make([]*value.Value, len(m.srcs))
	for i, s := range m.srcs {
		vals[i] = s.Output("")
	}

	m.out.Clear()
	typ := value.None
	for _, v := range vals {
		typ = sameType(m.loc, typ, v.GetType())
	}
	if typ != value.None {
		m.out.MustSetType(typ)
	}

	cursors := make([]int, len(vals))
	for {
		channel, any := uint32(0), false
		for i, v := range vals {
			id := v.GetID()
			if cursors[i] < len(id) {
				if !any || id[cursors[i]] < channel {
					channel = id[cursors[i]]
				}
				any = true
			}
		}
		if !any {
			break
		}
		for i, v := range vals {
			id := v.GetID()
			if cursors[i] >= len(id) || id[cursors[i]] != channel {
				continue
			}
			lo, hi := v.GroupRange(cursors[i])
			for j := lo; j < hi; j++ {
				m.out.Push(channel, v.GetV()[j])
			}
			cursors[i]++
		}
	}
}

// BitField describes one input's placement in a Bitfield pack.
type BitField struct {
	Src   Node
	Width uint32
}

// Bitfield packs sub-values LSB-first into one integer per event; it
// panics if a sub-value exceeds its declared width, since that is a
// construction-time-discoverable configuration bug surfacing at first
// occurrence.
type Bitfield struct {
	nodeBase
	fields []BitField
	out    value.Value
}

// NewBitfield builds a Bitfield node.
func NewBitfield(loc string, fields []BitField) *Bitfield {
	return &Bitfield{nodeBase: newNodeBase(loc), fields: fields}
}

func (b *Bitfield) Output(string) *value.Value { return &b.out }

func (b *Bitfield) Process(eventID uint64) {
	if b.alreadyRan(eventID) {
		return
	}
	for _, f := range b.fields {
		f.Src.Process(eventID)
	}

	b.out.Clear()
	b.out.MustSetType(value.U64)

	shift := uint32(0)
	packed := uint64(0)
	any := false
	for _, f := range b.fields {
		v := f.Src.Output("")
		if v.Len() > 0 {
			lo, _ := v.GroupRange(0)
			raw := v.GetV()[lo].U64
			if v.GetV()[lo].Type != value.U64 {
				raw = uint64(v.GetV()[lo].I64)
			}
			limit := uint64(1) << f.Width
			if raw >= limit {
				panic(&valueOverflowError{loc: b.loc, width: f.Width, value: raw})
			}
			packed |= raw << shift
			any = true
		}
		shift += f.Width
	}
	if any {
		b.out.Push(0, value.U64Scalar(packed))
	}
}

type valueOverflowError struct {
	loc   string
	width uint32
	value uint64
}

func (e *valueOverflowError) Error() string {
	return e.loc + ": bitfield value exceeds declared width"
}

// MatchId emits pairs of matching channels with a left-skewed tie-break:
// when both sides carry multiple hits for the same channel, every left
// hit is emitted against the paired right hits for that channel.
type MatchId struct {
	nodeBase
	left, right Node
	out         value.Value
}

// NewMatchId builds a MatchId node.
func NewMatchId(loc string, left, right Node) *MatchId {
	return &MatchId{nodeBase: newNodeBase(loc), left: left, right: right}
}

func (m *MatchId) Output(string) *value.Value { return &m.out }

func (m *MatchId) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	m.left.Process(eventID)
	m.right.Process(eventID)
	l, r := m.left.Output(""), m.right.Output("")

	m.out.Clear()
	m.out.MustSetType(sameType(m.loc, l.GetType(), r.GetType()))

	for _, p := range pairChannels(l, r) {
		// Left-skewed tie-break: every left hit for a matched channel is
		// emitted, regardless of how many right hits are available to
		// pair it against.
		for k := p.aLo; k < p.aHi; k++ {
			m.out.Push(p.channel, l.GetV()[k])
		}
	}
}

// MatchValue greedily pairs left/right hits within cutoff of each other
// per channel, emitting the left value of each accepted pair.
type MatchValue struct {
	nodeBase
	left, right Node
	cutoff      float64
	out         value.Value
}

// NewMatchValue builds a MatchValue node.
func NewMatchValue(loc string, left, right Node, cutoff float64) *MatchValue {
	return &MatchValue{nodeBase: newNodeBase(loc), left: left, right: right, cutoff: cutoff}
}

func (m *MatchValue) Output(string) *value.Value { return &m.out }

func (m *MatchValue) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	m.left.Process(eventID)
	m.right.Process(eventID)
	l, r := m.left.Output(""), m.right.Output("")

	m.out.Clear()
	m.out.MustSetType(value.F64)

	for _, p := range pairChannels(l, r) {
		used := make([]bool, p.bHi-p.bLo)
		for li := p.aLo; li < p.aHi; li++ {
			lv := l.GetF64(li, false)
			best, bestDiff := -1, math.Inf(1)
			for ri := p.bLo; ri < p.bHi; ri++ {
				if used[ri-p.bLo] {
					continue
				}
				diff := math.Abs(lv - r.GetF64(ri, false))
				if diff <= m.cutoff && diff < bestDiff {
					best, bestDiff = ri, diff
				}
			}
			if best >= 0 {
				used[best-p.bLo] = true
				pushFiniteF64(&m.out, p.channel, lv)
			}
		}
	}
}

// ToT pairs leading/trailing edges per channel within range and emits
// the pulse width trailing-minus-leading.
type ToT struct {
	nodeBase
	leading, trailing Node
	rangeSpan         float64
	out               value.Value
}

// NewToT builds a ToT node.
func NewToT(loc string, leading, trailing Node, rangeSpan float64) *ToT {
	return &ToT{nodeBase: newNodeBase(loc), leading: leading, trailing: trailing, rangeSpan: rangeSpan}
}

func (t *ToT) Output(string) *value.Value { return &t.out }

func (t *ToT) Process(eventID uint64) {
	if t.alreadyRan(eventID) {
		return
	}
	t.leading.Process(eventID)
	t.trailing.Process(eventID)
	lead, trail := t.leading.Output(""), t.trailing.Output("")

	t.out.Clear()
	t.out.MustSetType(value.F64)

	for _, p := range pairChannels(lead, trail) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		for k := 0; k < n; k++ {
			l := lead.GetF64(p.aLo+k, false)
			tr := trail.GetF64(p.bLo+k, false)
			width := tr - l
			if width < 0 {
				width += t.rangeSpan
			}
			pushFiniteF64(&t.out, p.channel, width)
		}
	}
}
