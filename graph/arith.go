package graph

import (
	"math"

	"github.com/opendaq/evmon/input"
	"github.com/opendaq/evmon/value"
)

// MExprOp selects MExpr's arithmetic or transcendental function.
type MExprOp int

const (
	OpAdd MExprOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpCos
	OpSin
	OpTan
	OpAcos
	OpAsin
	OpAtan
	OpSqrt
	OpExp
	OpLog
	OpAbs
)

func (op MExprOp) binary() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		return true
	default:
		return false
	}
}

func (op MExprOp) applyBinary(l, r float64) float64 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		return l / r
	case OpPow:
		return math.Pow(l, r)
	default:
		panic("graph: applyBinary on non-binary op")
	}
}

func (op MExprOp) applyUnary(v float64) float64 {
	switch op {
	case OpCos:
		return math.Cos(v)
	case OpSin:
		return math.Sin(v)
	case OpTan:
		return math.Tan(v)
	case OpAcos:
		return math.Acos(v)
	case OpAsin:
		return math.Asin(v)
	case OpAtan:
		return math.Atan(v)
	case OpSqrt:
		return math.Sqrt(v)
	case OpExp:
		return math.Exp(v)
	case OpLog:
		return math.Log(v)
	case OpAbs:
		return math.Abs(v)
	default:
		panic("graph: applyUnary on non-unary op")
	}
}

// MExpr is the MExpr node: binary/unary arithmetic with
// channel-aligned pairing, a constant standing in for a missing operand,
// and NaN/Inf-dropping output.
type MExpr struct {
	nodeBase
	left, right Node
	d           float64
	op          MExprOp
	out         value.Value
}

// NewMExpr builds an MExpr node. Either of left/right may be nil; d is
// substituted for the missing side.
func NewMExpr(loc string, left, right Node, d float64, op MExprOp) *MExpr {
	return &MExpr{nodeBase: newNodeBase(loc), left: left, right: right, d: d, op: op}
}

func (m *MExpr) Output(string) *value.Value { return &m.out }

func (m *MExpr) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	m.out.Clear()
	m.out.MustSetType(value.F64)

	if !m.op.binary() {
		src := m.left
		if src == nil {
			src = m.right
		}
		src.Process(eventID)
		v := src.Output("")
		for i := 0; i < v.Len(); i++ {
			lo, hi := v.GroupRange(i)
			channel := v.GetID()[i]
			for j := lo; j < hi; j++ {
				pushFiniteF64(&m.out, channel, m.op.applyUnary(v.GetF64(j, false)))
			}
		}
		return
	}

	switch {
	case m.left != nil && m.right != nil:
		m.left.Process(eventID)
		m.right.Process(eventID)
		l, r := m.left.Output(""), m.right.Output("")
		for _, p := range pairChannels(l, r) {
			n := min(p.aHi-p.aLo, p.bHi-p.bLo)
			for k := 0; k < n; k++ {
				lv := l.GetF64(p.aLo+k, false)
				rv := r.GetF64(p.bLo+k, false)
				pushFiniteF64(&m.out, p.channel, m.op.applyBinary(lv, rv))
			}
		}
	case m.left != nil:
		m.left.Process(eventID)
		l := m.left.Output("")
		for i := 0; i < l.Len(); i++ {
			lo, hi := l.GroupRange(i)
			channel := l.GetID()[i]
			for j := lo; j < hi; j++ {
				pushFiniteF64(&m.out, channel, m.op.applyBinary(l.GetF64(j, false), m.d))
			}
		}
	case m.right != nil:
		m.right.Process(eventID)
		r := m.right.Output("")
		for i := 0; i < r.Len(); i++ {
			lo, hi := r.GroupRange(i)
			channel := r.GetID()[i]
			for j := lo; j < hi; j++ {
				pushFiniteF64(&m.out, channel, m.op.applyBinary(m.d, r.GetF64(j, false)))
			}
		}
	}
}

// MeanArith computes a per-channel mean: the two-argument form takes
// the per-channel arithmetic mean of paired hits; the one-argument form
// reduces across channels at the same hit index, emitting one output hit
// per shared index position.
type MeanArith struct {
	nodeBase
	left, right Node
	out         value.Value
}

// NewMeanArith builds a MeanArith node; right may be nil for the
// one-argument reduction form.
func NewMeanArith(loc string, left, right Node) *MeanArith {
	return &MeanArith{nodeBase: newNodeBase(loc), left: left, right: right}
}

func (m *MeanArith) Output(string) *value.Value { return &m.out }

func (m *MeanArith) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	meanReduce(&m.out, m.left, m.right, eventID, arithMean, arithReduce)
}

// MeanGeom is MeanArith's geometric-mean counterpart.
type MeanGeom struct {
	nodeBase
	left, right Node
	out         value.Value
}

// NewMeanGeom builds a MeanGeom node; right may be nil.
func NewMeanGeom(loc string, left, right Node) *MeanGeom {
	return &MeanGeom{nodeBase: newNodeBase(loc), left: left, right: right}
}

func (m *MeanGeom) Output(string) *value.Value { return &m.out }

func (m *MeanGeom) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	meanReduce(&m.out, m.left, m.right, eventID, geomMean, geomReduce)
}

func arithMean(a, b float64) float64 { return (a + b) / 2 }
func geomMean(a, b float64) float64 {
	if a < 0 || b < 0 {
		return math.NaN()
	}
	return math.Sqrt(a * b)
}

func arithReduce(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func geomReduce(values []float64) float64 {
	product := 1.0
	for _, v := range values {
		if v < 0 {
			return math.NaN()
		}
		product *= v
	}
	return math.Pow(product, 1/float64(len(values)))
}

// meanReduce implements both forms of MeanArith/MeanGeom: the
// two-argument channel-aligned pairwise combine, and the one-argument
// cross-channel reduction at matching hit indices.
func meanReduce(out *value.Value, left, right Node, eventID uint64, combinePair func(a, b float64) float64, reduceAll func([]float64) float64) {
	out.Clear()
	out.MustSetType(value.F64)

	if right != nil {
		left.Process(eventID)
		right.Process(eventID)
		l, r := left.Output(""), right.Output("")
		for _, p := range pairChannels(l, r) {
			n := min(p.aHi-p.aLo, p.bHi-p.bLo)
			for k := 0; k < n; k++ {
				pushFiniteF64(out, p.channel, combinePair(l.GetF64(p.aLo+k, false), r.GetF64(p.bLo+k, false)))
			}
		}
		return
	}

	left.Process(eventID)
	l := left.Output("")
	maxHits := 0
	for i := 0; i < l.Len(); i++ {
		lo, hi := l.GroupRange(i)
		if hi-lo > maxHits {
			maxHits = hi - lo
		}
	}
	values := make([]float64, 0, l.Len())
	for hitIdx := 0; hitIdx < maxHits; hitIdx++ {
		values = values[:0]
		for i := 0; i < l.Len(); i++ {
			lo, hi := l.GroupRange(i)
			if lo+hitIdx < hi {
				values = append(values, l.GetF64(lo+hitIdx, false))
			}
		}
		if len(values) == 0 {
			continue
		}
		pushFiniteF64(out, uint32(hitIdx), reduceAll(values))
	}
}

// CoarseFine computes coarse - fine*(range/maxFine).
type CoarseFine struct {
	nodeBase
	coarse, fine Node
	rangeSpan    float64
	maxFine      float64
	out          value.Value
}

// NewCoarseFine builds a CoarseFine node.
func NewCoarseFine(loc string, coarse, fine Node, rangeSpan, maxFine float64) *CoarseFine {
	return &CoarseFine{nodeBase: newNodeBase(loc), coarse: coarse, fine: fine, rangeSpan: rangeSpan, maxFine: maxFine}
}

func (c *CoarseFine) Output(string) *value.Value { return &c.out }

func (c *CoarseFine) Process(eventID uint64) {
	if c.alreadyRan(eventID) {
		return
	}
	c.coarse.Process(eventID)
	c.fine.Process(eventID)
	coarse, fine := c.coarse.Output(""), c.fine.Output("")

	c.out.Clear()
	c.out.MustSetType(value.F64)

	scale := c.rangeSpan / c.maxFine
	for _, p := range pairChannels(coarse, fine) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		for k := 0; k < n; k++ {
			v := coarse.GetF64(p.aLo+k, false) - fine.GetF64(p.bLo+k, false)*scale
			pushFiniteF64(&c.out, p.channel, v)
		}
	}
}

// SubMod computes ((l - r + 1.5*range) mod range) -
// range/2, a wraparound-safe difference used for time-of-flight
// differences over a periodic range.
type SubMod struct {
	nodeBase
	left, right Node
	rangeSpan   float64
	out         value.Value
}

// NewSubMod builds a SubMod node.
func NewSubMod(loc string, left, right Node, rangeSpan float64) *SubMod {
	return &SubMod{nodeBase: newNodeBase(loc), left: left, right: right, rangeSpan: rangeSpan}
}

func (s *SubMod) Output(string) *value.Value { return &s.out }

func (s *SubMod) Process(eventID uint64) {
	if s.alreadyRan(eventID) {
		return
	}
	s.left.Process(eventID)
	s.right.Process(eventID)
	l, r := s.left.Output(""), s.right.Output("")

	s.out.Clear()
	s.out.MustSetType(value.F64)

	for _, p := range pairChannels(l, r) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		for k := 0; k < n; k++ {
			v := subMod(l.GetF64(p.aLo+k, false), r.GetF64(p.bLo+k, false), s.rangeSpan)
			pushFiniteF64(&s.out, p.channel, v)
		}
	}
}

func subMod(l, r, rangeSpan float64) float64 {
	m := math.Mod(l-r+1.5*rangeSpan, rangeSpan)
	if m < 0 {
		m += rangeSpan
	}
	return m - rangeSpan/2
}

// TrigMap is SubMod with a per-channel offset applied to the right
// operand, loaded from an external table.
type TrigMap struct {
	nodeBase
	left, right Node
	rangeSpan   float64
	table       *input.TrigMap
	out         value.Value
}

// NewTrigMap builds a TrigMap node.
func NewTrigMap(loc string, left, right Node, rangeSpan float64, table *input.TrigMap) *TrigMap {
	return &TrigMap{nodeBase: newNodeBase(loc), left: left, right: right, rangeSpan: rangeSpan, table: table}
}

func (t *TrigMap) Output(string) *value.Value { return &t.out }

func (t *TrigMap) Process(eventID uint64) {
	if t.alreadyRan(eventID) {
		return
	}
	t.left.Process(eventID)
	t.right.Process(eventID)
	l, r := t.left.Output(""), t.right.Output("")

	t.out.Clear()
	t.out.MustSetType(value.F64)

	for _, p := range pairChannels(l, r) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		offset := t.table.Offset(p.channel)
		for k := 0; k < n; k++ {
			v := subMod(l.GetF64(p.aLo+k, false), r.GetF64(p.bLo+k, false)+offset, t.rangeSpan)
			pushFiniteF64(&t.out, p.channel, v)
		}
	}
}

// Floor computes pointwise floor on an f64 stream.
type Floor struct {
	nodeBase
	src Node
	out value.Value
}

// NewFloor builds a Floor node.
func NewFloor(loc string, src Node) *Floor {
	return &Floor{nodeBase: newNodeBase(loc), src: src}
}

func (f *Floor) Output(string) *value.Value { return &f.out }

func (f *Floor) Process(eventID uint64) {
	if f.alreadyRan(eventID) {
		return
	}
	f.src.Process(eventID)
	src := f.src.Output("")

	f.out.Clear()
	f.out.MustSetType(value.F64)
	for i := 0; i < src.Len(); i++ {
		lo, hi := src.GroupRange(i)
		channel := src.GetID()[i]
		for j := lo; j < hi; j++ {
			pushFiniteF64(&f.out, channel, math.Floor(src.GetF64(j, false)))
		}
	}
}
