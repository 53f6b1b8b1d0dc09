package graph

import (
	"sort"

	"github.com/opendaq/evmon/value"
)

// Cluster greedily merges consecutive channel ids into groups and emits,
// per group, a centre-of-gravity (weighted by hit value) and its
// fractional part. Groups are ranked by descending summed energy
// internally, but pushed into the output Values in ascending
// centre-of-gravity channel order, since Value requires non-decreasing
// channel ids.
type Cluster struct {
	nodeBase
	src    Node
	outClu value.Value
	outEta value.Value
}

// NewCluster builds a Cluster node.
func NewCluster(loc string, src Node) *Cluster {
	return &Cluster{nodeBase: newNodeBase(loc), src: src}
}

func (c *Cluster) Output(name string) *value.Value {
	if name == "eta" {
		return &c.outEta
	}
	return &c.outClu
}

type clusterGroup struct {
	firstChannel uint32
	sum          float64
	weightedSum  float64
}

func (c *Cluster) Process(eventID uint64) {
	if c.alreadyRan(eventID) {
		return
	}
	c.src.Process(eventID)
	src := c.src.Output("")

	c.outClu.Clear()
	c.outClu.MustSetType(value.F64)
	c.outEta.Clear()
	c.outEta.MustSetType(value.F64)

	var groups []clusterGroup
	var prevChannel uint32
	for i := 0; i < src.Len(); i++ {
		channel := src.GetID()[i]
		lo, hi := src.GroupRange(i)
		sum := 0.0
		for j := lo; j < hi; j++ {
			sum += src.GetF64(j, false)
		}
		if len(groups) > 0 && channel == prevChannel+1 {
			g := &groups[len(groups)-1]
			g.sum += sum
			g.weightedSum += float64(channel) * sum
		} else {
			groups = append(groups, clusterGroup{
				firstChannel: channel,
				sum:          sum,
				weightedSum:  float64(channel) * sum,
			})
		}
		prevChannel = channel
	}

	// Rank by descending summed energy first, matching the grouping's
	// natural significance order; nothing downstream consumes this
	// order directly, but it is kept for clarity and potential reuse.
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].sum > groups[j].sum })

	type clusterPoint struct {
		channel uint32
		sum     float64
		eta     float64
	}
	points := make([]clusterPoint, len(groups))
	for i, g := range groups {
		cog := g.weightedSum / g.sum
		points[i] = clusterPoint{
			channel: uint32(int64(cog)),
			sum:     g.sum,
			eta:     cog - float64(int64(cog)),
		}
	}

	// Value.Push requires non-decreasing channel ids, so the
	// energy-ranked points are re-sorted by channel before pushing.
	sort.SliceStable(points, func(i, j int) bool { return points[i].channel < points[j].channel })
	for _, p := range points {
		pushFiniteF64(&c.outClu, p.channel, p.sum)
		pushFiniteF64(&c.outEta, p.channel, p.eta)
	}
}

// Max keeps, per channel, the single maximum-valued hit.
type Max struct {
	nodeBase
	src Node
	out value.Value
}

// NewMax builds a Max node.
func NewMax(loc string, src Node) *Max {
	return &Max{nodeBase: newNodeBase(loc), src: src}
}

func (m *Max) Output(string) *value.Value { return &m.out }

func (m *Max) Process(eventID uint64) {
	if m.alreadyRan(eventID) {
		return
	}
	m.src.Process(eventID)
	src := m.src.Output("")

	m.out.Clear()
	m.out.MustSetType(src.GetType())
	for i := 0; i < src.Len(); i++ {
		channel := src.GetID()[i]
		lo, hi := src.GroupRange(i)
		best := src.GetV()[lo]
		for j := lo + 1; j < hi; j++ {
			if src.GetV()[j].F64Of(true) > best.F64Of(true) {
				best = src.GetV()[j]
			}
		}
		m.out.Push(channel, best)
	}
}

// Length emits the hit count per channel, as u64.
type Length struct {
	nodeBase
	src Node
	out value.Value
}

// NewLength builds a Length node.
func NewLength(loc string, src Node) *Length {
	return &Length{nodeBase: newNodeBase(loc), src: src}
}

func (l *Length) Output(string) *value.Value { return &l.out }

func (l *Length) Process(eventID uint64) {
	if l.alreadyRan(eventID) {
		return
	}
	l.src.Process(eventID)
	src := l.src.Output("")

	l.out.Clear()
	l.out.MustSetType(value.U64)
	for i := 0; i < src.Len(); i++ {
		channel := src.GetID()[i]
		lo, hi := src.GroupRange(i)
		l.out.Push(channel, value.U64Scalar(uint64(hi-lo)))
	}
}

// DefaultPedestalWindow is the default number of calibration events
// Pedestal averages over before switching to steady-state subtraction.
const DefaultPedestalWindow = 10000

// Pedestal builds a per-channel running mean over a calibration window
// (or over events a trigger-pattern signal selects as pedestal triggers)
// and subtracts it from every subsequent hit.
type Pedestal struct {
	nodeBase
	src    Node
	cutoff float64
	tpat   Node
	window int

	sum   map[uint32]float64
	count map[uint32]int
	seen  int

	outCorrected value.Value
	outPedestal  value.Value
}

// NewPedestal builds a Pedestal node. tpat may be nil, in which case the
// first `window` events are used for calibration unconditionally.
func NewPedestal(loc string, src Node, cutoff float64, tpat Node, window int) *Pedestal {
	if window <= 0 {
		window = DefaultPedestalWindow
	}
	return &Pedestal{
		nodeBase: newNodeBase(loc),
		src:      src,
		cutoff:   cutoff,
		tpat:     tpat,
		window:   window,
		sum:      make(map[uint32]float64),
		count:    make(map[uint32]int),
	}
}

func (p *Pedestal) Output(name string) *value.Value {
	if name == "pedestal" {
		return &p.outPedestal
	}
	return &p.outCorrected
}

func (p *Pedestal) Process(eventID uint64) {
	if p.alreadyRan(eventID) {
		return
	}
	p.src.Process(eventID)
	src := p.src.Output("")

	isCalibration := p.seen < p.window
	if p.tpat != nil {
		p.tpat.Process(eventID)
		tpat := p.tpat.Output("")
		isCalibration = tpat.Len() > 0
	}
	p.seen++

	p.outCorrected.Clear()
	p.outCorrected.MustSetType(value.F64)
	p.outPedestal.Clear()
	p.outPedestal.MustSetType(value.F64)

	for i := 0; i < src.Len(); i++ {
		channel := src.GetID()[i]
		lo, hi := src.GroupRange(i)
		mean := 0.0
		if p.count[channel] > 0 {
			mean = p.sum[channel] / float64(p.count[channel])
		}
		pushFiniteF64(&p.outPedestal, channel, mean)

		for j := lo; j < hi; j++ {
			v := src.GetF64(j, false)
			if isCalibration {
				p.sum[channel] += v
				p.count[channel]++
				continue
			}
			corrected := v - mean
			if absF64(corrected) <= p.cutoff {
				continue
			}
			pushFiniteF64(&p.outCorrected, channel, corrected)
		}
	}
}

func absF64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
