package graph

import (
	"math"
	"time"

	"github.com/opendaq/evmon/axis"
	"github.com/opendaq/evmon/cut"
	"github.com/opendaq/evmon/hist"
	"github.com/opendaq/evmon/value"
)

// CuttableSink is a terminal sink the graph evaluates in insertion order
// and that resets its cut-producer state at the start
// of every event.
type CuttableSink interface {
	Node
	Title() string
	ResetCutState()
}

// sinkCommon factors the axis-fitting plumbing shared by Hist1, Hist2 and
// Annular: an auto-ranging Range per axis, a hist.Store, the requested
// bin count and extents mode, and an optional upstream cut gate.
type sinkCommon struct {
	title         string
	store         *hist.Store
	requestedBins uint32
	mode          axis.Mode
	consumer      *cut.Consumer
	producer      *cut.Producer // nil if no cut is drawn on this sink
	now           func() time.Time

	lastFillTime  time.Time
	persistWindow time.Duration
}

func newSinkCommon(title string, requestedBins uint32, mode axis.Mode) sinkCommon {
	return sinkCommon{
		title:         title,
		requestedBins: requestedBins,
		mode:          mode,
		consumer:      cut.NewConsumer(),
		now:           time.Now,
	}
}

func (s *sinkCommon) Title() string { return s.title }

func (s *sinkCommon) ResetCutState() {
	if s.producer != nil {
		s.producer.Reset()
	}
}

// BindCutConsumer gates this sink by an upstream producer, resolved
// during the graph's late-resolution pass.
func (s *sinkCommon) BindCutConsumer(p *cut.Producer) { s.consumer.Bind(p) }

// Producer exposes this sink's own cut producer (nil if it has none), so
// the late resolver can bind a Cut node's polygon source.
func (s *sinkCommon) Producer() *cut.Producer { return s.producer }

// applyPersistence runs when a persistence window is configured: if this
// event arrives more than persistWindow after the previous one, it asks
// the store to clear at its next Latch. Normal decay keeps running
// alongside it.
func (s *sinkCommon) applyPersistence(now time.Time) {
	if s.persistWindow <= 0 {
		return
	}
	if !s.lastFillTime.IsZero() && now.Sub(s.lastFillTime) > s.persistWindow {
		s.store.RequestClear()
	}
	s.lastFillTime = now
}

// Hist1 is a one-dimensional cuttable histogram sink.
type Hist1 struct {
	nodeBase
	sinkCommon
	x       Node
	xRange  *axis.Range
	peakFit hist.PeakFitter
}

// NewHist1 builds a Hist1 node over x, with an initial axis (later
// re-fitted) and a decay window shared by both the Range fitter and the
// histogram store's count decay.
func NewHist1(loc, title string, x Node, initial axis.Axis, requestedBins uint32, mode axis.Mode, decay time.Duration) *Hist1 {
	h := &Hist1{
		nodeBase:   newNodeBase(loc),
		sinkCommon: newSinkCommon(title, requestedBins, mode),
		x:          x,
		xRange:     axis.NewRange(decay),
	}
	h.store = hist.NewStore(initial, decay)
	return h
}

// WithPeakFitter attaches the optional SNIP+Gaussian peak fitter run
// after every Latch.
func (h *Hist1) WithPeakFitter(f hist.PeakFitter) *Hist1 {
	h.peakFit = f
	return h
}

func (h *Hist1) Process(eventID uint64) {
	if h.alreadyRan(eventID) {
		return
	}
	if !h.consumer.Pass() {
		return
	}
	h.x.Process(eventID)
	xv := h.x.Output("")

	now := h.now()

	// Prefill: feed Range.
	for i := 0; i < xv.Len(); i++ {
		lo, hi := xv.GroupRange(i)
		for j := lo; j < hi; j++ {
			h.xRange.Add(now, xv.GetType(), xv.GetF64(j, false))
		}
	}

	// Fit.
	h.store.Fit(h.xRange.Extents(h.mode, h.requestedBins), axis.Axis{})

	// Fill.
	h.applyPersistence(now)
	axisX, _ := h.store.Axes()
	for i := 0; i < xv.Len(); i++ {
		lo, hi := xv.GroupRange(i)
		for j := lo; j < hi; j++ {
			x := xv.GetF64(j, false)
			if !axisX.InRange(x) {
				continue
			}
			h.store.Fill(now, axisX.BinOf(x))
		}
	}
}

func (h *Hist1) Output(string) *value.Value { return nil }

// Latch hands the renderer the current snapshot,
// optionally running the peak fitter over it first.
func (h *Hist1) Latch() (hist.Snapshot, []hist.Peak) {
	snap := h.store.Latch()
	if h.peakFit == nil {
		return snap, nil
	}
	return snap, hist.FitPeaks(snap.Counts, h.peakFit)
}

// Hist2 is a two-dimensional cuttable histogram sink, optionally a cut
// producer for downstream Hist* sinks gated on it.
type Hist2 struct {
	nodeBase
	sinkCommon
	x, y           Node
	xRange, yRange *axis.Range
}

// NewHist2 builds a Hist2 node over (x, y).
func NewHist2(loc, title string, x, y Node, initialX, initialY axis.Axis, requestedBinsX, requestedBinsY uint32, mode axis.Mode, decay time.Duration) *Hist2 {
	h := &Hist2{
		nodeBase:   newNodeBase(loc),
		sinkCommon: newSinkCommon(title, requestedBinsX, mode),
		x:          x,
		y:          y,
		xRange:     axis.NewRange(decay),
		yRange:     axis.NewRange(decay),
	}
	h.store = hist.NewStore2D(initialX, initialY, decay)
	_ = requestedBinsY // Y bin count is driven by the same requestedBins for simplicity; every Fit refits both axes with requestedBinsX, so initialY's bin count lasts only until the first Process.
	return h
}

// WithCutPolygon makes this sink a cut producer: its (x, y) samples are
// tested against poly during every Prefill pass.
func (h *Hist2) WithCutPolygon(poly cut.Polygon) *Hist2 {
	h.producer = cut.NewProducer(poly)
	return h
}

// WithPersistence sets a persistence window. When an event arrives more
// than window after the previous event, the store is asked to clear, and
// the clear empties every slice at the next Latch, including counts filled
// after the request. Events arriving within window of each other
// accumulate, and the store's normal decay still applies; the sink does
// not hold a single event's content on its own.
func (h *Hist2) WithPersistence(window time.Duration) *Hist2 {
	h.persistWindow = window
	return h
}

func (h *Hist2) Process(eventID uint64) {
	if h.alreadyRan(eventID) {
		return
	}
	if !h.consumer.Pass() {
		return
	}
	h.x.Process(eventID)
	h.y.Process(eventID)
	xv, yv := h.x.Output(""), h.y.Output("")

	now := h.now()

	for _, p := range pairChannels(xv, yv) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		for k := 0; k < n; k++ {
			x := xv.GetF64(p.aLo+k, false)
			y := yv.GetF64(p.bLo+k, false)
			h.xRange.Add(now, xv.GetType(), x)
			h.yRange.Add(now, yv.GetType(), y)
			if h.producer != nil {
				h.producer.Evaluate(x, y)
			}
		}
	}

	h.store.Fit(h.xRange.Extents(h.mode, h.requestedBins), h.yRange.Extents(h.mode, h.requestedBins))

	h.applyPersistence(now)
	axisX, axisY := h.store.Axes()
	for _, p := range pairChannels(xv, yv) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		for k := 0; k < n; k++ {
			x := xv.GetF64(p.aLo+k, false)
			y := yv.GetF64(p.bLo+k, false)
			if !axisX.InRange(x) || !axisY.InRange(y) {
				continue
			}
			h.store.Fill2D(now, axisX.BinOf(x), axisY.BinOf(y))
		}
	}
}

func (h *Hist2) Output(string) *value.Value { return nil }

// Latch hands the renderer the current 2-D snapshot.
func (h *Hist2) Latch() hist.Snapshot { return h.store.Latch() }

// Annular is a polar-projected two-dimensional histogram sink: (x, y)
// samples are converted to (radius, angle) before binning, otherwise
// sharing Hist2's Prefill/Fit/Fill protocol.
type Annular struct {
	nodeBase
	sinkCommon
	x, y                    Node
	radiusRange, angleRange *axis.Range
}

// NewAnnular builds an Annular node over (x, y), projected to polar
// coordinates before ranging and binning.
func NewAnnular(loc, title string, x, y Node, initialRadius, initialAngle axis.Axis, requestedBins uint32, mode axis.Mode, decay time.Duration) *Annular {
	a := &Annular{
		nodeBase:    newNodeBase(loc),
		sinkCommon:  newSinkCommon(title, requestedBins, mode),
		x:           x,
		y:           y,
		radiusRange: axis.NewRange(decay),
		angleRange:  axis.NewRange(decay),
	}
	a.store = hist.NewStore2D(initialRadius, initialAngle, decay)
	return a
}

func (a *Annular) Process(eventID uint64) {
	if a.alreadyRan(eventID) {
		return
	}
	if !a.consumer.Pass() {
		return
	}
	a.x.Process(eventID)
	a.y.Process(eventID)
	xv, yv := a.x.Output(""), a.y.Output("")

	now := a.now()

	for _, p := range pairChannels(xv, yv) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		for k := 0; k < n; k++ {
			x := xv.GetF64(p.aLo+k, false)
			y := yv.GetF64(p.bLo+k, false)
			r := math.Hypot(x, y)
			theta := math.Atan2(y, x)
			a.radiusRange.Add(now, value.F64, r)
			a.angleRange.Add(now, value.F64, theta)
			if a.producer != nil {
				a.producer.Evaluate(x, y)
			}
		}
	}

	a.store.Fit(a.radiusRange.Extents(a.mode, a.requestedBins), a.angleRange.Extents(a.mode, a.requestedBins))

	a.applyPersistence(now)
	axisR, axisTheta := a.store.Axes()
	for _, p := range pairChannels(xv, yv) {
		n := min(p.aHi-p.aLo, p.bHi-p.bLo)
		for k := 0; k < n; k++ {
			x := xv.GetF64(p.aLo+k, false)
			y := yv.GetF64(p.bLo+k, false)
			r := math.Hypot(x, y)
			theta := math.Atan2(y, x)
			if !axisR.InRange(r) || !axisTheta.InRange(theta) {
				continue
			}
			a.store.Fill2D(now, axisR.BinOf(r), axisTheta.BinOf(theta))
		}
	}
}

func (a *Annular) Output(string) *value.Value { return nil }

// Latch hands the renderer the current polar-binned snapshot.
func (a *Annular) Latch() hist.Snapshot { return a.store.Latch() }

// CutNode evaluates the referenced sink's per-event cut boolean for any
// node that wants it as an ordinary (x) signal, e.g. for logging or
// further filtering.
type CutNode struct {
	nodeBase
	producer *cut.Producer
	out      value.Value
}

// NewCutNode builds a CutNode bound to producer (resolved during late
// resolution).
func NewCutNode(loc string, producer *cut.Producer) *CutNode {
	return &CutNode{nodeBase: newNodeBase(loc), producer: producer}
}

func (c *CutNode) Output(string) *value.Value { return &c.out }

func (c *CutNode) Process(eventID uint64) {
	if c.alreadyRan(eventID) {
		return
	}
	c.out.Clear()
	c.out.MustSetType(value.U64)
	v := uint64(0)
	if c.producer.Visible() {
		v = 1
	}
	c.out.Push(0, value.U64Scalar(v))
}
