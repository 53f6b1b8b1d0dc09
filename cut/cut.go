// Package cut implements the polygon cut subsystem shared across
// histogram sinks by title: a titled polygon drawn on one
// histogram, evaluated there as a "cut producer", and consumed by any
// number of downstream "cut consumer" sinks gated by it.
package cut

// Point is a single (x, y) vertex of a cut Polygon.
type Point struct{ X, Y float64 }

// Polygon is a titled closed polygon drawn on a source histogram,
// evaluated with the even-odd point-in-polygon rule.
type Polygon struct {
	Title       string
	SourceTitle string // the title of the histogram this polygon was drawn on
	Points      []Point
}

// Contains reports whether (x, y) lies inside the polygon using the
// even-odd rule.
func (p Polygon) Contains(x, y float64) bool {
	inside := false
	n := len(p.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p.Points[i], p.Points[j]
		if (pi.Y > y) != (pj.Y > y) {
			xIntersect := (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if x < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// Producer is owned by the histogram a cut is drawn on. It is written
// exactly once per event, during that histogram's Prefill pass, and read
// by any number of Consumers gated on it. Cut state is touched only by
// the consumer thread, so no internal locking is needed.
type Producer struct {
	polygon Polygon
	visible bool
}

// NewProducer wraps a Polygon as a per-event cut producer.
func NewProducer(poly Polygon) *Producer {
	return &Producer{polygon: poly}
}

// Title returns the polygon's title, used to resolve Consumer -> Producer
// bindings during late resolution.
func (p *Producer) Title() string { return p.polygon.Title }

// Polygon returns the underlying polygon.
func (p *Producer) Polygon() Polygon { return p.polygon }

// Reset clears the per-event boolean; called at the start of every event.
func (p *Producer) Reset() { p.visible = false }

// Evaluate sets the per-event boolean for this (x, y) sample.
func (p *Producer) Evaluate(x, y float64) {
	if p.polygon.Contains(x, y) {
		p.visible = true
	}
}

// Visible reports the producer's current per-event state.
func (p *Producer) Visible() bool { return p.visible }

// Consumer is held by a gated histogram and reads a bound Producer's
// per-event boolean at the start of Process.
type Consumer struct {
	producer *Producer
}

// NewConsumer creates an unbound consumer; Bind must be called during
// late resolution before Pass is meaningful.
func NewConsumer() *Consumer { return &Consumer{} }

// Bind attaches this consumer to the producer it is gated by.
func (c *Consumer) Bind(p *Producer) { c.producer = p }

// Bound reports whether Bind has been called.
func (c *Consumer) Bound() bool { return c.producer != nil }

// Pass reports whether the gating cut currently admits the event. An
// unbound consumer always passes (no gate configured).
func (c *Consumer) Pass() bool {
	if c.producer == nil {
		return true
	}
	return c.producer.Visible()
}
