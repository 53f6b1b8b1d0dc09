package graph_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/axis"
	"github.com/opendaq/evmon/cut"
	"github.com/opendaq/evmon/graph"
	"github.com/opendaq/evmon/value"
)

func f64s(vals ...float64) []value.Scalar {
	out := make([]value.Scalar, len(vals))
	for i, v := range vals {
		out[i] = value.F64Scalar(v)
	}
	return out
}

var _ = Describe("cut gating", func() {
	It("only increments the gated sink when the source point falls inside the cut polygon", func() {
		poly := cut.Polygon{
			Title:       "rect",
			SourceTitle: "A",
			Points: []cut.Point{
				{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
			},
		}

		xA := newFakeLeaf(value.F64, []uint32{0}, f64s(5))
		yA := newFakeLeaf(value.F64, []uint32{0}, f64s(5))
		a := graph.NewHist2("A", "A", xA, yA,
			axis.New(10, 0, 20), axis.New(10, 0, 20), 10, 10, axis.ModeAll, time.Hour)
		a.WithCutPolygon(poly)

		xB := newFakeLeaf(value.F64, []uint32{0}, f64s(1))
		b := graph.NewHist1("B", "B", xB, axis.New(10, 0, 20), 10, axis.ModeAll, time.Hour)
		b.BindCutConsumer(a.Producer())

		a.Process(1)
		b.Process(1)
		snap, _ := b.Latch()
		var total uint32
		for _, c := range snap.Counts {
			total += c
		}
		Expect(total).To(Equal(uint32(1)))

		xA2 := newFakeLeaf(value.F64, []uint32{0}, f64s(50))
		a2 := graph.NewHist2("A", "A", xA2, yA,
			axis.New(10, 0, 20), axis.New(10, 0, 20), 10, 10, axis.ModeAll, time.Hour)
		a2.WithCutPolygon(poly)
		b.BindCutConsumer(a2.Producer())

		a2.Process(2)
		b.Process(2)
		snap2, _ := b.Latch()
		var total2 uint32
		for _, c := range snap2.Counts {
			total2 += c
		}
		Expect(total2).To(Equal(uint32(1))) // unchanged: B's event-2 Fill was gated off
	})
})

var _ = Describe("Builder", func() {
	It("structurally dedupes identical node declarations", func() {
		b := graph.NewBuilder()
		src := newFakeLeaf(value.U64, []uint32{0}, u64s(5))
		n1 := b.AddZeroSuppress("t", src, 2)
		n2 := b.AddZeroSuppress("t", src, 2)
		Expect(n1).To(BeIdenticalTo(n2))
	})

	It("dedupes MExpr, Merge, Cluster and Alias the same way", func() {
		b := graph.NewBuilder()
		left := newFakeLeaf(value.F64, []uint32{0}, f64s(1))
		right := newFakeLeaf(value.F64, []uint32{0}, f64s(2))

		m1 := b.AddMExpr("t", left, right, 0, graph.OpAdd)
		m2 := b.AddMExpr("t", left, right, 0, graph.OpAdd)
		Expect(m1).To(BeIdenticalTo(m2))

		g1 := b.AddMerge("t", []graph.Node{left, right})
		g2 := b.AddMerge("t", []graph.Node{left, right})
		Expect(g1).To(BeIdenticalTo(g2))

		c1 := b.AddCluster("t", left)
		c2 := b.AddCluster("t", left)
		Expect(c1).To(BeIdenticalTo(c2))

		a1 := b.AddAlias("t", "foo", left)
		a2 := b.AddAlias("t", "foo", left)
		Expect(a1).To(BeIdenticalTo(a2))
		bound, ok := b.Reference("foo")
		Expect(ok).To(BeTrue())
		Expect(bound).To(BeIdenticalTo(a1))
	})

	It("fails with DuplicateTitle on a repeated sink title", func() {
		b := graph.NewBuilder()
		src := newFakeLeaf(value.F64, []uint32{0}, f64s(1))
		h1 := graph.NewHist1("h1", "same", src, axis.New(10, 0, 10), 10, axis.ModeAll, time.Hour)
		h2 := graph.NewHist1("h2", "same", src, axis.New(10, 0, 10), 10, axis.ModeAll, time.Hour)
		b.AddSink("same", h1, nil)
		Expect(func() { b.AddSink("same", h2, nil) }).To(PanicWith(MatchError(ContainSubstring("duplicate histogram title"))))
	})

	It("fails with UnknownCuttable when a gate names a histogram that was never declared", func() {
		b := graph.NewBuilder()
		consumer := cut.NewConsumer()
		b.GateBy(consumer, "nonexistent")
		Expect(func() { b.ResolveCuts() }).To(PanicWith(MatchError(ContainSubstring("unknown cuttable"))))
	})
})
