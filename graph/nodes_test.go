package graph_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/graph"
	"github.com/opendaq/evmon/value"
)

func u64s(vals ...uint64) []value.Scalar {
	out := make([]value.Scalar, len(vals))
	for i, v := range vals {
		out[i] = value.U64Scalar(v)
	}
	return out
}

var _ = Describe("ZeroSuppress", func() {
	It("drops hits with |v| <= cutoff", func() {
		src := newFakeLeaf(value.U64, []uint32{0, 1, 1}, u64s(5, 0, 3))
		n := graph.NewZeroSuppress("t", src, 2)
		n.Process(1)
		out := n.Output("")
		Expect(out.GetID()).To(Equal([]uint32{0, 1}))
		Expect(out.GetEnd()).To(Equal([]uint32{1, 2}))
		Expect(out.GetV()[0].U64).To(Equal(uint64(5)))
		Expect(out.GetV()[1].U64).To(Equal(uint64(3)))
	})
})

var _ = Describe("MeanArith", func() {
	It("takes the per-channel mean of paired hits", func() {
		left := newFakeLeaf(value.U64, []uint32{0}, u64s(4))
		right := newFakeLeaf(value.U64, []uint32{0}, u64s(6))
		n := graph.NewMeanArith("t", left, right)
		n.Process(1)
		out := n.Output("")
		Expect(out.GetID()).To(Equal([]uint32{0}))
		Expect(out.GetV()[0].F64).To(Equal(5.0))
	})
})

var _ = Describe("Merge", func() {
	It("merges by channel preserving per-source hit order", func() {
		left := newFakeLeaf(value.U64, []uint32{1, 2}, u64s(10, 20))
		right := newFakeLeaf(value.U64, []uint32{2, 3}, u64s(21, 30))
		n := graph.NewMerge("t", []graph.Node{left, right})
		n.Process(1)
		out := n.Output("")
		Expect(out.GetID()).To(Equal([]uint32{1, 2, 3}))
		Expect(out.GetEnd()).To(Equal([]uint32{1, 3, 4}))

		got := make([]uint64, len(out.GetV()))
		for i, s := range out.GetV() {
			got[i] = s.U64
		}
		Expect(got).To(Equal([]uint64{10, 20, 21, 30}))
	})
})

var _ = Describe("Cluster", func() {
	It("groups consecutive channels and pushes in ascending centre-of-gravity order", func() {
		src := newFakeLeaf(value.U64, []uint32{0, 1, 2, 5}, u64s(1, 2, 1, 7))
		n := graph.NewCluster("t", src)
		n.Process(1)
		clu := n.Output("clu")
		// group {0,1,2} has sum 4 and CoG 1.0 -> channel 1; group {5} has
		// sum 7 and CoG 5.0 -> channel 5. Output is ordered by channel
		// (ascending), not by summed energy, since Value requires
		// non-decreasing channel ids.
		Expect(clu.GetID()).To(Equal([]uint32{1, 5}))
		Expect(clu.GetV()[0].F64).To(Equal(4.0))
		Expect(clu.GetV()[1].F64).To(Equal(7.0))

		eta := n.Output("eta")
		Expect(eta.GetV()[0].F64).To(BeNumerically("~", 0.0, 1e-9))
		Expect(eta.GetV()[1].F64).To(BeNumerically("~", 0.0, 1e-9))
	})
})

var _ = Describe("memoisation", func() {
	It("runs Process at most once per event id", func() {
		calls := 0
		src := &countingLeaf{onProcess: func() { calls++ }}
		n := graph.NewZeroSuppress("t", src, 0)
		n.Process(7)
		n.Process(7)
		n.Process(7)
		Expect(calls).To(Equal(1))
		n.Process(8)
		Expect(calls).To(Equal(2))
	})
})

type countingLeaf struct {
	out       value.Value
	onProcess func()
}

func (c *countingLeaf) Location() string { return "counting" }
func (c *countingLeaf) Process(eventID uint64) {
	c.onProcess()
	c.out.Clear()
	c.out.MustSetType(value.U64)
}
func (c *countingLeaf) Output(string) *value.Value { return &c.out }
