package hist_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/axis"
	"github.com/opendaq/evmon/hist"
)

var _ = Describe("Store (1-D)", func() {
	It("increments the active slice on Fill and reports it through Latch", func() {
		s := hist.NewStore(axis.New(10, 0, 10), time.Hour)
		now := time.Now()
		s.Fill(now, 3)
		s.Fill(now, 3)
		s.Fill(now, 5)

		snap := s.Latch()
		Expect(snap.Counts[3]).To(Equal(uint32(2)))
		Expect(snap.Counts[5]).To(Equal(uint32(1)))
	})

	It("sums to zero after a full decay window of no fills", func() {
		decay := 100 * time.Millisecond
		s := hist.NewStore(axis.New(4, 0, 4), decay)
		base := time.Now()
		s.Fill(base, 1)
		Expect(s.Latch().Counts[1]).To(Equal(uint32(1)))

		later := base.Add(decay + 10*time.Millisecond)
		s.Fill(later, 2) // rotates every stale slice away, including bin 1's.
		snap := s.Latch()
		Expect(snap.Counts[1]).To(Equal(uint32(0)))
	})

	It("clears on RequestClear at the next Latch", func() {
		s := hist.NewStore(axis.New(4, 0, 4), time.Hour)
		s.Fill(time.Now(), 1)
		s.RequestClear()
		snap := s.Latch()
		for _, c := range snap.Counts {
			Expect(c).To(Equal(uint32(0)))
		}
	})

	It("preserves total count across a Fit that widens the axis", func() {
		s := hist.NewStore(axis.New(4, 0, 4), time.Hour)
		now := time.Now()
		s.Fill(now, 0)
		s.Fill(now, 1)
		s.Fill(now, 2)
		s.Fill(now, 3)

		s.Fit(axis.New(8, 0, 8), axis.Axis{})

		snap := s.Latch()
		var total uint32
		for _, c := range snap.Counts {
			total += c
		}
		Expect(total).To(Equal(uint32(4)))
	})
})

var _ = Describe("Store (2-D)", func() {
	It("fills row-major (x, y) bins", func() {
		s := hist.NewStore2D(axis.New(4, 0, 4), axis.New(4, 0, 4), time.Hour)
		now := time.Now()
		s.Fill2D(now, 1, 2)
		snap := s.Latch()
		Expect(snap.Counts[2*4+1]).To(Equal(uint32(1)))
	})
})
