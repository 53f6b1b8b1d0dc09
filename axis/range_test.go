package axis_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/axis"
	"github.com/opendaq/evmon/value"
)

var _ = Describe("Range", func() {
	It("reports a monotonic axis (min < max) even with a single sample", func() {
		r := axis.NewRange(time.Second)
		r.Add(time.Now(), value.F64, 5.0)

		a := r.Extents(axis.ModeAll, 0)
		Expect(a.Min).To(BeNumerically("<", a.Max))
	})

	It("widens the upper bound by one for integer-typed data", func() {
		r := axis.NewRange(time.Second)
		now := time.Now()
		r.Add(now, value.U64, 0)
		r.Add(now, value.U64, 10)

		a := r.Extents(axis.ModeAll, 16)
		Expect(a.Max).To(BeNumerically(">=", 11))
	})

	It("decays old slots so a stale window reports nothing once fully aged out", func() {
		r := axis.NewRange(100 * time.Millisecond)
		base := time.Now()
		for i := 0; i < slotsToFill(); i++ {
			r.Add(base.Add(time.Duration(i)*11*time.Millisecond), value.F64, 100.0)
		}
		Expect(r.Max()).To(BeNumerically(">", 0))

		later := base.Add(10 * time.Second)
		for i := 0; i < slotsToFill(); i++ {
			r.Add(later.Add(time.Duration(i)*11*time.Millisecond), value.F64, 1.0)
		}
		// Each Add into an aged slot advances the ring by one slot, so ten
		// fresh samples replace all ten slots and the historical 100s are gone.
		Expect(r.Max()).To(BeNumerically("<", 100))
	})

	It("keeps the requested bin count fixed for an integer axis and widens the range instead", func() {
		r := axis.NewRange(time.Second)
		now := time.Now()
		r.Add(now, value.U64, 1)
		r.Add(now, value.U64, 99)

		a := r.Extents(axis.ModeAll, 10)
		Expect(a.Bins).To(Equal(uint32(10)))
		Expect(a.Max - a.Min).To(BeNumerically(">=", 99-1))
	})

	It("keeps every pre-existing sample mapping to a valid bin after widening", func() {
		r := axis.NewRange(time.Second)
		now := time.Now()
		samples := []float64{-5, 0, 3.2, 7.9, 12}
		for _, s := range samples {
			r.Add(now, value.F64, s)
		}
		a := r.Extents(axis.ModeAll, 50)
		for _, s := range samples {
			Expect(a.InRange(s)).To(BeTrue())
		}
	})
})

func slotsToFill() int { return 10 }
