package clock_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/clock"
	"github.com/opendaq/evmon/errs"
)

var _ = Describe("Matcher", func() {
	It("sleeps the difference when the virtual clock is ahead of wall time", func() {
		wall := time.Unix(0, 0)
		var slept time.Duration
		m := clock.New(1.0).WithClock(
			func() time.Time { return wall },
			func(d time.Duration) { slept = d },
		)

		Expect(m.Observe(1000)).To(Succeed()) // sets ts0/t0
		wall = wall.Add(1 * time.Second)       // real time advances 1s
		Expect(m.Observe(1005)).To(Succeed())  // virtual dts = 5s, dt = 1s

		Expect(slept).To(Equal(4 * time.Second))
	})

	It("rejects a non-monotonic timestamp regression", func() {
		m := clock.New(1.0)
		Expect(m.Observe(100)).To(Succeed())
		err := m.Observe(100)
		Expect(err).To(HaveOccurred())
		var nonMono *errs.NonMonotonicClock
		Expect(err).To(BeAssignableToTypeOf(nonMono))
	})
})
