package hist_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/hist"
)

var _ = Describe("GaussianMomentFitter", func() {
	It("recovers the approximate mean and sigma of a synthetic Gaussian peak", func() {
		n := 200
		counts := make([]uint32, n)
		mean, sigma, amp := 100.0, 8.0, 500.0
		for i := 0; i < n; i++ {
			x := float64(i)
			counts[i] = uint32(amp * math.Exp(-(x-mean)*(x-mean)/(2*sigma*sigma)))
		}

		var fitter hist.GaussianMomentFitter
		peak, ok := fitter.Fit(counts, 70, 130)
		Expect(ok).To(BeTrue())
		Expect(peak.Mean).To(BeNumerically("~", mean, 5))
		Expect(peak.Sigma).To(BeNumerically(">", 0))
	})

	It("retains at most MaxPeaks candidates", func() {
		n := 2000
		counts := make([]uint32, n)
		for i := 0; i < n; i += 4 {
			counts[i] = 100
		}
		peaks := hist.FitPeaks(counts, hist.GaussianMomentFitter{})
		Expect(len(peaks)).To(BeNumerically("<=", hist.MaxPeaks))
	})
})
