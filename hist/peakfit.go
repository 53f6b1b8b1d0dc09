package hist

import (
	"math"
	"sort"
)

// MaxPeaks bounds the number of candidate peaks a PeakFitter retains.
const MaxPeaks = 30

// Peak is one fitted peak in a 1-D histogram.
type Peak struct {
	Mean, Sigma, Amplitude, Offset float64
}

// PeakFitter fits peaks in a 1-D count slice. A full non-linear curve
// fitter is an external collaborator this module does not implement;
// this interface is the shape graph.Hist1's Latch drives it through (via
// FitPeaks), and GaussianMomentFitter below is a closed-form stand-in
// default.
type PeakFitter interface {
	// Fit is called by FitPeaks with the raw counts and a window
	// [left, right) reaching three standard deviations either side of a
	// candidate peak found on the background-subtracted counts.
	Fit(counts []uint32, left, right int) (Peak, bool)
}

// SNIPBackground performs a SNIP (Statistics-sensitive Non-linear
// Iterative Peak-clipping) background subtraction over counts, a
// standard online-spectroscopy technique.
func SNIPBackground(counts []uint32, iterations int) []float64 {
	// LLS (log-log-sqrt) transform flattens Poisson-like peak/background
	// contrast before clipping, then the inverse transform restores counts.
	work := make([]float64, len(counts))
	for i, c := range counts {
		work[i] = math.Log(math.Log(math.Sqrt(float64(c)+1)+1) + 1)
	}
	tmp := make([]float64, len(work))
	for p := 1; p <= iterations; p++ {
		copy(tmp, work)
		for i := p; i < len(work)-p; i++ {
			avg := (work[i-p] + work[i+p]) / 2
			if avg < tmp[i] {
				tmp[i] = avg
			}
		}
		copy(work, tmp)
	}
	bg := make([]float64, len(counts))
	for i, v := range work {
		inner := math.Exp(v) - 1
		sq := math.Exp(inner) - 1
		bg[i] = sq*sq - 1
		if bg[i] < 0 {
			bg[i] = 0
		}
	}
	return bg
}

// FindPeakCandidates walks the 2nd-difference of the background
// subtracted counts looking for local minima (concave-down regions),
// returning up to MaxPeaks candidate bin indices ordered by prominence.
func FindPeakCandidates(counts []uint32, background []float64) []int {
	n := len(counts)
	if n < 3 {
		return nil
	}
	subtracted := make([]float64, n)
	for i := range counts {
		subtracted[i] = float64(counts[i]) - background[i]
		if subtracted[i] < 0 {
			subtracted[i] = 0
		}
	}

	type cand struct {
		idx        int
		prominence float64
	}
	var cands []cand
	for i := 1; i < n-1; i++ {
		d2 := subtracted[i-1] - 2*subtracted[i] + subtracted[i+1]
		if d2 < 0 && subtracted[i] > 0 {
			cands = append(cands, cand{idx: i, prominence: subtracted[i]})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].prominence > cands[j].prominence })
	if len(cands) > MaxPeaks {
		cands = cands[:MaxPeaks]
	}
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.idx
	}
	return out
}

// GaussianMomentFitter estimates peak parameters from the statistical
// moments of the window rather than iterative non-linear optimization —
// fast enough for live visualisation, not a publication-grade fit.
type GaussianMomentFitter struct{}

// Fit implements PeakFitter.
func (GaussianMomentFitter) Fit(counts []uint32, left, right int) (Peak, bool) {
	if left < 0 {
		left = 0
	}
	if right > len(counts) {
		right = len(counts)
	}
	if right-left < 2 {
		return Peak{}, false
	}

	var sumW, sumWX, sumWX2 float64
	offset := math.MaxFloat64
	for i := left; i < right; i++ {
		w := float64(counts[i])
		if w < offset {
			offset = w
		}
	}
	if offset == math.MaxFloat64 {
		offset = 0
	}
	for i := left; i < right; i++ {
		w := float64(counts[i]) - offset
		if w < 0 {
			continue
		}
		x := float64(i)
		sumW += w
		sumWX += w * x
		sumWX2 += w * x * x
	}
	if sumW <= 0 {
		return Peak{}, false
	}
	mean := sumWX / sumW
	variance := sumWX2/sumW - mean*mean
	if variance <= 0 {
		return Peak{}, false
	}
	sigma := math.Sqrt(variance)
	amplitude := sumW / (sigma * math.Sqrt(2*math.Pi))
	if amplitude <= 0 {
		return Peak{}, false
	}
	return Peak{Mean: mean, Sigma: sigma, Amplitude: amplitude, Offset: offset}, true
}

// FitPeaks runs the full candidate-search-then-fit pipeline: SNIP
// background subtraction, 2nd-difference candidate search, and a
// ±3σ-windowed fit per candidate, keeping only positive-amplitude
// results, capped at MaxPeaks.
func FitPeaks(counts []uint32, fitter PeakFitter) []Peak {
	background := SNIPBackground(counts, 8)
	candidates := FindPeakCandidates(counts, background)

	var peaks []Peak
	for _, idx := range candidates {
		// Seed with a coarse window, then refine using the fitted sigma.
		seedSigma := 3.0
		left := int(float64(idx) - 3*seedSigma)
		right := int(float64(idx) + 3*seedSigma)
		peak, ok := fitter.Fit(counts, left, right)
		if !ok || peak.Amplitude <= 0 {
			continue
		}
		left = int(peak.Mean - 3*peak.Sigma)
		right = int(peak.Mean + 3*peak.Sigma)
		refined, ok := fitter.Fit(counts, left, right)
		if ok && refined.Amplitude > 0 {
			peak = refined
		}
		peaks = append(peaks, peak)
		if len(peaks) >= MaxPeaks {
			break
		}
	}
	return peaks
}
