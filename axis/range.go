package axis

import (
	"math"
	"time"

	"github.com/opendaq/evmon/value"
)

// slotCount is the number of ring slots the sliding-window fitter keeps.
const slotCount = 10

// Mode selects how Range.Extents derives a display axis from the
// accumulated statistics.
type Mode int

const (
	// ModeAll snaps the axis to the observed [min, max].
	ModeAll Mode = iota
	// ModeStats prefers a tight window around the mean when the data is
	// concentrated, falling back to the full range otherwise.
	ModeStats
)

type slot struct {
	min, max     float64
	sum, sumSq   float64
	count        uint64
	oldest       time.Time
	oldestIsZero bool
}

func zeroSlot(now time.Time) slot {
	return slot{
		min: math.Inf(1), max: math.Inf(-1),
		oldest: now,
	}
}

// Range is the sliding-window statistics fitter that drives a Hist*
// node's auto-ranging axis. It is not safe for concurrent
// use; each Hist* sink owns one per axis and only its own goroutine
// touches it.
type Range struct {
	decayWindow time.Duration
	slots       [slotCount]slot
	cur         int
	isInteger   bool
	typeIsSet   bool
}

// NewRange builds a Range with the given decay window (the full sliding
// window span; each of the 10 slots covers decayWindow/10).
func NewRange(decayWindow time.Duration) *Range {
	r := &Range{decayWindow: decayWindow}
	now := time.Time{}
	for i := range r.slots {
		r.slots[i] = zeroSlot(now)
	}
	return r
}

// Add folds one sample into the current slot, advancing the ring if the
// current slot has aged past decayWindow/10.
func (r *Range) Add(now time.Time, typ value.Type, x float64) {
	if !r.typeIsSet {
		r.isInteger = typ == value.U64 || typ == value.I64
		r.typeIsSet = true
	}

	s := &r.slots[r.cur]
	if s.count == 0 {
		s.oldest = now
	} else if r.decayWindow > 0 && now.Sub(s.oldest) > r.decayWindow/slotCount {
		r.cur = (r.cur + 1) % slotCount
		r.slots[r.cur] = zeroSlot(now)
		s = &r.slots[r.cur]
	}

	if x < s.min {
		s.min = x
	}
	if x > s.max {
		s.max = x
	}
	s.sum += x
	s.sumSq += x * x
	s.count++
}

func (r *Range) reduce() (min, max, sum, sumSq float64, count uint64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, s := range r.slots {
		if s.count == 0 {
			continue
		}
		if s.min < min {
			min = s.min
		}
		if s.max > max {
			max = s.max
		}
		sum += s.sum
		sumSq += s.sumSq
		count += s.count
	}
	return
}

// Min, Max, Mean and Sigma reduce across the non-empty slots of the
// sliding window. They return zero values if no sample has ever been
// added.
func (r *Range) Min() float64 { min, _, _, _, _ := r.reduce(); return zeroIfInf(min) }
func (r *Range) Max() float64 { _, max, _, _, _ := r.reduce(); return zeroIfInf(max) }

func (r *Range) Mean() float64 {
	_, _, sum, _, count := r.reduce()
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func (r *Range) Sigma() float64 {
	_, _, sum, sumSq, count := r.reduce()
	if count == 0 {
		return 0
	}
	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func zeroIfInf(f float64) float64 {
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Extents computes a display Axis from the accumulated statistics.
func (r *Range) Extents(mode Mode, requestedBins uint32) Axis {
	min, max, _, _, count := r.reduce()
	if count == 0 {
		min, max = 0, 1
	}

	if mode == ModeStats && count > 0 {
		mean, sigma := r.Mean(), r.Sigma()
		lo, hi := mean-3*sigma, mean+3*sigma
		fullSpan := max - min
		if fullSpan <= 0 || (hi-lo) < 0.1*fullSpan {
			if hi > lo {
				min, max = lo, hi
			}
		}
		min, max = snapToZero(min, max, max-min)
	}

	if r.isInteger {
		max = max + 1
	}

	span := max - min
	if math.Abs(span) < 1e-10 {
		widened := math.Max(math.Abs(max)*1e-10, 1e-20)
		min, max = max-widened, max+widened
		span = max - min
	}

	if !r.isInteger {
		margin := span * 0.10
		min -= margin
		max += margin
		span = max - min
	} else if span >= 1000 {
		// "very-wide integer ranges" also get a margin.
		margin := span * 0.10
		min -= margin
		max += margin
		span = max - min
	}

	bins := r.chooseBins(requestedBins, span)
	if r.isInteger && requestedBins > 0 {
		// Keep the requested bin count fixed and widen the range instead,
		// so the span becomes a whole multiple of the per-bin width.
		binWidth := math.Ceil(span / float64(bins))
		if binWidth < 1 {
			binWidth = 1
		}
		if widened := binWidth * float64(bins); widened > span {
			max += widened - span
		}
	}
	return New(bins, min, max)
}

func snapToZero(min, max, span float64) (float64, float64) {
	if span <= 0 {
		return min, max
	}
	if min > 0 && min < span {
		min = 0
	}
	if max < 0 && -max < span {
		max = 0
	}
	return min, max
}

func (r *Range) chooseBins(requestedBins uint32, span float64) uint32 {
	if !r.isInteger {
		if requestedBins > 0 {
			return requestedBins
		}
		return 200
	}

	if requestedBins > 0 {
		// The bin count stays exactly as requested; Extents widens the
		// range (not the bin count) to make the span a whole multiple of
		// the per-bin width.
		return requestedBins
	}

	bins := uint32(math.Ceil(span))
	if bins == 0 {
		bins = 1
	}
	for bins > 128 {
		bins /= 2
	}
	if bins == 0 {
		bins = 1
	}
	return bins
}
