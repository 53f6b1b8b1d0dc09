// Package hist implements the time-sliced histogram store shared by the
// Hist1, Hist2 and Annular sink nodes: decaying count slices,
// auto-range re-binning, and a mutex-latched render snapshot.
package hist

import (
	"sync"
	"time"

	"github.com/opendaq/evmon/axis"
)

// DefaultSlices is the number of ring slices participating in the
// time-decayed count, mirroring the ten-slot window used by axis.Range.
const DefaultSlices = 10

// Snapshot is the immutable, render-side result of a Latch: the summed
// counts across all live slices plus the axis they were binned against.
// A renderer may read a Snapshot freely; it is never mutated after being
// handed out.
type Snapshot struct {
	AxisX, AxisY axis.Axis // AxisY.Bins == 0 for a 1-D histogram
	Counts       []uint32
}

// Store is the shared engine behind Hist1/Hist2/Annular: N time-sliced
// bin arrays, one "active", with decay-driven rotation, Fit-triggered
// conservative rebinning, and a mutex-guarded Latch for the renderer.
//
// Concurrency: Fill is called only from the consumer/event thread, Latch
// only from the render (main) thread; mu serializes the two.
type Store struct {
	mu sync.Mutex

	numSlices int
	decay     time.Duration

	axisX, axisY axis.Axis
	bins2D       bool

	slices     [][]uint32
	active     int
	lastRotate time.Time

	clearRequested bool
}

// NewStore creates a store for a 1-D histogram (axisY zero value with
// Bins == 0).
func NewStore(initial axis.Axis, decay time.Duration) *Store {
	return newStore(initial, axis.Axis{}, false, decay)
}

// NewStore2D creates a store for a 2-D histogram.
func NewStore2D(x, y axis.Axis, decay time.Duration) *Store {
	return newStore(x, y, true, decay)
}

func newStore(x, y axis.Axis, is2D bool, decay time.Duration) *Store {
	s := &Store{
		numSlices: DefaultSlices,
		decay:     decay,
		axisX:     x,
		axisY:     y,
		bins2D:    is2D,
	}
	s.slices = make([][]uint32, s.numSlices)
	for i := range s.slices {
		s.slices[i] = make([]uint32, s.sliceLen())
	}
	return s
}

func (s *Store) sliceLen() int {
	if s.bins2D {
		return int(s.axisX.Bins) * int(s.axisY.Bins)
	}
	return int(s.axisX.Bins)
}

// RequestClear marks that the next Latch should reset the store's axes
// and all slices to empty.
func (s *Store) RequestClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearRequested = true
}

// advanceDecay rotates the active slice forward, zeroing newly-entered
// slices, for every decay period elapsed since the last rotation.
func (s *Store) advanceDecay(now time.Time) {
	if s.decay <= 0 {
		return
	}
	if s.lastRotate.IsZero() {
		s.lastRotate = now
		return
	}
	period := s.decay / time.Duration(s.numSlices)
	if period <= 0 {
		return
	}
	for now.Sub(s.lastRotate) > period {
		s.active = (s.active + 1) % s.numSlices
		for i := range s.slices[s.active] {
			s.slices[s.active][i] = 0
		}
		s.lastRotate = s.lastRotate.Add(period)
	}
}

// Fit recomputes the axes from freshly-fitted axis.Axis values and, if
// they moved, rebins every slice, preserving the total count.
func (s *Store) Fit(newX, newY axis.Axis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	xChanged := newX != s.axisX
	yChanged := s.bins2D && newY != s.axisY
	if !xChanged && !yChanged {
		return
	}

	oldX, oldY := s.axisX, s.axisY
	s.axisX, s.axisY = newX, newY

	for i, sl := range s.slices {
		if s.bins2D {
			s.slices[i] = rebin2D(sl, oldX, oldY, newX, newY)
		} else {
			s.slices[i] = rebin1D(sl, oldX, newX)
		}
	}
}

// Fill increments the active slice at bin x (1-D) or (x, y) (2-D), first
// advancing decay for the current wall-clock time.
func (s *Store) Fill(now time.Time, x int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceDecay(now)
	if x < 0 || x >= len(s.slices[s.active]) {
		return
	}
	s.slices[s.active][x]++
}

// Fill2D increments the active slice at the row-major (x, y) bin.
func (s *Store) Fill2D(now time.Time, x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceDecay(now)
	idx := y*int(s.axisX.Bins) + x
	if idx < 0 || idx >= len(s.slices[s.active]) {
		return
	}
	s.slices[s.active][idx]++
}

// BinIndex2D computes the flat row-major index for (x, y) against the
// store's current axes.
func (s *Store) BinIndex2D(x, y int) int { return y*int(s.axisX.Bins) + x }

// Axes returns the current axes (AxisY.Bins == 0 for 1-D stores).
func (s *Store) Axes() (x, y axis.Axis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.axisX, s.axisY
}

// Latch atomically hands the renderer a Snapshot: it applies any pending
// clear, then sums all live slices element-wise.
func (s *Store) Latch() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clearRequested {
		s.clearRequested = false
		for i := range s.slices {
			for j := range s.slices[i] {
				s.slices[i][j] = 0
			}
		}
	}

	sum := make([]uint32, s.sliceLen())
	for _, sl := range s.slices {
		for i, v := range sl {
			sum[i] += v
		}
	}
	return Snapshot{AxisX: s.axisX, AxisY: s.axisY, Counts: sum}
}
