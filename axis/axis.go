// Package axis implements the display-axis auto-ranging fitter
// and the Axis/bin-index type it produces.
package axis

import (
	"fmt"
	"math"
)

// Axis is a fixed linear binning over [Min, Max).
type Axis struct {
	Bins uint32
	Min  float64
	Max  float64
}

// New validates and returns an Axis. It panics if bins < 1 or min >= max,
// since an Axis is only ever built from already-fitted Range output or a
// construction-time literal — both construction-time bugs.
func New(bins uint32, min, max float64) Axis {
	if bins < 1 {
		panic(fmt.Sprintf("axis: bins must be >= 1, got %d", bins))
	}
	if !(min < max) {
		panic(fmt.Sprintf("axis: min (%v) must be < max (%v)", min, max))
	}
	return Axis{Bins: bins, Min: min, Max: max}
}

// BinOf returns the bin index of x, clamped into [0, Bins).
func (a Axis) BinOf(x float64) int {
	f := float64(a.Bins) * (x - a.Min) / (a.Max - a.Min)
	bin := int(math.Floor(f))
	if bin < 0 {
		return 0
	}
	if bin >= int(a.Bins) {
		return int(a.Bins) - 1
	}
	return bin
}

// InRange reports whether x maps into a valid bin without clamping, i.e.
// whether the axis still covers x.
func (a Axis) InRange(x float64) bool {
	return x >= a.Min && x < a.Max
}
