package hist

import (
	"math"
	"sort"

	"github.com/opendaq/evmon/axis"
)

// rebin1D redistributes old's per-bin counts onto newAxis by proportional
// overlap in coordinate space, then rounds back to integers with the
// largest-remainder method so the total count is preserved exactly
// whenever newAxis fully covers oldAxis.
// This is an approximation when bins don't align exactly with the old
// grid — visualisation fidelity matters more than decimal-exact counts
// here.
func rebin1D(old []uint32, oldAxis, newAxis axis.Axis) []uint32 {
	if len(old) == 0 {
		return make([]uint32, int(newAxis.Bins))
	}
	oldWidth := (oldAxis.Max - oldAxis.Min) / float64(oldAxis.Bins)
	newWidth := (newAxis.Max - newAxis.Min) / float64(newAxis.Bins)

	acc := make([]float64, int(newAxis.Bins))
	for i, c := range old {
		if c == 0 {
			continue
		}
		lo := oldAxis.Min + float64(i)*oldWidth
		hi := lo + oldWidth
		distribute1D(acc, float64(c), lo, hi, newAxis.Min, newWidth)
	}
	return largestRemainderRound(acc)
}

func distribute1D(acc []float64, count, lo, hi, newMin, newWidth float64) {
	if newWidth <= 0 {
		return
	}
	j0 := int(math.Floor((lo - newMin) / newWidth))
	j1 := int(math.Ceil((hi - newMin) / newWidth))
	for j := j0; j < j1; j++ {
		if j < 0 || j >= len(acc) {
			continue
		}
		nlo := newMin + float64(j)*newWidth
		nhi := nlo + newWidth
		overlap := math.Min(hi, nhi) - math.Max(lo, nlo)
		if overlap > 0 {
			acc[j] += count * overlap / (hi - lo)
		}
	}
}

// rebin2D applies rebin1D separably along X then Y.
func rebin2D(old []uint32, oldX, oldY, newX, newY axis.Axis) []uint32 {
	oldW, oldH := int(oldX.Bins), int(oldY.Bins)
	newW, newH := int(newX.Bins), int(newY.Bins)
	if len(old) != oldW*oldH {
		return make([]uint32, newW*newH)
	}

	// Pass 1: rebin each row along X, keeping the old Y grid.
	stage := make([]uint32, newW*oldH)
	for y := 0; y < oldH; y++ {
		row := old[y*oldW : (y+1)*oldW]
		newRow := rebin1D(row, oldX, newX)
		copy(stage[y*newW:(y+1)*newW], newRow)
	}

	// Pass 2: rebin each column of the stage along Y.
	out := make([]uint32, newW*newH)
	col := make([]uint32, oldH)
	for x := 0; x < newW; x++ {
		for y := 0; y < oldH; y++ {
			col[y] = stage[y*newW+x]
		}
		newCol := rebin1D(col, oldY, newY)
		for y := 0; y < newH; y++ {
			out[y*newW+x] = newCol[y]
		}
	}
	return out
}

// largestRemainderRound converts fractional bin accumulations to
// integers while preserving the rounded total exactly.
func largestRemainderRound(acc []float64) []uint32 {
	out := make([]uint32, len(acc))
	type rem struct {
		idx int
		f   float64
	}
	total := 0.0
	rems := make([]rem, len(acc))
	floorSum := uint64(0)
	for i, v := range acc {
		f := math.Floor(v)
		out[i] = uint32(f)
		rems[i] = rem{idx: i, f: v - f}
		floorSum += uint64(f)
		total += v
	}
	target := uint64(math.Round(total))
	if target <= floorSum {
		return out
	}
	deficit := int(target - floorSum)
	sort.Slice(rems, func(i, j int) bool { return rems[i].f > rems[j].f })
	for i := 0; i < deficit && i < len(rems); i++ {
		out[rems[i].idx]++
	}
	return out
}
