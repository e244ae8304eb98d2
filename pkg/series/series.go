// Package series provides the array transformations used by the CIBSE
// TM52/TM59 overheating criteria: time-axis resampling, element repetition,
// the standards' half-up rounding rules, the 22:00-07:00 night window
// extraction and occupancy masking.
package series

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Grid is a 2D series indexed [room][step].
type Grid [][]float64

// Tensor is a 3D series indexed [airSpeed][room][step].
type Tensor [][][]float64

// ErrNotDivisible is returned when a resample or windowing operation is asked
// to split an axis whose length is not a multiple of the chunk size.
var ErrNotDivisible = fmt.Errorf("series length not divisible by chunk size")

// ResampleMean reduces arr by taking the mean of every n consecutive
// elements, shortening the series from L to L/n. Used to convert a sub-daily
// series to daily values.
func ResampleMean(arr []float64, n int) ([]float64, error) {
	if n <= 0 || len(arr)%n != 0 {
		return nil, fmt.Errorf("%w: len %d, n %d", ErrNotDivisible, len(arr), n)
	}
	out := make([]float64, len(arr)/n)
	for i := range out {
		out[i] = stat.Mean(arr[i*n:(i+1)*n], nil)
	}
	return out, nil
}

// ResampleSum reduces arr by summing every n consecutive elements. Used to
// collapse reporting intervals into daily totals for the weighted-exceedance
// criterion.
func ResampleSum(arr []float64, n int) ([]float64, error) {
	if n <= 0 || len(arr)%n != 0 {
		return nil, fmt.Errorf("%w: len %d, n %d", ErrNotDivisible, len(arr), n)
	}
	out := make([]float64, len(arr)/n)
	for i := range out {
		out[i] = floats.Sum(arr[i*n : (i+1)*n])
	}
	return out, nil
}

// RepeatElements expands arr by duplicating each element n times
// contiguously, the inverse of resampling. [1 2] with n=2 becomes [1 1 2 2].
func RepeatElements(arr []float64, n int) []float64 {
	out := make([]float64, 0, len(arr)*n)
	for _, v := range arr {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	return out
}

// RoundHalfUp rounds with a fractional part of exactly 0.5 always going up,
// never to the nearest even value. CIBSE TM52 specifies this rule for delta T,
// and it matters at exact 0.5 boundaries: RoundHalfUp(1.5) is 2 and
// RoundHalfUp(-1.5) is -1.
func RoundHalfUp(x float64) float64 {
	if x-math.Floor(x) >= 0.5 {
		return math.Ceil(x)
	}
	return math.Floor(x)
}

// RoundDailyWeight derives a weighting factor from delta T for the daily
// weighted exceedance criterion. Values at or below zero carry no weight.
func RoundDailyWeight(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return RoundHalfUp(x)
}

// NightWindow extracts the 22:00-07:00 samples of each day from a series
// spanning whole days of 24*factor samples: the first 7*factor samples
// (00:00-07:00) followed by the last 2*factor (22:00-24:00), concatenated
// across days.
func NightWindow(arr []float64, factor int) ([]float64, error) {
	day := 24 * factor
	if factor <= 0 || len(arr)%day != 0 {
		return nil, fmt.Errorf("%w: len %d, day length %d", ErrNotDivisible, len(arr), day)
	}
	days := len(arr) / day
	out := make([]float64, 0, days*9*factor)
	for d := 0; d < days; d++ {
		start := d * day
		out = append(out, arr[start:start+7*factor]...)
		out = append(out, arr[start+22*factor:start+day]...)
	}
	return out, nil
}

// NightWindowGrid applies NightWindow along the time axis of a [room][step]
// grid.
func NightWindowGrid(g Grid, factor int) (Grid, error) {
	out := make(Grid, len(g))
	for r, row := range g {
		nw, err := NightWindow(row, factor)
		if err != nil {
			return nil, err
		}
		out[r] = nw
	}
	return out, nil
}

// NightWindowTensor applies NightWindow along the time axis of a
// [speed][room][step] tensor.
func NightWindowTensor(t Tensor, factor int) (Tensor, error) {
	out := make(Tensor, len(t))
	for s, g := range t {
		nw, err := NightWindowGrid(g, factor)
		if err != nil {
			return nil, err
		}
		out[s] = nw
	}
	return out, nil
}

// MaskUnoccupied returns a copy of values with every sample zeroed where the
// matching occupancy sample is zero. Criteria exclude unoccupied periods by
// zeroing rather than dropping samples, which is safe because every
// exceedance threshold is positive.
func MaskUnoccupied(values, occupancy []float64) ([]float64, error) {
	if len(values) != len(occupancy) {
		return nil, fmt.Errorf("series length mismatch: values %d, occupancy %d", len(values), len(occupancy))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if occupancy[i] > 0 {
			out[i] = v
		}
	}
	return out, nil
}
