// Package comfort implements the CIBSE adaptive thermal comfort equations
// used by the TM52 and TM59 overheating assessments: operative temperature,
// running mean outdoor temperature, comfort temperature and the maximum
// acceptable temperature for a room category and elevated air speed.
package comfort

import (
	"fmt"
	"math"

	"github.com/chrissnell/overheat/pkg/series"
)

// Adaptive comfort category offsets above the comfort temperature, per CIBSE
// TM52:2013 Table 2. Category I applies to rooms occupied by vulnerable
// occupants and is the stricter bound.
const (
	CategoryIOffset  = 2.0
	CategoryIIOffset = 3.0
)

// minAirSpeed is the floor applied to air speed before the operative
// temperature weighting, per CIBSE Guide A Part 1.2.2.
const minAirSpeed = 0.1

// OperativeTemperature blends indoor air and mean radiant temperature,
// weighted by air speed (CIBSE Guide A, Equation 1.2). Air speeds below
// 0.1 m/s are clamped to 0.1.
func OperativeTemperature(airTemp, airSpeed, meanRadiantTemp float64) float64 {
	if airSpeed < minAirSpeed {
		airSpeed = minAirSpeed
	}
	w := math.Sqrt(10 * airSpeed)
	return (airTemp*w + meanRadiantTemp) / (1 + w)
}

// OperativeTensor evaluates OperativeTemperature across every air speed for
// [room][step] grids of air and mean radiant temperature, producing a
// [speed][room][step] tensor.
func OperativeTensor(airTemp, meanRadiantTemp series.Grid, airSpeeds []float64) (series.Tensor, error) {
	if len(airTemp) != len(meanRadiantTemp) {
		return nil, fmt.Errorf("room axis mismatch: air temp %d rooms, mean radiant temp %d rooms", len(airTemp), len(meanRadiantTemp))
	}
	out := make(series.Tensor, len(airSpeeds))
	for s, speed := range airSpeeds {
		grid := make(series.Grid, len(airTemp))
		for r := range airTemp {
			if len(airTemp[r]) != len(meanRadiantTemp[r]) {
				return nil, fmt.Errorf("time axis mismatch in room %d: air temp %d steps, mean radiant temp %d steps", r, len(airTemp[r]), len(meanRadiantTemp[r]))
			}
			row := make([]float64, len(airTemp[r]))
			for i := range row {
				row[i] = OperativeTemperature(airTemp[r][i], speed, meanRadiantTemp[r][i])
			}
			grid[r] = row
		}
		out[s] = grid
	}
	return out, nil
}

// runningMeanSeed primes the running mean from the last seven daily means of
// the year, treating the calendar as cyclic so the final day of the year
// feeds January 1st (CIBSE TM52:2013, Equation 2.3, Box 2).
func runningMeanSeed(daily []float64) float64 {
	n := len(daily)
	return (daily[n-1] +
		daily[n-2]*0.8 +
		daily[n-3]*0.6 +
		daily[n-4]*0.5 +
		daily[n-5]*0.4 +
		daily[n-6]*0.3 +
		daily[n-7]*0.2) / 3.8
}

// runningMeanAlpha is the correlation constant of the running mean recurrence
// (CIBSE TM52:2013, Equation 2.2).
const runningMeanAlpha = 0.8

// RunningMeanDaily computes the exponentially weighted running mean of daily
// mean outdoor dry-bulb temperatures for a whole year, seeded from the last
// seven days of the same year.
func RunningMeanDaily(dailyMeans []float64) ([]float64, error) {
	if len(dailyMeans) < 7 {
		return nil, fmt.Errorf("running mean needs at least 7 daily values, got %d", len(dailyMeans))
	}
	out := make([]float64, len(dailyMeans))
	out[0] = runningMeanSeed(dailyMeans)
	for i := 1; i < len(out); i++ {
		out[i] = (1-runningMeanAlpha)*dailyMeans[i-1] + runningMeanAlpha*out[i-1]
	}
	return out, nil
}

// RunningMeanOutdoor reduces an annual dry-bulb series of daysPerYear whole
// days to daily means, computes the running mean, and expands it back to the
// source reporting interval by element repetition.
func RunningMeanOutdoor(dryBulb []float64, daysPerYear int) ([]float64, error) {
	if daysPerYear <= 0 || len(dryBulb)%daysPerYear != 0 {
		return nil, fmt.Errorf("dry-bulb series length %d is not a whole number of %d days", len(dryBulb), daysPerYear)
	}
	samplesPerDay := len(dryBulb) / daysPerYear
	dailyMeans, err := series.ResampleMean(dryBulb, samplesPerDay)
	if err != nil {
		return nil, err
	}
	daily, err := RunningMeanDaily(dailyMeans)
	if err != nil {
		return nil, err
	}
	return series.RepeatElements(daily, samplesPerDay), nil
}

// ComfortTemperature is the adaptive comfort temperature for a running mean
// outdoor temperature (CIBSE Guide A, Equation 1.1.3).
func ComfortTemperature(runningMean float64) float64 {
	return 0.33*runningMean + 18.8
}

// SpeedAdjustment is the uplift to the comfort temperature available at
// elevated air speeds (CIBSE TM52:2013, Equation 1). It is zero at or below
// 0.1 m/s and increases monotonically with air speed.
func SpeedAdjustment(airSpeed float64) float64 {
	if airSpeed <= minAirSpeed {
		return 0
	}
	return 7 - 50/(4+10*math.Sqrt(airSpeed))
}

// MaxAcceptableTemperature is the highest operative temperature a room may
// reach without contributing to overheating, for a given room category offset
// and air speed (CIBSE TM52:2013, Table 2 and Equation 1).
func MaxAcceptableTemperature(runningMean, categoryOffset, airSpeed float64) float64 {
	return ComfortTemperature(runningMean) + SpeedAdjustment(airSpeed) + categoryOffset
}

// MaxAcceptableSeries evaluates MaxAcceptableTemperature across every air
// speed for a running mean series, producing a [speed][step] grid. The room
// axis is omitted: the running mean is outdoor data shared by all rooms.
func MaxAcceptableSeries(runningMean []float64, categoryOffset float64, airSpeeds []float64) series.Grid {
	out := make(series.Grid, len(airSpeeds))
	for s, speed := range airSpeeds {
		row := make([]float64, len(runningMean))
		for i, rm := range runningMean {
			row[i] = MaxAcceptableTemperature(rm, categoryOffset, speed)
		}
		out[s] = row
	}
	return out
}

// DeltaT subtracts the maximum acceptable temperature from the operative
// temperature for every sample. maxAcceptable is indexed [speed][step] and is
// broadcast across the room axis; when its time axis is shorter than the
// operative tensor's it is expanded by element repetition, and the ratio must
// be an exact integer.
func DeltaT(opTemp series.Tensor, maxAcceptable series.Grid) (series.Tensor, error) {
	if len(opTemp) != len(maxAcceptable) {
		return nil, fmt.Errorf("air speed axis mismatch: operative %d, max acceptable %d", len(opTemp), len(maxAcceptable))
	}
	out := make(series.Tensor, len(opTemp))
	for s := range opTemp {
		grid := make(series.Grid, len(opTemp[s]))
		maxAcc := maxAcceptable[s]
		for r := range opTemp[s] {
			op := opTemp[s][r]
			if len(op) != len(maxAcc) {
				if len(maxAcc) == 0 || len(op)%len(maxAcc) != 0 {
					return nil, fmt.Errorf("time axis mismatch: operative %d steps, max acceptable %d steps (not an integer ratio)", len(op), len(maxAcc))
				}
				maxAcc = series.RepeatElements(maxAcc, len(op)/len(maxAcc))
			}
			row := make([]float64, len(op))
			for i := range row {
				row[i] = op[i] - maxAcc[i]
			}
			grid[r] = row
		}
		out[s] = grid
	}
	return out, nil
}
