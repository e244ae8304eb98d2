// Package criteria implements the CIBSE TM52 and TM59 pass/fail tests over
// delta T and operative temperature tensors. Each evaluator returns one
// Result per room per air speed; True means the room fails that criterion.
package criteria

import (
	"fmt"

	"github.com/chrissnell/overheat/pkg/series"
)

// Thresholds fixed by the published standards.
const (
	// ExceedanceDeltaT is the rounded delta T at which an occupied hour
	// counts toward the time of exceedance (TM52 6.1.2a, TM59 criterion A).
	ExceedanceDeltaT = 1.0
	// OccupiedHoursFraction is the share of occupied hours that exceedance
	// may not pass (TM52 6.1.2a and the TM59 mech-vent test).
	OccupiedHoursFraction = 0.03
	// DailyWeightLimit is the highest allowed daily weighted exceedance
	// (TM52 6.1.2b).
	DailyWeightLimit = 6.0
	// UpperDeltaTLimit is the absolute delta T cap in kelvin (TM52 6.1.2c).
	UpperDeltaTLimit = 4.0
	// BedroomTempLimit is the operative temperature ceiling for sleeping
	// hours in degrees celsius (TM59 criterion B).
	BedroomTempLimit = 26.0
	// BedroomHoursLimit is the number of 22:00-07:00 hours per year that may
	// exceed BedroomTempLimit, roughly 1% of the 3285 annual night hours.
	BedroomHoursLimit = 32.0
	// MechVentTempLimit is the fixed operative temperature ceiling for
	// mechanically ventilated homes (TM59 section 4.3).
	MechVentTempLimit = 26.0
)

// Metric names attached to results, matching the column headings of the
// assessment reports.
const (
	MetricPctHoursDeltaT    = "% Hours Delta T >= 1K"
	MetricMaxDailyWeight    = "Max Daily Weight"
	MetricMaxDeltaT         = "Max Delta T"
	MetricHoursOver26       = "Hours Operative T > 26 Deg. C"
	MetricPctHoursOver26    = "% Hours Operative T > 26 Deg. C"
	MetricPctOccupiedOver26 = "% Hours Operative Temp > 26 Deg. Celsius"
)

// Metric is one named severity value attached to a criterion outcome.
type Metric struct {
	Name  string  `json:"name" msgpack:"name"`
	Value float64 `json:"value" msgpack:"value"`
}

// Result is the outcome of one criterion for one room at one air speed.
// Results are computed once per run and never mutated.
type Result struct {
	RoomID  string   `json:"room_id" msgpack:"room_id"`
	Fail    bool     `json:"fail" msgpack:"fail"`
	Metrics []Metric `json:"metrics" msgpack:"metrics"`
}

// Metric returns the named metric value, or zero if absent.
func (r Result) Metric(name string) float64 {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m.Value
		}
	}
	return 0
}

// Window is a half-open hour-of-year range [StartHour, EndHour) at hourly
// resolution, scaled by the reporting factor when applied.
type Window struct {
	StartHour int
	EndHour   int
}

func checkShape(t series.Tensor, occupancy series.Grid, roomIDs []string) error {
	if occupancy != nil && len(occupancy) != len(roomIDs) {
		return fmt.Errorf("room axis mismatch: occupancy %d rooms, %d room IDs", len(occupancy), len(roomIDs))
	}
	for s := range t {
		if len(t[s]) != len(roomIDs) {
			return fmt.Errorf("room axis mismatch at speed %d: tensor %d rooms, %d room IDs", s, len(t[s]), len(roomIDs))
		}
		for r := range t[s] {
			if occupancy != nil && len(t[s][r]) != len(occupancy[r]) {
				return fmt.Errorf("time axis mismatch in room %s: tensor %d steps, occupancy %d steps", roomIDs[r], len(t[s][r]), len(occupancy[r]))
			}
		}
	}
	return nil
}

// HoursOfExceedance evaluates TM52 criterion 1 / TM59 criterion A: within the
// May-September window, the hours where rounded delta T reaches 1K while the
// room is occupied must not exceed 3% of the occupied hours in the window
// (CIBSE TM52:2013 section 6.1.2a).
func HoursOfExceedance(deltaT series.Tensor, occupancy series.Grid, roomIDs []string, factor int, win Window) ([][]Result, error) {
	if err := checkShape(deltaT, occupancy, roomIDs); err != nil {
		return nil, err
	}
	lo, hi := win.StartHour*factor, win.EndHour*factor

	out := make([][]Result, len(deltaT))
	for s := range deltaT {
		out[s] = make([]Result, len(roomIDs))
		for r := range deltaT[s] {
			if hi > len(deltaT[s][r]) {
				return nil, fmt.Errorf("window [%d, %d) outside time axis of %d steps", lo, hi, len(deltaT[s][r]))
			}
			masked, err := series.MaskUnoccupied(deltaT[s][r][lo:hi], occupancy[r][lo:hi])
			if err != nil {
				return nil, err
			}

			exceeding := 0
			for _, v := range masked {
				if series.RoundHalfUp(v) >= ExceedanceDeltaT {
					exceeding++
				}
			}
			occupied := 0
			for _, o := range occupancy[r][lo:hi] {
				if o > 0 {
					occupied++
				}
			}

			res := Result{RoomID: roomIDs[r]}
			if occupied > 0 {
				// Strict comparison: exactly 3% passes.
				res.Fail = float64(exceeding) > OccupiedHoursFraction*float64(occupied)
				res.Metrics = []Metric{{MetricPctHoursDeltaT, float64(exceeding) * 100 / float64(occupied)}}
			} else {
				// Room never occupied inside the window: nothing to exceed.
				res.Metrics = []Metric{{MetricPctHoursDeltaT, 0}}
			}
			out[s][r] = res
		}
	}
	return out, nil
}

// DailyWeightedExceedance evaluates TM52 criterion 2: the weighted exceedance
// of any single day, summed from per-sample weighting factors and scaled by
// the reporting time step, may not pass 6 (CIBSE TM52:2013 section 6.1.2b).
// The test runs over the full year.
func DailyWeightedExceedance(deltaT series.Tensor, occupancy series.Grid, roomIDs []string, hoursPerYear, daysPerYear int) ([][]Result, error) {
	if err := checkShape(deltaT, occupancy, roomIDs); err != nil {
		return nil, err
	}

	out := make([][]Result, len(deltaT))
	for s := range deltaT {
		out[s] = make([]Result, len(roomIDs))
		for r := range deltaT[s] {
			steps := len(deltaT[s][r])
			if daysPerYear <= 0 || steps%daysPerYear != 0 {
				return nil, fmt.Errorf("room %s: %d steps is not a whole number of %d days", roomIDs[r], steps, daysPerYear)
			}
			masked, err := series.MaskUnoccupied(deltaT[s][r], occupancy[r])
			if err != nil {
				return nil, err
			}

			weights := make([]float64, len(masked))
			for i, v := range masked {
				weights[i] = series.RoundDailyWeight(v)
			}
			dailyWeights, err := series.ResampleSum(weights, steps/daysPerYear)
			if err != nil {
				return nil, err
			}

			// Half-hourly samples carry half an hour of weight each.
			timeStep := float64(hoursPerYear) / float64(steps)
			fail := false
			maxWeight := 0.0
			for _, w := range dailyWeights {
				w *= timeStep
				if w > DailyWeightLimit {
					fail = true
				}
				if w > maxWeight {
					maxWeight = w
				}
			}
			out[s][r] = Result{
				RoomID:  roomIDs[r],
				Fail:    fail,
				Metrics: []Metric{{MetricMaxDailyWeight, maxWeight}},
			}
		}
	}
	return out, nil
}

// UpperLimitTemperature evaluates TM52 criterion 3: no single reading may
// have a rounded delta T above 4K, occupied or not (CIBSE TM52:2013 section
// 6.1.2c).
func UpperLimitTemperature(deltaT series.Tensor, roomIDs []string) ([][]Result, error) {
	if err := checkShape(deltaT, nil, roomIDs); err != nil {
		return nil, err
	}

	out := make([][]Result, len(deltaT))
	for s := range deltaT {
		out[s] = make([]Result, len(roomIDs))
		for r := range deltaT[s] {
			fail := false
			var maxDeltaT float64
			for i, v := range deltaT[s][r] {
				rounded := series.RoundHalfUp(v)
				if rounded > UpperDeltaTLimit {
					fail = true
				}
				if i == 0 || rounded > maxDeltaT {
					maxDeltaT = rounded
				}
			}
			out[s][r] = Result{
				RoomID:  roomIDs[r],
				Fail:    fail,
				Metrics: []Metric{{MetricMaxDeltaT, maxDeltaT}},
			}
		}
	}
	return out, nil
}

// BedroomComfort evaluates TM59 criterion B over a tensor already restricted
// to bedrooms: the operative temperature between 22:00 and 07:00 may not pass
// 26°C for more than 32 hours a year. The 32-hour limit scales with the
// reporting factor so that sub-hourly data is held to the same number of
// hours, not the same number of samples.
func BedroomComfort(opTemp series.Tensor, roomIDs []string, factor int) ([][]Result, error) {
	if err := checkShape(opTemp, nil, roomIDs); err != nil {
		return nil, err
	}
	night, err := series.NightWindowTensor(opTemp, factor)
	if err != nil {
		return nil, err
	}

	out := make([][]Result, len(night))
	for s := range night {
		out[s] = make([]Result, len(roomIDs))
		for r := range night[s] {
			exceeding := 0
			for _, v := range night[s][r] {
				if v > BedroomTempLimit {
					exceeding++
				}
			}
			windowLen := len(night[s][r])
			out[s][r] = Result{
				RoomID: roomIDs[r],
				Fail:   float64(exceeding) > BedroomHoursLimit*float64(factor),
				Metrics: []Metric{
					{MetricHoursOver26, float64(exceeding) / float64(factor)},
					{MetricPctHoursOver26, float64(exceeding) * 100 / float64(windowLen)},
				},
			}
		}
	}
	return out, nil
}

// MechVentFixedTemperature evaluates the TM59 fixed-temperature test for
// mechanically ventilated homes: occupied hours with operative temperature
// above 26°C may not pass 3% of the annual occupied hours.
func MechVentFixedTemperature(opTemp series.Tensor, occupancy series.Grid, roomIDs []string) ([][]Result, error) {
	if err := checkShape(opTemp, occupancy, roomIDs); err != nil {
		return nil, err
	}

	out := make([][]Result, len(opTemp))
	for s := range opTemp {
		out[s] = make([]Result, len(roomIDs))
		for r := range opTemp[s] {
			masked, err := series.MaskUnoccupied(opTemp[s][r], occupancy[r])
			if err != nil {
				return nil, err
			}

			exceeding := 0
			for _, v := range masked {
				if v > MechVentTempLimit {
					exceeding++
				}
			}
			occupied := 0
			for _, o := range occupancy[r] {
				if o > 0 {
					occupied++
				}
			}

			res := Result{RoomID: roomIDs[r]}
			if occupied > 0 {
				res.Fail = float64(exceeding) > OccupiedHoursFraction*float64(occupied)
				res.Metrics = []Metric{{MetricPctOccupiedOver26, float64(exceeding) * 100 / float64(occupied)}}
			} else {
				res.Metrics = []Metric{{MetricPctOccupiedOver26, 0}}
			}
			out[s][r] = res
		}
	}
	return out, nil
}
