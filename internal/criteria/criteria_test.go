package criteria

import (
	"math"
	"testing"

	"github.com/chrissnell/overheat/pkg/series"
)

const (
	hoursPerYear = 8760
	daysPerYear  = 365
)

var seasonWindow = Window{StartHour: 2880, EndHour: 6552}

// annualTensor builds a one-speed, one-room tensor of the given length with
// every step set to fill.
func annualTensor(steps int, fill float64) series.Tensor {
	row := make([]float64, steps)
	for i := range row {
		row[i] = fill
	}
	return series.Tensor{{row}}
}

func annualOccupancy(steps int) series.Grid {
	return series.Grid{make([]float64, steps)}
}

func TestHoursOfExceedanceThresholdBoundary(t *testing.T) {
	tests := []struct {
		name           string
		exceedingHours int
		expectFail     bool
		expectPercent  float64
	}{
		{"exactly 3 percent passes", 30, false, 3.0},
		{"just over 3 percent fails", 31, true, 3.1},
		{"no exceedance passes", 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltaT := annualTensor(hoursPerYear, -5)
			occupancy := annualOccupancy(hoursPerYear)
			// 1000 occupied hours inside the May-September window.
			for h := 2880; h < 3880; h++ {
				occupancy[0][h] = 1
			}
			for h := 2880; h < 2880+tt.exceedingHours; h++ {
				deltaT[0][0][h] = 1.0
			}

			results, err := HoursOfExceedance(deltaT, occupancy, []string{"room-1"}, 1, seasonWindow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := results[0][0]
			if res.Fail != tt.expectFail {
				t.Errorf("fail = %v, want %v", res.Fail, tt.expectFail)
			}
			if got := res.Metric(MetricPctHoursDeltaT); math.Abs(got-tt.expectPercent) > 1e-9 {
				t.Errorf("percent = %v, want %v", got, tt.expectPercent)
			}
		})
	}
}

func TestHoursOfExceedanceIgnoresUnoccupied(t *testing.T) {
	// Massive delta T everywhere, but the room is never occupied inside the
	// window: nothing counts.
	deltaT := annualTensor(hoursPerYear, 10)
	occupancy := annualOccupancy(hoursPerYear)
	occupancy[0][0] = 1 // occupied outside the window only

	results, err := HoursOfExceedance(deltaT, occupancy, []string{"room-1"}, 1, seasonWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0][0].Fail {
		t.Error("room with no window occupancy should pass")
	}
	if got := results[0][0].Metric(MetricPctHoursDeltaT); got != 0 {
		t.Errorf("percent = %v, want 0", got)
	}
}

func TestHoursOfExceedanceOutsideWindowIgnored(t *testing.T) {
	deltaT := annualTensor(hoursPerYear, 0)
	occupancy := annualOccupancy(hoursPerYear)
	for h := range occupancy[0] {
		occupancy[0][h] = 1
	}
	// Exceedance only in April, before the window opens.
	for h := 2000; h < 2880; h++ {
		deltaT[0][0][h] = 3
	}

	results, err := HoursOfExceedance(deltaT, occupancy, []string{"room-1"}, 1, seasonWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0][0].Fail {
		t.Error("exceedance outside May-September should not count")
	}
}

func TestHoursOfExceedanceHalfHourlyFactor(t *testing.T) {
	steps := hoursPerYear * 2
	deltaT := annualTensor(steps, -5)
	occupancy := annualOccupancy(steps)
	// 1000 occupied samples, 31 exceeding: same boundary as hourly data.
	lo := seasonWindow.StartHour * 2
	for i := lo; i < lo+1000; i++ {
		occupancy[0][i] = 1
	}
	for i := lo; i < lo+31; i++ {
		deltaT[0][0][i] = 2
	}

	results, err := HoursOfExceedance(deltaT, occupancy, []string{"room-1"}, 2, seasonWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[0][0].Fail {
		t.Error("expected failure at 3.1% of occupied samples")
	}
}

func TestDailyWeightedExceedanceBoundary(t *testing.T) {
	tests := []struct {
		name       string
		hoursAtOne int
		expectFail bool
		expectMax  float64
	}{
		{"weight of exactly 6 passes", 6, false, 6},
		{"weight of 7 fails", 7, true, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltaT := annualTensor(hoursPerYear, -1)
			occupancy := annualOccupancy(hoursPerYear)
			// Day 100, all occupied, with deltaT of 1 for a run of hours.
			day := 100 * 24
			for h := day; h < day+24; h++ {
				occupancy[0][h] = 1
			}
			for h := day; h < day+tt.hoursAtOne; h++ {
				deltaT[0][0][h] = 1.0
			}

			results, err := DailyWeightedExceedance(deltaT, occupancy, []string{"room-1"}, hoursPerYear, daysPerYear)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := results[0][0]
			if res.Fail != tt.expectFail {
				t.Errorf("fail = %v, want %v", res.Fail, tt.expectFail)
			}
			if got := res.Metric(MetricMaxDailyWeight); math.Abs(got-tt.expectMax) > 1e-9 {
				t.Errorf("max daily weight = %v, want %v", got, tt.expectMax)
			}
		})
	}
}

func TestDailyWeightedExceedanceHalfHourlyTimeStep(t *testing.T) {
	steps := hoursPerYear * 2
	deltaT := annualTensor(steps, 0)
	occupancy := annualOccupancy(steps)
	// 12 half-hour samples at deltaT 1 weigh 6 hours: still passing.
	day := 100 * 48
	for i := day; i < day+48; i++ {
		occupancy[0][i] = 1
	}
	for i := day; i < day+12; i++ {
		deltaT[0][0][i] = 1.0
	}

	results, err := DailyWeightedExceedance(deltaT, occupancy, []string{"room-1"}, hoursPerYear, daysPerYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0][0].Fail {
		t.Error("12 half-hour samples at weight 1 should total exactly 6 and pass")
	}

	// One more sample tips the day to 6.5.
	deltaT[0][0][day+12] = 1.0
	results, err = DailyWeightedExceedance(deltaT, occupancy, []string{"room-1"}, hoursPerYear, daysPerYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[0][0].Fail {
		t.Error("13 half-hour samples at weight 1 should total 6.5 and fail")
	}
}

func TestDailyWeightedExceedanceNegativeDeltaTCarriesNoWeight(t *testing.T) {
	deltaT := annualTensor(hoursPerYear, -3)
	occupancy := annualOccupancy(hoursPerYear)
	for h := range occupancy[0] {
		occupancy[0][h] = 1
	}

	results, err := DailyWeightedExceedance(deltaT, occupancy, []string{"room-1"}, hoursPerYear, daysPerYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0][0].Fail {
		t.Error("negative delta T must not accumulate weight")
	}
	if got := results[0][0].Metric(MetricMaxDailyWeight); got != 0 {
		t.Errorf("max daily weight = %v, want 0", got)
	}
}

func TestUpperLimitTemperature(t *testing.T) {
	tests := []struct {
		name       string
		peak       float64
		expectFail bool
		expectMax  float64
	}{
		{"rounds to 4 and passes", 4.4, false, 4},
		{"rounds to 5 and fails", 4.5, true, 5},
		{"well below limit", 1.2, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltaT := annualTensor(hoursPerYear, -2)
			deltaT[0][0][5000] = tt.peak

			results, err := UpperLimitTemperature(deltaT, []string{"room-1"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := results[0][0]
			if res.Fail != tt.expectFail {
				t.Errorf("fail = %v, want %v", res.Fail, tt.expectFail)
			}
			if got := res.Metric(MetricMaxDeltaT); got != tt.expectMax {
				t.Errorf("max delta T = %v, want %v", got, tt.expectMax)
			}
		})
	}
}

func TestBedroomComfortBoundary(t *testing.T) {
	tests := []struct {
		name           string
		exceedingHours int
		expectFail     bool
	}{
		{"exactly 32 hours passes", 32, false},
		{"33 hours fails", 33, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opTemp := annualTensor(hoursPerYear, 20)
			// Raise the first hours of successive days; hour 0 of each day is
			// inside the 22:00-07:00 window.
			for d := 0; d < tt.exceedingHours; d++ {
				opTemp[0][0][d*24] = 27
			}

			results, err := BedroomComfort(opTemp, []string{"bedroom-1"}, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := results[0][0]
			if res.Fail != tt.expectFail {
				t.Errorf("fail = %v, want %v", res.Fail, tt.expectFail)
			}
			if got := res.Metric(MetricHoursOver26); got != float64(tt.exceedingHours) {
				t.Errorf("hours = %v, want %v", got, tt.exceedingHours)
			}
			wantPct := float64(tt.exceedingHours) * 100 / (365 * 9)
			if got := res.Metric(MetricPctHoursOver26); math.Abs(got-wantPct) > 1e-9 {
				t.Errorf("percent = %v, want %v", got, wantPct)
			}
		})
	}
}

func TestBedroomComfortDaytimeHeatIgnored(t *testing.T) {
	opTemp := annualTensor(hoursPerYear, 20)
	// Hot every midday of the year: outside the night window.
	for d := 0; d < 365; d++ {
		opTemp[0][0][d*24+12] = 30
	}

	results, err := BedroomComfort(opTemp, []string{"bedroom-1"}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0][0].Fail {
		t.Error("daytime exceedance must not count toward bedroom comfort")
	}
}

func TestBedroomComfortScalesLimitWithFactor(t *testing.T) {
	steps := hoursPerYear * 2
	opTemp := annualTensor(steps, 20)
	// 64 half-hour samples over 26°C is exactly 32 hours: passing.
	for d := 0; d < 64; d++ {
		opTemp[0][0][d*48] = 27
	}

	results, err := BedroomComfort(opTemp, []string{"bedroom-1"}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0][0].Fail {
		t.Error("64 half-hour samples should equal the 32-hour limit and pass")
	}
	if got := results[0][0].Metric(MetricHoursOver26); got != 32 {
		t.Errorf("hours = %v, want 32", got)
	}

	opTemp[0][0][64*48] = 27
	results, err = BedroomComfort(opTemp, []string{"bedroom-1"}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[0][0].Fail {
		t.Error("65 half-hour samples should break the 32-hour limit")
	}
}

func TestMechVentFixedTemperature(t *testing.T) {
	tests := []struct {
		name           string
		exceedingHours int
		expectFail     bool
	}{
		{"exactly 3 percent passes", 30, false},
		{"just over 3 percent fails", 31, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opTemp := annualTensor(hoursPerYear, 22)
			occupancy := annualOccupancy(hoursPerYear)
			for h := 0; h < 1000; h++ {
				occupancy[0][h] = 2
			}
			for h := 0; h < tt.exceedingHours; h++ {
				opTemp[0][0][h] = 27
			}
			// Hot while unoccupied: ignored.
			for h := 2000; h < 3000; h++ {
				opTemp[0][0][h] = 30
			}

			results, err := MechVentFixedTemperature(opTemp, occupancy, []string{"room-1"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := results[0][0]
			if res.Fail != tt.expectFail {
				t.Errorf("fail = %v, want %v", res.Fail, tt.expectFail)
			}
			wantPct := float64(tt.exceedingHours) * 100 / 1000
			if got := res.Metric(MetricPctOccupiedOver26); math.Abs(got-wantPct) > 1e-9 {
				t.Errorf("percent = %v, want %v", got, wantPct)
			}
		})
	}
}
