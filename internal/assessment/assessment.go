// Package assessment wires the comfort equations and criteria evaluators
// into the TM52, TM59 and TM59 mechanical-ventilation calculation wizards.
// Each wizard runs a fixed pipeline over the input arrays: validate inputs,
// compute the operative temperature tensor, compute the maximum acceptable
// temperature, subtract to get delta T, evaluate the criteria, and merge the
// per-criterion results into room-keyed verdict tables.
package assessment

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/overheat/internal/constants"
	"github.com/chrissnell/overheat/internal/log"
	"github.com/chrissnell/overheat/internal/report"
	"github.com/chrissnell/overheat/pkg/series"
)

// airSpeedLabels renders the configured air speeds the way result tables key
// them ("0.1", "0.15", ...).
func airSpeedLabels(speeds []float64) []string {
	labels := make([]string, len(speeds))
	for i, v := range speeds {
		labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return labels
}

// buildSummary assembles the run-level metadata shared by all three wizards.
func buildSummary(analysisType string, in *Inputs, cfg Config, factor int) report.Summary {
	return report.Summary{
		RunID:                    uuid.New().String(),
		EngineVersion:            constants.Version,
		AnalysisType:             analysisType,
		ProjectName:              in.Project.Name,
		JobNumber:                in.Project.JobNumber,
		WeatherFile:              in.Project.WeatherFile,
		WeatherYear:              in.Project.WeatherYear,
		TimeZone:                 "GMT+" + strconv.FormatFloat(in.Project.TimeZone, 'f', 2, 64),
		Longitude:                in.Project.Longitude,
		Latitude:                 in.Project.Latitude,
		ReportingIntervalMinutes: 60 / float64(factor),
		AnalysedSpaces:           len(in.RoomIDs),
		AirSpeeds:                airSpeedLabels(cfg.AirSpeeds),
		AnalysisDate:             time.Now(),
	}
}

// bedroomRooms returns the indices of rooms occupied at every 22:00-07:00
// sample of the year. A room failing that test is excluded from the bedroom
// comfort criterion rather than treated as an error.
func bedroomRooms(occupancy series.Grid, factor int) ([]int, error) {
	night, err := series.NightWindowGrid(occupancy, factor)
	if err != nil {
		return nil, err
	}
	var indices []int
	for r, row := range night {
		occupiedThroughout := true
		for _, v := range row {
			if v == 0 {
				occupiedThroughout = false
				break
			}
		}
		if occupiedThroughout {
			indices = append(indices, r)
		}
	}
	return indices, nil
}

// loggerOrDefault falls back to the package logger so wizards can be
// constructed without one.
func loggerOrDefault(logger *zap.SugaredLogger) *zap.SugaredLogger {
	if logger == nil {
		return log.GetSugaredLogger()
	}
	return logger
}
