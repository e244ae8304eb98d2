package assessment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chrissnell/overheat/internal/criteria"
	"github.com/chrissnell/overheat/internal/report"
	"github.com/chrissnell/overheat/pkg/comfort"
)

// TM52 assesses naturally ventilated buildings against the three CIBSE
// TM52:2013 criteria. A room fails the standard overall when it fails at
// least two of the three.
type TM52 struct {
	cfg    Config
	logger *zap.SugaredLogger
}

// NewTM52 creates a TM52 wizard. A nil logger falls back to the package
// logger.
func NewTM52(cfg Config, logger *zap.SugaredLogger) *TM52 {
	return &TM52{cfg: cfg, logger: loggerOrDefault(logger)}
}

// Run executes the full TM52 pipeline and returns the result set for the
// report writer. It returns no partial results: any validation or shape
// error aborts the run.
func (a *TM52) Run(in *Inputs) (*report.ResultSet, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	factor, err := in.factor(a.cfg.HoursPerYear)
	if err != nil {
		return nil, err
	}
	a.logger.Debugw("starting TM52 assessment", "rooms", len(in.RoomIDs), "factor", factor)

	opTemp, err := comfort.OperativeTensor(in.AirTemp, in.MeanRadiantTemp, a.cfg.AirSpeeds)
	if err != nil {
		return nil, fmt.Errorf("operative temperature: %w", err)
	}

	runningMean, err := comfort.RunningMeanOutdoor(in.DryBulbTemp, a.cfg.DaysPerYear)
	if err != nil {
		return nil, fmt.Errorf("running mean outdoor temperature: %w", err)
	}
	maxAcceptable := comfort.MaxAcceptableSeries(runningMean, comfort.CategoryIIOffset, a.cfg.AirSpeeds)

	deltaT, err := comfort.DeltaT(opTemp, maxAcceptable)
	if err != nil {
		return nil, fmt.Errorf("delta T: %w", err)
	}
	a.logger.Debug("delta T tensor computed")

	window := criteria.Window{StartHour: a.cfg.SeasonStartHour, EndHour: a.cfg.SeasonEndHour}
	one, err := criteria.HoursOfExceedance(deltaT, in.Occupancy, in.RoomIDs, factor, window)
	if err != nil {
		return nil, fmt.Errorf("criterion 1: %w", err)
	}
	two, err := criteria.DailyWeightedExceedance(deltaT, in.Occupancy, in.RoomIDs, a.cfg.HoursPerYear, a.cfg.DaysPerYear)
	if err != nil {
		return nil, fmt.Errorf("criterion 2: %w", err)
	}
	three, err := criteria.UpperLimitTemperature(deltaT, in.RoomIDs)
	if err != nil {
		return nil, fmt.Errorf("criterion 3: %w", err)
	}
	a.logger.Debug("criteria evaluated")

	rs := &report.ResultSet{
		Summary:     buildSummary("CIBSE TM52 Assessment of overheating risk", in, a.cfg, factor),
		Definitions: report.TM52Definitions,
	}

	labels := airSpeedLabels(a.cfg.AirSpeeds)
	for s, label := range labels {
		rs.CriterionTables = append(rs.CriterionTables,
			report.BuildTable("Criterion 1", label, one[s], in.RoomNames),
			report.BuildTable("Criterion 2", label, two[s], in.RoomNames),
			report.BuildTable("Criterion 3", label, three[s], in.RoomNames),
		)

		merged := report.MergedTable{AirSpeed: label}
		for r, id := range in.RoomIDs {
			outcomes := []report.MergedCriterion{
				mergedOutcome("Criterion 1", one[s][r]),
				mergedOutcome("Criterion 2", two[s][r]),
				mergedOutcome("Criterion 3", three[s][r]),
			}
			failures := 0
			for _, o := range outcomes {
				if o.Fail {
					failures++
				}
			}
			// Failing any two of the three criteria fails TM52 overall.
			overallFail := failures >= 2
			merged.Rows = append(merged.Rows, report.MergedRow{
				RoomID:   id,
				RoomName: in.RoomNames[id],
				Criteria: outcomes,
				Verdict:  report.Verdict(overallFail),
				Fail:     overallFail,
			})
		}
		rs.MergedTables = append(rs.MergedTables, merged)
	}

	a.logger.Infow("TM52 assessment complete", "rooms", len(in.RoomIDs), "air_speeds", len(labels))
	return rs, nil
}

// mergedOutcome wraps one criterion result for a merged verdict row.
func mergedOutcome(name string, res criteria.Result) report.MergedCriterion {
	return report.MergedCriterion{
		Name:     name,
		Verdict:  report.Verdict(res.Fail),
		Fail:     res.Fail,
		Assessed: true,
		Metrics:  res.Metrics,
	}
}
