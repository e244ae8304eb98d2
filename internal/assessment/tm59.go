package assessment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chrissnell/overheat/internal/criteria"
	"github.com/chrissnell/overheat/internal/report"
	"github.com/chrissnell/overheat/pkg/comfort"
	"github.com/chrissnell/overheat/pkg/series"
)

// TM59 assesses naturally ventilated homes against CIBSE TM59:2017:
// criterion A (hours of exceedance, all analysed rooms) and criterion B
// (bedroom comfort, bedrooms only). A room fails the standard when it fails
// either criterion. Rooms in the configured vulnerable-occupancy group are
// held to the Category I maximum acceptable temperature.
type TM59 struct {
	cfg    Config
	logger *zap.SugaredLogger
}

// NewTM59 creates a TM59 wizard. A nil logger falls back to the package
// logger.
func NewTM59(cfg Config, logger *zap.SugaredLogger) *TM59 {
	return &TM59{cfg: cfg, logger: loggerOrDefault(logger)}
}

// Run executes the full TM59 pipeline and returns the result set for the
// report writer.
func (a *TM59) Run(in *Inputs) (*report.ResultSet, error) {
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

	// Bedrooms are the rooms occupied at every 22:00-07:00 sample of the
	// year. Rooms without that occupancy pattern skip criterion B.
	bedrooms, err := bedroomRooms(in.Occupancy, factor)
	if err != nil {
		return nil, fmt.Errorf("bedroom classification: %w", err)
	}
	a.logger.Debugw("starting TM59 assessment",
		"rooms", len(in.RoomIDs), "bedrooms", len(bedrooms), "factor", factor)

	opTemp, err := comfort.OperativeTensor(in.AirTemp, in.MeanRadiantTemp, a.cfg.AirSpeeds)
	if err != nil {
		return nil, fmt.Errorf("operative temperature: %w", err)
	}

	runningMean, err := comfort.RunningMeanOutdoor(in.DryBulbTemp, a.cfg.DaysPerYear)
	if err != nil {
		return nil, fmt.Errorf("running mean outdoor temperature: %w", err)
	}

	deltaT, vulnerable, err := a.deltaTByCategory(in, opTemp, runningMean)
	if err != nil {
		return nil, err
	}

	window := criteria.Window{StartHour: a.cfg.SeasonStartHour, EndHour: a.cfg.SeasonEndHour}
	critA, err := criteria.HoursOfExceedance(deltaT, in.Occupancy, in.RoomIDs, factor, window)
	if err != nil {
		return nil, fmt.Errorf("criterion A: %w", err)
	}

	// Criterion B runs on the bedroom subset of the operative tensor.
	bedroomIDs := make([]string, len(bedrooms))
	bedroomOpTemp := make(series.Tensor, len(opTemp))
	for s := range opTemp {
		bedroomOpTemp[s] = make(series.Grid, len(bedrooms))
		for i, r := range bedrooms {
			bedroomOpTemp[s][i] = opTemp[s][r]
		}
	}
	for i, r := range bedrooms {
		bedroomIDs[i] = in.RoomIDs[r]
	}
	var critB [][]criteria.Result
	if len(bedrooms) > 0 {
		critB, err = criteria.BedroomComfort(bedroomOpTemp, bedroomIDs, factor)
		if err != nil {
			return nil, fmt.Errorf("criterion B: %w", err)
		}
	}
	a.logger.Debug("criteria evaluated")

	rs := &report.ResultSet{
		Summary:     buildSummary("CIBSE TM59 Assessment of overheating risk", in, a.cfg, factor),
		Definitions: report.TM59Definitions,
	}

	labels := airSpeedLabels(a.cfg.AirSpeeds)
	for s, label := range labels {
		rs.CriterionTables = append(rs.CriterionTables,
			report.BuildTable("Criterion A", label, critA[s], in.RoomNames))
		if critB != nil {
			rs.CriterionTables = append(rs.CriterionTables,
				report.BuildTable("Criterion B", label, critB[s], in.RoomNames))
		}

		// Index criterion B results by room for the merge.
		bByRoom := make(map[string]criteria.Result)
		if critB != nil {
			for _, res := range critB[s] {
				bByRoom[res.RoomID] = res
			}
		}

		merged := report.MergedTable{AirSpeed: label}
		for r, id := range in.RoomIDs {
			outcomes := []report.MergedCriterion{mergedOutcome("Criterion A", critA[s][r])}
			overallFail := critA[s][r].Fail
			if res, ok := bByRoom[id]; ok {
				outcomes = append(outcomes, mergedOutcome("Criterion B", res))
				overallFail = overallFail || res.Fail
			} else {
				// Not a bedroom: criterion B does not apply and the room
				// passes it by definition.
				outcomes = append(outcomes, report.MergedCriterion{
					Name:    "Criterion B",
					Verdict: report.Verdict(false),
				})
			}
			merged.Rows = append(merged.Rows, report.MergedRow{
				RoomID:     id,
				RoomName:   in.RoomNames[id],
				Vulnerable: vulnerable[r],
				Criteria:   outcomes,
				Verdict:    report.Verdict(overallFail),
				Fail:       overallFail,
			})
		}
		rs.MergedTables = append(rs.MergedTables, merged)
	}

	a.logger.Infow("TM59 assessment complete",
		"rooms", len(in.RoomIDs), "bedrooms", len(bedrooms), "air_speeds", len(labels))
	return rs, nil
}

// deltaTByCategory computes delta T with the Category II bound, then
// recomputes rooms in the vulnerable-occupancy group against the stricter
// Category I bound. It also returns the per-room vulnerability flags in
// canonical room order.
func (a *TM59) deltaTByCategory(in *Inputs, opTemp series.Tensor, runningMean []float64) (series.Tensor, []bool, error) {
	maxII := comfort.MaxAcceptableSeries(runningMean, comfort.CategoryIIOffset, a.cfg.AirSpeeds)
	deltaT, err := comfort.DeltaT(opTemp, maxII)
	if err != nil {
		return nil, nil, fmt.Errorf("delta T (category II): %w", err)
	}

	vulnerable := make([]bool, len(in.RoomIDs))
	any := false
	for r, id := range in.RoomIDs {
		if in.inGroup(a.cfg.VulnerableGroup, id) {
			vulnerable[r] = true
			any = true
		}
	}
	if !any {
		return deltaT, vulnerable, nil
	}

	maxI := comfort.MaxAcceptableSeries(runningMean, comfort.CategoryIOffset, a.cfg.AirSpeeds)
	deltaTVulnerable, err := comfort.DeltaT(opTemp, maxI)
	if err != nil {
		return nil, nil, fmt.Errorf("delta T (category I): %w", err)
	}
	for s := range deltaT {
		for r := range deltaT[s] {
			if vulnerable[r] {
				deltaT[s][r] = deltaTVulnerable[s][r]
			}
		}
	}
	return deltaT, vulnerable, nil
}
