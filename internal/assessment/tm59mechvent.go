package assessment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chrissnell/overheat/internal/criteria"
	"github.com/chrissnell/overheat/internal/report"
	"github.com/chrissnell/overheat/pkg/comfort"
)

// TM59MechVent assesses homes with restricted window openings against the
// CIBSE TM59 fixed-temperature criterion: occupied hours with operative
// temperature above 26°C may not pass 3% of annual occupied hours. With a
// single criterion, the overall verdict is the criterion verdict.
type TM59MechVent struct {
	cfg    Config
	logger *zap.SugaredLogger
}

// NewTM59MechVent creates a TM59 mechanical-ventilation wizard. A nil logger
// falls back to the package logger.
func NewTM59MechVent(cfg Config, logger *zap.SugaredLogger) *TM59MechVent {
	return &TM59MechVent{cfg: cfg, logger: loggerOrDefault(logger)}
}

// Run executes the fixed-temperature pipeline. No running mean or delta T is
// needed: the threshold does not adapt to outdoor temperature.
func (a *TM59MechVent) Run(in *Inputs) (*report.ResultSet, error) {
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
	a.logger.Debugw("starting TM59 mech-vent assessment", "rooms", len(in.RoomIDs), "factor", factor)

	opTemp, err := comfort.OperativeTensor(in.AirTemp, in.MeanRadiantTemp, a.cfg.AirSpeeds)
	if err != nil {
		return nil, fmt.Errorf("operative temperature: %w", err)
	}

	fixed, err := criteria.MechVentFixedTemperature(opTemp, in.Occupancy, in.RoomIDs)
	if err != nil {
		return nil, fmt.Errorf("fixed temperature criterion: %w", err)
	}

	rs := &report.ResultSet{
		Summary:     buildSummary("CIBSE TM59 Mechanically Ventilated Assessment of overheating risk", in, a.cfg, factor),
		Definitions: report.TM59MechVentDefinitions,
	}

	labels := airSpeedLabels(a.cfg.AirSpeeds)
	for s, label := range labels {
		rs.CriterionTables = append(rs.CriterionTables,
			report.BuildTable("Fixed Temp Criterion", label, fixed[s], in.RoomNames))

		merged := report.MergedTable{AirSpeed: label}
		for r, id := range in.RoomIDs {
			res := fixed[s][r]
			merged.Rows = append(merged.Rows, report.MergedRow{
				RoomID:   id,
				RoomName: in.RoomNames[id],
				Criteria: []report.MergedCriterion{mergedOutcome("Fixed Temp Criterion", res)},
				Verdict:  report.Verdict(res.Fail),
				Fail:     res.Fail,
			})
		}
		rs.MergedTables = append(rs.MergedTables, merged)
	}

	a.logger.Infow("TM59 mech-vent assessment complete", "rooms", len(in.RoomIDs), "air_speeds", len(labels))
	return rs, nil
}
