// Package report assembles criterion results into the room-keyed tables
// consumed by downstream report writers, and encodes result sets as JSON or
// MessagePack.
package report

import (
	"math"
	"time"

	"github.com/chrissnell/overheat/internal/criteria"
)

// Summary carries the run-level context attached to every result set.
type Summary struct {
	RunID                    string    `json:"run_id" msgpack:"run_id"`
	EngineVersion            string    `json:"engine_version" msgpack:"engine_version"`
	AnalysisType             string    `json:"analysis_type" msgpack:"analysis_type"`
	ProjectName              string    `json:"project_name" msgpack:"project_name"`
	JobNumber                string    `json:"job_number,omitempty" msgpack:"job_number"`
	WeatherFile              string    `json:"weather_file" msgpack:"weather_file"`
	WeatherYear              int       `json:"weather_year" msgpack:"weather_year"`
	TimeZone                 string    `json:"time_zone" msgpack:"time_zone"`
	Longitude                float64   `json:"longitude" msgpack:"longitude"`
	Latitude                 float64   `json:"latitude" msgpack:"latitude"`
	ReportingIntervalMinutes float64   `json:"reporting_interval_minutes" msgpack:"reporting_interval_minutes"`
	AnalysedSpaces           int       `json:"analysed_spaces" msgpack:"analysed_spaces"`
	AirSpeeds                []string  `json:"air_speeds" msgpack:"air_speeds"`
	AnalysisDate             time.Time `json:"analysis_date" msgpack:"analysis_date"`
}

// Row is one room's outcome for a single criterion at a single air speed.
type Row struct {
	RoomID   string            `json:"room_id" msgpack:"room_id"`
	RoomName string            `json:"room_name" msgpack:"room_name"`
	Verdict  string            `json:"verdict" msgpack:"verdict"`
	Fail     bool              `json:"fail" msgpack:"fail"`
	Metrics  []criteria.Metric `json:"metrics" msgpack:"metrics"`
}

// Table is a per-criterion, per-air-speed table keyed by room.
type Table struct {
	Criterion string `json:"criterion" msgpack:"criterion"`
	AirSpeed  string `json:"air_speed" msgpack:"air_speed"`
	Rows      []Row  `json:"rows" msgpack:"rows"`
}

// MergedCriterion is one criterion's contribution to a merged row. Assessed
// is false when the criterion did not apply to the room (a non-bedroom under
// TM59 criterion B), in which case the room is treated as passing it.
type MergedCriterion struct {
	Name     string            `json:"name" msgpack:"name"`
	Verdict  string            `json:"verdict" msgpack:"verdict"`
	Fail     bool              `json:"fail" msgpack:"fail"`
	Assessed bool              `json:"assessed" msgpack:"assessed"`
	Metrics  []criteria.Metric `json:"metrics,omitempty" msgpack:"metrics"`
}

// MergedRow is one room's combined outcome across all criteria of a standard
// at a single air speed.
type MergedRow struct {
	RoomID     string            `json:"room_id" msgpack:"room_id"`
	RoomName   string            `json:"room_name" msgpack:"room_name"`
	Vulnerable bool              `json:"vulnerable,omitempty" msgpack:"vulnerable"`
	Criteria   []MergedCriterion `json:"criteria" msgpack:"criteria"`
	Verdict    string            `json:"verdict" msgpack:"verdict"`
	Fail       bool              `json:"fail" msgpack:"fail"`
}

// MergedTable is the overall verdict table for one air speed.
type MergedTable struct {
	AirSpeed string      `json:"air_speed" msgpack:"air_speed"`
	Rows     []MergedRow `json:"rows" msgpack:"rows"`
}

// ResultSet is everything a downstream report writer needs for one run.
type ResultSet struct {
	Summary         Summary           `json:"summary" msgpack:"summary"`
	Definitions     map[string]string `json:"definitions" msgpack:"definitions"`
	CriterionTables []Table           `json:"criterion_tables" msgpack:"criterion_tables"`
	MergedTables    []MergedTable     `json:"merged_tables" msgpack:"merged_tables"`
}

// Verdict renders a failure flag the way the spreadsheets expect it.
func Verdict(fail bool) string {
	if fail {
		return "Fail"
	}
	return "Pass"
}

// round2 rounds metric values for presentation. Raw values stay on the
// criteria results.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildTable turns one criterion's per-room results at one air speed into a
// table, resolving room names and rounding metrics to two decimals.
func BuildTable(criterion, airSpeed string, results []criteria.Result, roomNames map[string]string) Table {
	rows := make([]Row, len(results))
	for i, res := range results {
		metrics := make([]criteria.Metric, len(res.Metrics))
		for j, m := range res.Metrics {
			metrics[j] = criteria.Metric{Name: m.Name, Value: round2(m.Value)}
		}
		rows[i] = Row{
			RoomID:   res.RoomID,
			RoomName: roomNames[res.RoomID],
			Verdict:  Verdict(res.Fail),
			Fail:     res.Fail,
			Metrics:  metrics,
		}
	}
	return Table{Criterion: criterion, AirSpeed: airSpeed, Rows: rows}
}

// Criterion definitions shown alongside the results, keyed by metric column.
var (
	TM52Definitions = map[string]string{
		criteria.MetricPctHoursDeltaT: "The percentage of occupied hours where delta T equals or exceeds the threshold (1 kelvin) over the total occupied hours.",
		criteria.MetricMaxDailyWeight: "The maximum daily weight taken from the year.",
		criteria.MetricMaxDeltaT:      "The maximum delta T taken from the year.",
	}
	TM59Definitions = map[string]string{
		criteria.MetricPctHoursDeltaT: "The percentage of occupied hours where delta T equals or exceeds the threshold (1 kelvin) over the total occupied hours.",
		criteria.MetricHoursOver26:    "Number of hours where the operative temperature is strictly greater than 26 Deg. C.",
		criteria.MetricPctHoursOver26: "The percentage of hours in a bedroom where the operative temperature exceeds the threshold (26 degrees celsius) between 10pm and 7am over the total annual hours between 10pm and 7am.",
	}
	TM59MechVentDefinitions = map[string]string{
		criteria.MetricPctOccupiedOver26: "The percentage of occupied hours where the operative temperature exceeds the threshold (26 degrees celsius) over the total annual occupied hours.",
	}
)
