package assessment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chrissnell/overheat/pkg/series"
)

// Sentinel errors for input validation failures. These are fatal: a run
// never returns partial results.
var (
	// ErrMissingOccupancy marks analysed rooms whose annual occupancy sums
	// to zero. Such a room would pass every criterion vacuously, so it is a
	// configuration error upstream, not a valid result.
	ErrMissingOccupancy = errors.New("rooms are missing occupancy data")
	// ErrIntervalMismatch marks time axes that do not divide into the
	// configured annual calendar.
	ErrIntervalMismatch = errors.New("reporting interval does not divide the annual calendar")
)

// Project is the read-only session metadata attached to a run.
type Project struct {
	Name        string
	JobNumber   string
	WeatherFile string
	WeatherYear int
	// TimeZone is the weather file's offset from GMT in hours.
	TimeZone  float64
	Longitude float64
	Latitude  float64
}

// Inputs is the simulation output a wizard consumes, as extracted upstream.
// RoomIDs defines the canonical room ordering: every per-room axis of every
// array aligns with it.
type Inputs struct {
	RoomIDs         []string
	RoomNames       map[string]string
	RoomGroups      map[string][]string
	AirTemp         series.Grid
	MeanRadiantTemp series.Grid
	DryBulbTemp     []float64
	Occupancy       series.Grid
	Project         Project
}

// validate checks the room axes against RoomIDs and fails fast on any
// analysed room with zero annual occupancy, listing the offenders.
func (in *Inputs) validate() error {
	rooms := len(in.RoomIDs)
	if len(in.AirTemp) != rooms || len(in.MeanRadiantTemp) != rooms || len(in.Occupancy) != rooms {
		return fmt.Errorf("room axis mismatch: %d room IDs, air temp %d, mean radiant temp %d, occupancy %d",
			rooms, len(in.AirTemp), len(in.MeanRadiantTemp), len(in.Occupancy))
	}

	var missing []string
	for r, row := range in.Occupancy {
		total := 0.0
		for _, v := range row {
			total += v
		}
		if total == 0 {
			missing = append(missing, in.RoomIDs[r])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingOccupancy, strings.Join(missing, ", "))
	}
	return nil
}

// factor returns the number of time steps per hour, derived from the time
// axis length. It must be a positive integer.
func (in *Inputs) factor(hoursPerYear int) (int, error) {
	if len(in.AirTemp) == 0 {
		return 0, fmt.Errorf("no rooms to analyse")
	}
	steps := len(in.AirTemp[0])
	if steps == 0 || steps%hoursPerYear != 0 {
		return 0, fmt.Errorf("%w: %d steps over %d hours", ErrIntervalMismatch, steps, hoursPerYear)
	}
	return steps / hoursPerYear, nil
}

// inGroup reports whether a room ID belongs to the named room-ID group.
func (in *Inputs) inGroup(group, roomID string) bool {
	for _, id := range in.RoomGroups[group] {
		if id == roomID {
			return true
		}
	}
	return false
}
