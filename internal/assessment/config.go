package assessment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the calendar and scenario settings shared by every wizard.
// The standard values live in DefaultConfig; overriding them is only useful
// for non-standard calendars or reduced air-speed sets in testing.
type Config struct {
	// AirSpeeds are the elevated air-speed scenarios in m/s, one tensor
	// slice each.
	AirSpeeds []float64 `yaml:"air_speeds"`
	// HoursPerYear and DaysPerYear define the annual calendar.
	HoursPerYear int `yaml:"hours_per_year"`
	DaysPerYear  int `yaml:"days_per_year"`
	// SeasonStartHour and SeasonEndHour bound the May-September window of
	// the hours-of-exceedance criterion, as a half-open hour-of-year range.
	SeasonStartHour int `yaml:"season_start_hour"`
	SeasonEndHour   int `yaml:"season_end_hour"`
	// VulnerableGroup names the room-ID group whose members are assessed
	// against the stricter Category I maximum acceptable temperature.
	VulnerableGroup string `yaml:"vulnerable_group"`
}

// DefaultConfig returns the CIBSE standard settings: the nine elevated air
// speeds, a 365-day non-leap year, and the May 1 - Sept 30 window (Jan 1 to
// May 1 is 120 days, Jan 1 to Oct 1 is 273).
func DefaultConfig() Config {
	return Config{
		AirSpeeds:       []float64{0.1, 0.15, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
		HoursPerYear:    8760,
		DaysPerYear:     365,
		SeasonStartHour: 120 * 24,
		SeasonEndHour:   273 * 24,
		VulnerableGroup: "TM59_VulnerableRooms",
	}
}

// LoadConfig reads a YAML config file over the defaults, so a file only
// needs the settings it changes.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configs that cannot describe a well-formed year.
func (c Config) Validate() error {
	if len(c.AirSpeeds) == 0 {
		return fmt.Errorf("config: at least one air speed is required")
	}
	if c.HoursPerYear <= 0 || c.DaysPerYear <= 0 {
		return fmt.Errorf("config: hours per year %d and days per year %d must be positive", c.HoursPerYear, c.DaysPerYear)
	}
	if c.HoursPerYear%c.DaysPerYear != 0 {
		return fmt.Errorf("config: hours per year %d is not a whole number of %d days", c.HoursPerYear, c.DaysPerYear)
	}
	if c.SeasonStartHour < 0 || c.SeasonEndHour > c.HoursPerYear || c.SeasonStartHour >= c.SeasonEndHour {
		return fmt.Errorf("config: season window [%d, %d) is not inside the year", c.SeasonStartHour, c.SeasonEndHour)
	}
	return nil
}
