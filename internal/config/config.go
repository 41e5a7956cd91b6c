// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/moneymapp/moneymapp-calc/pkg/datetime"
	"github.com/moneymapp/moneymapp-calc/pkg/mathutil"
	"github.com/moneymapp/moneymapp-calc/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for a batch of calculations.
type Configuration struct {
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
	Calculations []Calculation `yaml:"calculations"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`   // pretty, csv
	Currency string `yaml:"currency,omitempty"` // symbol prefixed to amounts
}

// Calculation describes one calculator invocation.
type Calculation struct {
	Name string `yaml:"name" json:"name,omitempty"`
	Type string `yaml:"type" json:"type"`
	// Amount is the principal, present value or base cost depending on Type.
	Amount float64 `yaml:"amount" json:"amount"`
	// Rate is a percentage per period, e.g. 2 for 2%.
	Rate float64 `yaml:"rate" json:"rate"`
	// AnnualRate marks Rate as annual; monthly calculators convert it to the
	// equivalent monthly rate.
	AnnualRate   bool    `yaml:"annualRate,omitempty" json:"annualRate,omitempty"`
	Periods      int     `yaml:"periods" json:"periods"`
	Contribution float64 `yaml:"contribution,omitempty" json:"contribution,omitempty"`
	StartDate    string  `yaml:"startDate,omitempty" json:"startDate,omitempty"`
	Disabled     bool    `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r,
// e.g. an uploaded file.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	// Unmarshal only sees environment overrides for keys present in the file.
	if format := v.GetString("output.format"); format != "" {
		configuration.Output.Format = format
	}
	if currency := v.GetString("output.currency"); currency != "" {
		configuration.Output.Currency = currency
	}
	if level := v.GetString("logging.level"); level != "" {
		configuration.Logging.Level = level
	}
	if format := v.GetString("logging.format"); format != "" {
		configuration.Logging.Format = format
	}

	return &configuration, nil
}

// Validate returns an error for the first calculation that cannot be run.
func (conf *Configuration) Validate() error {
	for i, calc := range conf.Calculations {
		if calc.Disabled {
			continue
		}
		if err := calc.Validate(); err != nil {
			return fmt.Errorf("calculation %s: %w", calc.Label(i), err)
		}
	}
	return nil
}

// Validate checks a single calculation's type, numbers, term and start date.
// Periods are capped at constants.MaxPeriods.
func (calc Calculation) Validate() error {
	if err := validation.ValidateCalculationType(calc.Type); err != nil {
		return err
	}
	if err := validation.ValidateFinite("amount", calc.Amount); err != nil {
		return err
	}
	if err := validation.ValidateFinite("rate", calc.Rate); err != nil {
		return err
	}
	if err := validation.ValidateFinite("contribution", calc.Contribution); err != nil {
		return err
	}
	if calc.IsSchedule() || calc.Type == constants.CalculationInstallment {
		if err := validation.ValidateTerm(calc.Periods); err != nil {
			return err
		}
	} else if err := validation.ValidatePeriods(calc.Periods); err != nil {
		return err
	}
	if err := validation.ValidatePeriodLimit(calc.Periods); err != nil {
		return err
	}
	if err := datetime.ValidateDate(calc.StartDate); err != nil {
		return fmt.Errorf("start %w: %w", validation.ErrInvalidDate, err)
	}
	return nil
}

// IsSchedule reports whether the calculation produces a per-period schedule.
func (calc Calculation) IsSchedule() bool {
	return calc.Type == constants.CalculationSAC || calc.Type == constants.CalculationPrice
}

// Label returns the calculation name or a positional fallback.
func (calc Calculation) Label(index int) string {
	if calc.Name != "" {
		return calc.Name
	}
	return fmt.Sprintf("%s #%d", calc.Type, index+1)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	active := 0
	seen := make(map[string]int)
	for i, calc := range conf.Calculations {
		if calc.Disabled {
			continue
		}
		active++

		label := calc.Label(i)
		seen[label]++
		if seen[label] == 2 {
			warnings = append(warnings, fmt.Sprintf("Calculation name '%s' is used more than once", label))
		}
		if mathutil.IsZero(calc.Amount) {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' has a zero amount", label))
		}
		if calc.Amount < 0 {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' has a negative amount (%.2f)", label, calc.Amount))
		}
		if calc.Rate < 0 {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' has a negative rate (%.2f%%)", label, calc.Rate))
		}
		if calc.Rate > 0 && calc.Rate < 1 && !calc.AnnualRate {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' rate %.4f%% is below one percent; rates are percentages (2 means 2%%)", label, calc.Rate))
		}
		if calc.Contribution != 0 && calc.Type != constants.CalculationCompound {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' contribution is only used by compound calculations", label))
		}
		if calc.StartDate != "" && !calc.IsSchedule() {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' startDate is only used by schedules", label))
		}
		if calc.AnnualRate && calc.Type == constants.CalculationInflation {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' annualRate has no effect on inflation projections, which are already yearly", label))
		}
	}

	if active == 0 {
		warnings = append(warnings, "No active calculations configured")
	}

	return warnings
}
