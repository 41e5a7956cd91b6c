// Package finance provides growth and inflation projections.
package finance

import (
	"math"

	"github.com/moneymapp/moneymapp-calc/pkg/validation"
)

// ProjectionPoint is the projected value at the end of a period.
type ProjectionPoint struct {
	Period       int     `json:"period" yaml:"period"`
	Value        float64 `json:"value" yaml:"value"`
	Contributed  float64 `json:"contributed" yaml:"contributed"`
	Accumulation float64 `json:"accumulation" yaml:"accumulation"`
}

func grow(value, rate float64, periods int) float64 {
	if periods == 0 || rate == 0 {
		return value
	}
	return value * math.Pow(1+rate, float64(periods))
}

func validateGrowth(valueName string, value, rate float64) error {
	if err := validation.ValidateFinite(valueName, value); err != nil {
		return err
	}
	return validation.ValidateFinite("rate", rate)
}

// CompoundGrowth projects pv forward periods times at the periodic rate.
// Negative periods discount the value instead.
func CompoundGrowth(pv, rate float64, periods int) (float64, error) {
	if err := validateGrowth("present value", pv, rate); err != nil {
		return 0, err
	}
	return grow(pv, rate, periods), nil
}

// InflationProjection projects an annual cost forward years times at the
// annual inflation rate.
func InflationProjection(baseCost, rate float64, years int) (float64, error) {
	if err := validateGrowth("base cost", baseCost, rate); err != nil {
		return 0, err
	}
	return grow(baseCost, rate, years), nil
}

// GrowthSeries returns the value at the end of each period 1..periods. A
// contribution is added at the start of every period before it earns
// interest; pass zero for plain compound growth.
func GrowthSeries(pv, contribution, rate float64, periods int) ([]ProjectionPoint, error) {
	if err := validateGrowth("present value", pv, rate); err != nil {
		return nil, err
	}
	if err := validation.ValidateFinite("contribution", contribution); err != nil {
		return nil, err
	}
	if err := validation.ValidatePeriods(periods); err != nil {
		return nil, err
	}

	series := make([]ProjectionPoint, 0, periods)
	value := pv
	contributed := pv
	for period := 1; period <= periods; period++ {
		value += contribution
		contributed += contribution
		value = grow(value, rate, 1)
		series = append(series, ProjectionPoint{
			Period:       period,
			Value:        value,
			Contributed:  contributed,
			Accumulation: value - contributed,
		})
	}
	return series, nil
}

// InflationSeries returns the projected cost at the end of each year 1..years.
func InflationSeries(baseCost, rate float64, years int) ([]ProjectionPoint, error) {
	if err := validateGrowth("base cost", baseCost, rate); err != nil {
		return nil, err
	}
	if err := validation.ValidatePeriods(years); err != nil {
		return nil, err
	}

	series := make([]ProjectionPoint, 0, years)
	for year := 1; year <= years; year++ {
		value := grow(baseCost, rate, year)
		series = append(series, ProjectionPoint{
			Period:       year,
			Value:        value,
			Contributed:  baseCost,
			Accumulation: value - baseCost,
		})
	}
	return series, nil
}
