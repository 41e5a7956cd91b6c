// Package calculator dispatches configured calculations to the loan and
// growth calculators and collects their results.
package calculator

import (
	"context"
	"fmt"

	"github.com/moneymapp/moneymapp-calc/internal/config"
	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/moneymapp/moneymapp-calc/pkg/finance"
	"github.com/moneymapp/moneymapp-calc/pkg/loans"
	"github.com/moneymapp/moneymapp-calc/pkg/mathutil"
	"github.com/moneymapp/moneymapp-calc/pkg/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of one calculation. Value is set for every type:
// the projected value, the level installment, or the first installment of a
// schedule.
type Result struct {
	Name     string                    `json:"name"`
	Type     string                    `json:"type"`
	Rate     float64                   `json:"rate"`
	Value    float64                   `json:"value"`
	Schedule []loans.Installment       `json:"schedule,omitempty"`
	Summary  *loans.Summary            `json:"summary,omitempty"`
	Series   []finance.ProjectionPoint `json:"series,omitempty"`
}

// Calculator evaluates calculations.
type Calculator struct {
	logger    *zap.Logger
	generator *loans.ScheduleGenerator
}

// New creates a Calculator.
func New(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, generator: loans.NewScheduleGenerator(logger)}
}

// PeriodicRate converts the calculation's percentage rate into the fractional
// rate the calculators take.
func PeriodicRate(calc config.Calculation) float64 {
	rate := mathutil.PercentToRate(calc.Rate)
	if calc.AnnualRate && calc.Type != constants.CalculationInflation {
		rate = mathutil.AnnualToMonthlyRate(rate)
	}
	return rate
}

// Calculate runs a single calculation.
func (c *Calculator) Calculate(calc config.Calculation) (Result, error) {
	if err := calc.Validate(); err != nil {
		return Result{}, err
	}

	rate := PeriodicRate(calc)
	result := Result{Name: calc.Name, Type: calc.Type, Rate: rate}

	var err error
	switch calc.Type {
	case constants.CalculationCompound:
		result.Series, err = finance.GrowthSeries(calc.Amount, calc.Contribution, rate, calc.Periods)
		if err != nil {
			break
		}
		if n := len(result.Series); n > 0 {
			result.Value = result.Series[n-1].Value
		} else {
			result.Value, err = finance.CompoundGrowth(calc.Amount, rate, calc.Periods)
		}
	case constants.CalculationInflation:
		result.Value, err = finance.InflationProjection(calc.Amount, rate, calc.Periods)
		if err != nil {
			break
		}
		result.Series, err = finance.InflationSeries(calc.Amount, rate, calc.Periods)
	case constants.CalculationInstallment:
		result.Value, err = loans.FixedInstallment(calc.Amount, rate, calc.Periods)
	case constants.CalculationSAC, constants.CalculationPrice:
		result.Schedule, err = c.generator.Generate(loans.System(calc.Type), calc.Amount, rate, calc.Periods, calc.StartDate)
		if err != nil {
			break
		}
		summary := loans.Summarize(result.Schedule)
		result.Summary = &summary
		result.Value = result.Schedule[0].Payment
	default:
		err = fmt.Errorf("unknown calculation type %q", calc.Type)
	}
	if err == nil {
		err = ensureFinite(result)
	}
	if err != nil {
		return Result{}, err
	}

	c.logger.Debug(fmt.Sprintf("computed %s calculation %s", calc.Type, calc.Name),
		zap.String("op", "calculator.Calculate"),
		zap.Float64("value", result.Value),
	)
	return result, nil
}

// ensureFinite rejects results that overflowed even though every input was
// finite, e.g. a large rate compounded over many periods.
func ensureFinite(result Result) error {
	var err error
	check := func(name string, value float64) {
		if err == nil {
			err = validation.ValidateFinite(name, value)
		}
	}

	check("value", result.Value)
	for _, point := range result.Series {
		check(fmt.Sprintf("period %d value", point.Period), point.Value)
		check(fmt.Sprintf("period %d contributed", point.Period), point.Contributed)
		check(fmt.Sprintf("period %d accumulation", point.Period), point.Accumulation)
	}
	for _, installment := range result.Schedule {
		check(fmt.Sprintf("installment %d payment", installment.Period), installment.Payment)
		check(fmt.Sprintf("installment %d interest", installment.Period), installment.Interest)
		check(fmt.Sprintf("installment %d amortization", installment.Period), installment.Amortization)
		check(fmt.Sprintf("installment %d balance", installment.Period), installment.Balance)
	}
	if result.Summary != nil {
		check("total payment", result.Summary.TotalPayment)
		check("total interest", result.Summary.TotalInterest)
		check("total amortization", result.Summary.TotalAmortization)
	}

	if err != nil {
		return fmt.Errorf("result overflows: %w", err)
	}
	return nil
}

// Run evaluates every active calculation in the configuration concurrently
// and returns the results in configuration order.
func Run(ctx context.Context, logger *zap.Logger, conf config.Configuration) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	calc := New(logger)

	var active []config.Calculation
	for i, c := range conf.Calculations {
		if c.Disabled {
			logger.Debug(fmt.Sprintf("skipping calculation %s because it is disabled", c.Label(i)),
				zap.String("op", "calculator.Run"),
			)
			continue
		}
		if c.Name == "" {
			c.Name = c.Label(i)
		}
		active = append(active, c)
	}

	results := make([]Result, len(active))
	g, ctx := errgroup.WithContext(ctx)
	for i := range active {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := calc.Calculate(active[i])
			if err != nil {
				return fmt.Errorf("calculation %s: %w", active[i].Name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("calculations complete",
		zap.String("op", "calculator.Run"),
		zap.Int("count", len(results)),
	)
	return results, nil
}
