// Package loans provides amortization calculations for fixed-installment
// (Price table) and constant-amortization (SAC) loans.
package loans

import (
	"fmt"
	"math"

	"github.com/moneymapp/moneymapp-calc/pkg/datetime"
	"github.com/moneymapp/moneymapp-calc/pkg/validation"
	"go.uber.org/zap"
)

// Installment holds the values for a given period of a schedule.
type Installment struct {
	Period       int     `json:"period" yaml:"period"`
	DueDate      string  `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Payment      float64 `json:"payment" yaml:"payment"`
	Interest     float64 `json:"interest" yaml:"interest"`
	Amortization float64 `json:"amortization" yaml:"amortization"`
	Balance      float64 `json:"balance" yaml:"balance"`
}

// Summary totals a schedule.
type Summary struct {
	Installments      int     `json:"installments"`
	TotalPayment      float64 `json:"totalPayment"`
	TotalInterest     float64 `json:"totalInterest"`
	TotalAmortization float64 `json:"totalAmortization"`
}

func validateLoan(principal, rate float64, term int) error {
	if err := validation.ValidateFinite("principal", principal); err != nil {
		return err
	}
	if err := validation.ValidateFinite("rate", rate); err != nil {
		return err
	}
	return validation.ValidateTerm(term)
}

// FixedInstallment calculates the level payment that amortizes principal over
// term periods at the periodic rate (Price table).
func FixedInstallment(principal, rate float64, term int) (float64, error) {
	if err := validateLoan(principal, rate, term); err != nil {
		return 0, err
	}
	return fixedInstallment(principal, rate, term), nil
}

func fixedInstallment(principal, rate float64, term int) float64 {
	if rate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(term)
	}
	return principal * rate / (1 - math.Pow(1+rate, -float64(term)))
}

// SACSchedule builds the constant-amortization schedule: the amortization
// share is principal/term every period and interest is charged on the
// balance before that period's amortization.
func SACSchedule(principal, rate float64, term int) ([]Installment, error) {
	if err := validateLoan(principal, rate, term); err != nil {
		return nil, err
	}

	amortization := principal / float64(term)
	balance := principal
	schedule := make([]Installment, 0, term)
	for period := 1; period <= term; period++ {
		interest := balance * rate
		balance -= amortization
		schedule = append(schedule, Installment{
			Period:       period,
			Payment:      amortization + interest,
			Interest:     interest,
			Amortization: amortization,
			// Floating-point drift can leave a tiny negative residue.
			Balance: math.Max(0, balance),
		})
	}
	return schedule, nil
}

// PriceSchedule builds the fixed-installment schedule: every payment is equal,
// the interest share shrinks and the amortization share grows.
func PriceSchedule(principal, rate float64, term int) ([]Installment, error) {
	if err := validateLoan(principal, rate, term); err != nil {
		return nil, err
	}

	payment := fixedInstallment(principal, rate, term)
	balance := principal
	schedule := make([]Installment, 0, term)
	for period := 1; period <= term; period++ {
		interest := balance * rate
		amortization := payment - interest
		balance -= amortization
		schedule = append(schedule, Installment{
			Period:       period,
			Payment:      payment,
			Interest:     interest,
			Amortization: amortization,
			Balance:      math.Max(0, balance),
		})
	}
	return schedule, nil
}

// Summarize totals the payments, interest and amortization of a schedule.
func Summarize(schedule []Installment) Summary {
	summary := Summary{Installments: len(schedule)}
	for _, installment := range schedule {
		summary.TotalPayment += installment.Payment
		summary.TotalInterest += installment.Interest
		summary.TotalAmortization += installment.Amortization
	}
	return summary
}

// ScheduleGenerator builds schedules and labels each period with its due
// month when a start date is known.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Generate builds a SAC or Price schedule. An empty startDate leaves DueDate
// unset; otherwise period 1 falls due in the start month.
func (g *ScheduleGenerator) Generate(system System, principal, rate float64, term int, startDate string) ([]Installment, error) {
	var (
		schedule []Installment
		err      error
	)
	switch system {
	case SystemSAC:
		schedule, err = SACSchedule(principal, rate, term)
	case SystemPrice:
		schedule, err = PriceSchedule(principal, rate, term)
	default:
		return nil, fmt.Errorf("unknown amortization system %q", system)
	}
	if err != nil {
		return nil, err
	}

	if startDate != "" {
		for i := range schedule {
			due, err := datetime.OffsetDate(startDate, datetime.DateTimeLayout, i)
			if err != nil {
				return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
			}
			schedule[i].DueDate = due
		}
	}

	g.logger.Debug(fmt.Sprintf("generated %s schedule with %d installments", system, len(schedule)),
		zap.String("op", "loans.Generate"),
		zap.Float64("principal", principal),
		zap.Float64("rate", rate),
	)
	return schedule, nil
}

// System names an amortization scheme.
type System string

const (
	// SystemSAC holds the amortization share constant.
	SystemSAC System = "sac"
	// SystemPrice holds the payment constant.
	SystemPrice System = "price"
)
