package validation

import (
	"errors"
	"fmt"

	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/moneymapp/moneymapp-calc/pkg/mathutil"
)

var (
	// ErrInvalidTerm is returned when an amortization term is not at least one period.
	ErrInvalidTerm = errors.New("term must be at least 1 period")

	// ErrInvalidPeriods is returned when a projection series is asked for a negative horizon.
	ErrInvalidPeriods = errors.New("periods must not be negative")

	// ErrTooManyPeriods is returned when a calculation asks for more than constants.MaxPeriods periods.
	ErrTooManyPeriods = errors.New("too many periods")

	// ErrNonFinite is returned when a numeric argument or result is NaN or infinite.
	ErrNonFinite = errors.New("value must be a finite number")

	// ErrUnknownCalculationType is returned for a calculation type the calculators do not know.
	ErrUnknownCalculationType = errors.New("unknown calculation type")

	// ErrInvalidDate is returned when a start date does not match constants.DateTimeLayout.
	ErrInvalidDate = errors.New("invalid date")
)

var invalidArguments = []error{
	ErrInvalidTerm,
	ErrInvalidPeriods,
	ErrTooManyPeriods,
	ErrNonFinite,
	ErrUnknownCalculationType,
	ErrInvalidDate,
}

// IsInvalidArgument reports whether err stems from one of the argument checks above.
func IsInvalidArgument(err error) bool {
	for _, target := range invalidArguments {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidateTerm requires term >= 1.
func ValidateTerm(term int) error {
	if term < 1 {
		return fmt.Errorf("term %d: %w", term, ErrInvalidTerm)
	}
	return nil
}

// ValidatePeriods requires periods >= 0.
func ValidatePeriods(periods int) error {
	if periods < 0 {
		return fmt.Errorf("periods %d: %w", periods, ErrInvalidPeriods)
	}
	return nil
}

// ValidatePeriodLimit caps periods at constants.MaxPeriods.
func ValidatePeriodLimit(periods int) error {
	if periods > constants.MaxPeriods {
		return fmt.Errorf("periods %d exceeds %d: %w", periods, constants.MaxPeriods, ErrTooManyPeriods)
	}
	return nil
}

// ValidateFinite rejects NaN and infinite values, naming the argument in the error.
func ValidateFinite(name string, value float64) error {
	if !mathutil.IsFinite(value) {
		return fmt.Errorf("%s %v: %w", name, value, ErrNonFinite)
	}
	return nil
}
