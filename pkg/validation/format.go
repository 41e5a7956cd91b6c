// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/moneymapp/moneymapp-calc/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateCalculationType checks if the calculation type is one the calculators know.
func ValidateCalculationType(kind string) error {
	switch kind {
	case constants.CalculationCompound, constants.CalculationInstallment, constants.CalculationPrice,
		constants.CalculationSAC, constants.CalculationInflation:
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownCalculationType, kind)
}
