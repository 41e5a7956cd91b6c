// Package datetime provides month arithmetic for schedule due dates.
package datetime

import (
	"fmt"
	"time"

	"github.com/moneymapp/moneymapp-calc/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// ValidateDate checks that an optional date matches DateTimeLayout. Empty
// dates are accepted.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateTimeLayout, date); err != nil {
		return fmt.Errorf("date %q must use the YYYY-MM format: %w", date, err)
	}
	return nil
}
