// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/moneymapp/moneymapp-calc/internal/calculator"
	"github.com/moneymapp/moneymapp-calc/pkg/mathutil"
)

// FindResult finds a calculation result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []calculator.Result, name string) *calculator.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// AssertClose fails the test when got and want differ by more than tolerance.
func AssertClose(t testing.TB, label string, got, want, tolerance float64) {
	t.Helper()
	if !mathutil.WithinTolerance(got, want, tolerance) {
		t.Errorf("%s = %.4f, expected %.4f (±%g)", label, got, want, tolerance)
	}
}
