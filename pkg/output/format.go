// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/moneymapp/moneymapp-calc/internal/calculator"
	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/moneymapp/moneymapp-calc/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// dueWidth is the width of a formatted due month, e.g. "2025-01".
const dueWidth = len(constants.DateTimeLayout)

var csvHeader = []string{
	"calculation", "type", "period", "due date", "value",
	"payment", "interest", "amortization", "balance", "contributed", "accumulation",
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []calculator.Result, currency string) {
	p := message.NewPrinter(language.English)
	money := func(amount float64) string {
		return format.CurrencyWithSymbol(amount, currency)
	}

	for i, result := range results {
		_, _ = p.Fprintf(w, "--- Results for calculation %s (%s) ---\n", result.Name, result.Type)
		_, _ = p.Fprintf(w, "Rate per period: %s\n", format.Percent(result.Rate))

		switch {
		case len(result.Schedule) > 0:
			_, _ = fmt.Fprintf(w, "Period | %-*s | Payment | Interest | Amortization | Balance\n", dueWidth, "Due")
			_, _ = fmt.Fprintf(w, "______ | %-*s | _______ | ________ | ____________ | _______\n", dueWidth, "___")
			for _, installment := range result.Schedule {
				due := installment.DueDate
				if due == "" {
					due = "-"
				}
				due = fmt.Sprintf("%-*s", dueWidth, due)
				_, _ = p.Fprintf(w, "%6d | %s | %s | %s | %s | %s\n",
					installment.Period, due, money(installment.Payment), money(installment.Interest),
					money(installment.Amortization), money(installment.Balance))
			}
			if result.Summary != nil {
				_, _ = p.Fprintf(w, "Total of %d installments: %s paid, %s interest\n",
					result.Summary.Installments, money(result.Summary.TotalPayment), money(result.Summary.TotalInterest))
			}
		case len(result.Series) > 0:
			_, _ = fmt.Fprintf(w, "Period | Value | Contributed | Accumulation\n")
			_, _ = fmt.Fprintf(w, "______ | _____ | ___________ | ____________\n")
			for _, point := range result.Series {
				_, _ = p.Fprintf(w, "%6d | %s | %s | %s\n",
					point.Period, money(point.Value), money(point.Contributed), money(point.Accumulation))
			}
			_, _ = p.Fprintf(w, "%s: %s\n", valueLabel(result.Type), money(result.Value))
		default:
			_, _ = p.Fprintf(w, "%s: %s\n", valueLabel(result.Type), money(result.Value))
		}

		if len(results) > 1 && i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

func valueLabel(kind string) string {
	switch kind {
	case constants.CalculationInstallment:
		return "Installment"
	case constants.CalculationInflation:
		return "Projected cost"
	default:
		return "Projected value"
	}
}

// CsvFormat writes results in comma-separated value format, one row per
// schedule installment or projection point.
func CsvFormat(w io.Writer, results []calculator.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, result := range results {
		for _, record := range csvRecords(result) {
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV rendering of results.
func CsvString(results []calculator.Result) string {
	var b strings.Builder
	if err := CsvFormat(&b, results); err != nil {
		return ""
	}
	return b.String()
}

func csvRecords(result calculator.Result) [][]string {
	var records [][]string
	switch {
	case len(result.Schedule) > 0:
		for _, installment := range result.Schedule {
			records = append(records, []string{
				result.Name, result.Type, strconv.Itoa(installment.Period), installment.DueDate, "",
				format.Plain(installment.Payment), format.Plain(installment.Interest),
				format.Plain(installment.Amortization), format.Plain(installment.Balance), "", "",
			})
		}
	case len(result.Series) > 0:
		for _, point := range result.Series {
			records = append(records, []string{
				result.Name, result.Type, strconv.Itoa(point.Period), "", format.Plain(point.Value),
				"", "", "", "", format.Plain(point.Contributed), format.Plain(point.Accumulation),
			})
		}
	default:
		records = append(records, []string{
			result.Name, result.Type, "", "", format.Plain(result.Value), "", "", "", "", "", "",
		})
	}
	return records
}
