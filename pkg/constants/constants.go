// Package constants provides shared constants for the moneymapp calculators.
package constants

import "time"

// DateTimeLayout is the format expected for schedule start dates in config
// files and is also the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MaxPeriods bounds the periods of a configured calculation (100 years of months)
	MaxPeriods = 1200

	// CurrencyPlaces is the number of decimal places shown for amounts
	CurrencyPlaces = 2

	// DefaultCurrencySymbol is prefixed to formatted amounts
	DefaultCurrencySymbol = "R$"
)

// Calculation type constants
const (
	// CalculationCompound projects a present value at a periodic rate
	CalculationCompound = "compound"

	// CalculationInstallment computes the level Price-table payment
	CalculationInstallment = "installment"

	// CalculationPrice produces the full Price-table schedule
	CalculationPrice = "price"

	// CalculationSAC produces the constant-amortization schedule
	CalculationSAC = "sac"

	// CalculationInflation projects a cost forward under inflation
	CalculationInflation = "inflation"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultEnvFile is loaded before reading the environment, when present
	DefaultEnvFile = ".env"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. MONEYMAPP_OUTPUT_FORMAT
	EnvPrefix = "MONEYMAPP"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTL is how long memoised calculation results live
	DefaultCacheTTL = 10 * time.Minute

	// CacheBackendMemory keeps results in process
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps results in Redis
	CacheBackendRedis = "redis"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
