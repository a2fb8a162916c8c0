package config

const (
	DefaultTimeZone = "Asia/Jerusalem"

	// Forecast Refresh Configuration Constants
	DefaultForecastSchedule = "30 5 * * *" // nightly, after interest rate feeds settle
	DefaultHorizonDays      = 730
	ForecastBatchSize       = 50
)
