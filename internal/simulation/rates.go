package simulation

import "time"

// primeRateAt resolves the prime rate in effect on a given date. When a rate
// change is configured, dates strictly before the cutover day use the previous
// rate; the cutover day itself and everything after use the current rate.
// Missing configuration degrades to the current rate.
func primeRateAt(date time.Time, settings Settings) float64 {
	if settings.PrimeRateChangeDate == nil || settings.PrevPrimeRate == nil {
		return settings.PrimeRate
	}
	if dayStart(date).Before(dayStart(*settings.PrimeRateChangeDate)) {
		return *settings.PrevPrimeRate
	}
	return settings.PrimeRate
}
