package simulation

import (
	"testing"
	"time"
)

func TestPrimeRateWithoutChangeConfig(t *testing.T) {
	settings := Settings{PrimeRate: 6}
	if got := primeRateAt(date(2025, time.March, 1), settings); got != 6 {
		t.Errorf("rate = %v, want current rate 6", got)
	}
}

func TestPrimeRateAroundCutover(t *testing.T) {
	prev := 4.5
	cutover := date(2025, time.June, 1)
	settings := Settings{PrimeRate: 6, PrevPrimeRate: &prev, PrimeRateChangeDate: &cutover}

	if got := primeRateAt(date(2025, time.May, 31), settings); got != 4.5 {
		t.Errorf("before cutover = %v, want previous rate 4.5", got)
	}
	if got := primeRateAt(cutover, settings); got != 6 {
		t.Errorf("on cutover = %v, want current rate 6", got)
	}
	if got := primeRateAt(date(2025, time.August, 10), settings); got != 6 {
		t.Errorf("after cutover = %v, want current rate 6", got)
	}
}

func TestPrimeRateIgnoresTimeOfDay(t *testing.T) {
	prev := 4.5
	cutover := time.Date(2025, time.June, 1, 17, 30, 0, 0, time.UTC)
	settings := Settings{PrimeRate: 6, PrevPrimeRate: &prev, PrimeRateChangeDate: &cutover}

	// same calendar day as the cutover, earlier clock time
	if got := primeRateAt(time.Date(2025, time.June, 1, 3, 0, 0, 0, time.UTC), settings); got != 6 {
		t.Errorf("cutover day = %v, want current rate 6", got)
	}
}
