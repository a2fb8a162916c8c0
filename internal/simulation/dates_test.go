package simulation

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodDatesMonthly(t *testing.T) {
	start := date(2025, time.January, 1)
	end := date(2026, time.January, 1)

	dates := periodDates(start, end, FreqMonthly)
	if len(dates) != 12 {
		t.Fatalf("expected 12 monthly dates, got %d", len(dates))
	}
	if !dates[0].Equal(date(2025, time.February, 1)) {
		t.Errorf("first date = %v, want 2025-02-01", dates[0])
	}
	if !dates[len(dates)-1].Equal(end) {
		t.Errorf("last date = %v, want the end date", dates[len(dates)-1])
	}
}

func TestPeriodDatesStubFinalPeriod(t *testing.T) {
	start := date(2025, time.January, 1)
	end := date(2026, time.January, 15)

	dates := periodDates(start, end, FreqQuarterly)
	// Apr 1, Jul 1, Oct 1, Jan 1 then the short stub to Jan 15
	if len(dates) != 5 {
		t.Fatalf("expected 5 quarterly dates, got %d", len(dates))
	}
	if !dates[3].Equal(date(2026, time.January, 1)) {
		t.Errorf("fourth date = %v, want 2026-01-01", dates[3])
	}
	if !dates[4].Equal(end) {
		t.Errorf("stub date = %v, want 2026-01-15", dates[4])
	}
}

func TestPeriodDatesOneTime(t *testing.T) {
	start := date(2025, time.January, 1)
	end := date(2027, time.June, 30)

	dates := periodDates(start, end, FreqOneTime)
	if len(dates) != 1 || !dates[0].Equal(end) {
		t.Fatalf("OneTime should yield exactly the end date, got %v", dates)
	}
}

func TestIsLastDayOfMonth(t *testing.T) {
	if !isLastDayOfMonth(date(2025, time.February, 28)) {
		t.Error("2025-02-28 should be the last day of the month")
	}
	if isLastDayOfMonth(date(2024, time.February, 28)) {
		t.Error("2024-02-28 is not the last day of a leap February")
	}
	if !isLastDayOfMonth(date(2024, time.February, 29)) {
		t.Error("2024-02-29 should be the last day of the month")
	}
}

func TestMonthsBetween(t *testing.T) {
	if got := monthsBetween(date(2025, time.January, 10), date(2026, time.March, 2)); got != 14 {
		t.Errorf("monthsBetween = %d, want 14", got)
	}
	if got := monthsBetween(date(2025, time.May, 1), date(2025, time.May, 31)); got != 0 {
		t.Errorf("same month distance = %d, want 0", got)
	}
}

func TestDaysBetween(t *testing.T) {
	if got := daysBetween(date(2025, time.March, 15), date(2025, time.April, 1)); got != 17 {
		t.Errorf("daysBetween = %d, want 17", got)
	}
}
