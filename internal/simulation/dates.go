package simulation

import "time"

// DateFormat is the wire format for simulated calendar dates.
const DateFormat = "2006-01-02"

// dayStart truncates a time to local midnight.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// addMonths advances by calendar months, normalizing month-end overflow the
// way time.Date does (Jan 31 + 1 month lands in early March).
func addMonths(t time.Time, months int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(months), t.Day(), 0, 0, 0, 0, t.Location())
}

// withDayOfMonth keeps year/month and replaces the day.
func withDayOfMonth(t time.Time, day int) time.Time {
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, t.Location())
}

// daysBetween returns whole days from a to b at day granularity.
func daysBetween(a, b time.Time) int {
	return int(dayStart(b).Sub(dayStart(a)).Hours() / 24)
}

// isLastDayOfMonth reports whether t is the final calendar day of its month.
func isLastDayOfMonth(t time.Time) bool {
	return addDays(t, 1).Day() == 1
}

// monthsBetween is the month distance from a to b ignoring days.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// periodDates enumerates the payment dates of a schedule between start and
// end. OneTime yields exactly the end date. Periodic frequencies step from
// start in frequency-sized increments while strictly before end, then always
// append end, so the final period may be a short stub.
func periodDates(start, end time.Time, freq Frequency) []time.Time {
	if freq == FreqOneTime {
		return []time.Time{end}
	}
	step := freq.MonthStep()
	if step == 0 {
		return []time.Time{end}
	}
	var dates []time.Time
	current := addMonths(start, step)
	for current.Before(end) {
		dates = append(dates, current)
		current = addMonths(current, step)
	}
	return append(dates, end)
}
