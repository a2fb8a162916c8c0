package simulation

import (
	"math"
	"time"
)

// sanitize collapses non-finite amounts to zero so malformed domain data can
// never propagate NaN/Infinity into balances.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// isInflow decides the sign of an event: loan receipts and income credit
// cash, everything else debits it.
func isInflow(tx Transaction) bool {
	return tx.Category == CategoryLoanReceipts || tx.Kind == TxIncome
}

// effectiveAmount returns the signed cash movement of an event after VAT
// gross-up, plus the VAT component embedded in it.
func effectiveAmount(tx Transaction, vatRate float64) (effective, vatComponent float64) {
	amt := sanitize(tx.Amount)
	if tx.IncludesVAT {
		grossed := amt * (1 + vatRate)
		vatComponent = grossed - amt
		amt = grossed
	}
	if isInflow(tx) {
		return math.Abs(amt), vatComponent
	}
	return -math.Abs(amt), vatComponent
}

// recurringFires reports whether a recurring transaction emits an instance on
// date: the day-selection rule must match and the month distance from the
// base date must land on the frequency stride.
func recurringFires(tx Transaction, base, date time.Time) bool {
	mode := tx.DayMode
	if mode == "" {
		mode = DaySameAsStart
	}
	dayMatch := false
	switch mode {
	case DayLastDay:
		dayMatch = isLastDayOfMonth(date)
	case DaySpecific:
		day := tx.DayInMonth
		if day == 0 {
			day = 1
		}
		dayMatch = date.Day() == day
	default:
		dayMatch = date.Day() == base.Day()
	}
	if !dayMatch {
		return false
	}
	stride := tx.Frequency.MonthStep()
	if stride == 0 {
		return false
	}
	return monthsBetween(base, date)%stride == 0
}

// dayBuckets indexes materialized events by entity and day offset, alongside
// the pre-computed static daily net flow per entity used by the capital-call
// lookahead.
type dayBuckets struct {
	txs       map[string][][]Transaction
	staticNet map[string][]float64
}

// bucketTransactions materializes every event stream into per-entity,
// per-day buckets over the horizon. Non-recurring events land on their base
// date when inside the window; recurring ones are tested day by day.
func bucketTransactions(all []Transaction, entities []Entity, anchor time.Time, days int, vatRate float64) dayBuckets {
	b := dayBuckets{
		txs:       make(map[string][][]Transaction, len(entities)),
		staticNet: make(map[string][]float64, len(entities)),
	}
	for _, ent := range entities {
		b.txs[ent.ID] = make([][]Transaction, days)
		b.staticNet[ent.ID] = make([]float64, days)
	}

	apply := func(tx Transaction, dayIdx int) {
		if dayIdx < 0 || dayIdx >= days {
			return
		}
		b.txs[tx.EntityID][dayIdx] = append(b.txs[tx.EntityID][dayIdx], tx)
		effective, _ := effectiveAmount(tx, vatRate)
		b.staticNet[tx.EntityID][dayIdx] += effective
	}

	for _, tx := range all {
		if !tx.IsActive {
			continue
		}
		if _, known := b.txs[tx.EntityID]; !known {
			continue
		}
		base := dayStart(tx.Date)
		if !tx.IsRecurring {
			apply(tx, daysBetween(anchor, base))
			continue
		}
		for i := 0; i < days; i++ {
			date := addDays(anchor, i)
			if date.Before(base) {
				continue
			}
			if recurringFires(tx, base, date) {
				apply(tx, i)
			}
		}
	}
	return b
}
