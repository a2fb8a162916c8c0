package simulation

import (
	"fmt"
	"time"
)

// linkageAdjust applies CPI indexation: amount scaled by current index over
// the contractually fixed base. A missing or non-positive base means no
// adjustment.
func linkageAdjust(amount, base, currentCPI float64) float64 {
	if base > 0 && currentCPI > 0 {
		return amount * (currentCPI / base)
	}
	return amount
}

// expandLeases converts each lease overlapping the window into dated rent
// income events. A lease whose start does not align to the calendar billing
// cadence gets one pro-rata stub event at the start date; full periods then
// bill on the configured payment day through lease end or window end.
func expandLeases(leases []Lease, simStart time.Time, days int, currentCPI float64) []Transaction {
	simEnd := addDays(simStart, days)
	var generated []Transaction

	for _, lease := range leases {
		leaseStart := dayStart(lease.StartDate)
		leaseEnd := dayStart(lease.EndDate)
		if leaseEnd.Before(simStart) || leaseStart.After(simEnd) {
			continue
		}

		adjustedAmount := linkageAdjust(lease.NetAmount, lease.LinkageIndexBase, currentCPI)
		freq := lease.Frequency
		step := freq.MonthStep()

		// First calendar-aligned billing date on/after the lease start,
		// stepped from January 1st of the start year.
		firstStandardDate := time.Date(leaseStart.Year(), time.January, 1, 0, 0, 0, 0, leaseStart.Location())
		if step > 0 {
			for firstStandardDate.Before(leaseStart) {
				firstStandardDate = addMonths(firstStandardDate, step)
			}
		}

		if !leaseStart.Equal(firstStandardDate) && freq != FreqOneTime {
			periodStart := addMonths(firstStandardDate, -step)
			totalDaysInPeriod := daysBetween(periodStart, firstStandardDate)
			activeDays := daysBetween(leaseStart, firstStandardDate)

			if totalDaysInPeriod > 0 && activeDays > 0 &&
				!leaseStart.After(simEnd) && !leaseStart.Before(simStart) {
				proRata := adjustedAmount * float64(activeDays) / float64(totalDaysInPeriod)
				generated = append(generated, Transaction{
					ID:          "gen-lease-prorata-" + lease.ID,
					EntityID:    lease.EntityID,
					AccountID:   lease.AccountID,
					Kind:        TxIncome,
					Category:    CategoryRent,
					Description: fmt.Sprintf("Pro-rata rent: %s (%s)", lease.TenantName, lease.Property),
					Date:        leaseStart,
					Amount:      proRata,
					IncludesVAT: lease.IncludesVAT,
					IsActive:    true,
				})
			}
		}

		currentPaymentDate := withDayOfMonth(firstStandardDate, lease.PaymentDay)
		if currentPaymentDate.Before(firstStandardDate) {
			currentPaymentDate = addMonths(currentPaymentDate, 1)
		}

		for !currentPaymentDate.After(leaseEnd) && !currentPaymentDate.After(simEnd) {
			if !currentPaymentDate.Before(simStart) {
				generated = append(generated, Transaction{
					ID:          fmt.Sprintf("gen-lease-std-%s-%d", lease.ID, currentPaymentDate.Unix()),
					EntityID:    lease.EntityID,
					AccountID:   lease.AccountID,
					Kind:        TxIncome,
					Category:    CategoryRent,
					Description: fmt.Sprintf("Rent: %s (%s)", lease.TenantName, lease.Property),
					Date:        currentPaymentDate,
					Amount:      adjustedAmount,
					IncludesVAT: lease.IncludesVAT,
					IsActive:    true,
				})
			}
			if step == 0 {
				break
			}
			currentPaymentDate = addMonths(currentPaymentDate, step)
		}
	}
	return generated
}
