package simulation

import (
	"fmt"
	"sort"
	"time"
)

// expandLoans converts every active loan into concrete dated cash events:
// the principal receipt at drawdown, simple-interest charges (actual/365 on
// outstanding principal, rate resolved at the payment date), and principal
// repayments with the final installment absorbing whatever remains.
func expandLoans(loans []Loan, simStart time.Time, days int, settings Settings) []Transaction {
	simEnd := addDays(simStart, days)
	var generated []Transaction

	for _, loan := range loans {
		if !loan.IsActive {
			continue
		}
		loanStart := dayStart(loan.StartDate)
		loanEnd := dayStart(loan.EndDate)

		if !loanStart.Before(simStart) && !loanStart.After(simEnd) {
			generated = append(generated, Transaction{
				ID:          "gen-loan-receipt-" + loan.ID,
				EntityID:    loan.EntityID,
				AccountID:   loan.AccountID,
				Kind:        TxFinancial,
				Category:    CategoryLoanReceipts,
				Description: "Loan receipt: " + loan.Name,
				Date:        loanStart,
				Amount:      loan.Principal,
				IsActive:    true,
			})
		}

		principalDates := periodDates(loanStart, loanEnd, loan.PrincipalFrequency)
		interestDates := periodDates(loanStart, loanEnd, loan.InterestFrequency)

		principalSet := make(map[int64]bool, len(principalDates))
		merged := make(map[int64]time.Time, len(principalDates)+len(interestDates))
		for _, d := range principalDates {
			principalSet[d.Unix()] = true
			merged[d.Unix()] = d
		}
		for _, d := range interestDates {
			merged[d.Unix()] = d
		}
		allPaymentDates := make([]time.Time, 0, len(merged))
		for _, d := range merged {
			allPaymentDates = append(allPaymentDates, d)
		}
		sort.Slice(allPaymentDates, func(i, j int) bool { return allPaymentDates[i].Before(allPaymentDates[j]) })

		lastPaymentDate := loanStart
		remainingPrincipal := loan.Principal
		installments := len(principalDates)
		if installments == 0 {
			installments = 1
		}
		principalSlice := loan.Principal / float64(installments)

		for _, payDate := range allPaymentDates {
			daysInPeriod := daysBetween(lastPaymentDate, payDate)
			if daysInPeriod < 0 {
				daysInPeriod = 0
			}
			annualRate := (primeRateAt(payDate, settings) + loan.Spread) / 100
			interestAmount := remainingPrincipal * annualRate * float64(daysInPeriod) / 365
			inWindow := !payDate.Before(simStart) && !payDate.After(simEnd)

			if inWindow && interestAmount > 0.01 {
				generated = append(generated, Transaction{
					ID:          fmt.Sprintf("gen-loan-int-%s-%d", loan.ID, payDate.Unix()),
					EntityID:    loan.EntityID,
					AccountID:   loan.AccountID,
					Kind:        TxExpense,
					Category:    CategoryBanks,
					Description: "Loan interest: " + loan.Name,
					Date:        payDate,
					Amount:      interestAmount,
					IsActive:    true,
				})
			}

			if principalSet[payDate.Unix()] {
				isLast := payDate.Equal(loanEnd)
				amountToRepay := principalSlice
				if isLast {
					amountToRepay = remainingPrincipal
				}
				if inWindow {
					desc := "Principal repayment: " + loan.Name
					if isLast {
						desc += " (final)"
					}
					generated = append(generated, Transaction{
						ID:          fmt.Sprintf("gen-loan-prin-%s-%d", loan.ID, payDate.Unix()),
						EntityID:    loan.EntityID,
						AccountID:   loan.AccountID,
						Kind:        TxExpense,
						Category:    CategoryLoanRepayments,
						Description: desc,
						Date:        payDate,
						Amount:      amountToRepay,
						IsActive:    true,
					})
				}
				remainingPrincipal -= amountToRepay
			}
			lastPaymentDate = payDate
		}
	}
	return generated
}
