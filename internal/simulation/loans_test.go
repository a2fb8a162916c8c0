package simulation

import (
	"math"
	"testing"
	"time"
)

func TestExpandLoanBalloon(t *testing.T) {
	anchor := date(2025, time.January, 1)
	settings := Settings{PrimeRate: 5, VATRate: 17, CPI: 100}
	loan := Loan{
		ID:                 "l1",
		EntityID:           "e1",
		Name:               "Bridge",
		Principal:          100000,
		Spread:             1,
		StartDate:          anchor,
		EndDate:            date(2026, time.January, 1),
		InterestFrequency:  FreqMonthly,
		PrincipalFrequency: FreqOneTime,
		IsActive:           true,
	}

	events := expandLoans([]Loan{loan}, anchor, 730, settings)

	var receipts, interest, principal []Transaction
	for _, ev := range events {
		switch ev.Category {
		case CategoryLoanReceipts:
			receipts = append(receipts, ev)
		case CategoryBanks:
			interest = append(interest, ev)
		case CategoryLoanRepayments:
			principal = append(principal, ev)
		}
	}

	if len(receipts) != 1 || receipts[0].Amount != 100000 || !receipts[0].Date.Equal(anchor) {
		t.Fatalf("expected one principal receipt of 100000 at the anchor, got %+v", receipts)
	}

	if len(interest) != 12 {
		t.Fatalf("expected 12 interest charges, got %d", len(interest))
	}
	total := 0.0
	for _, ev := range interest {
		total += ev.Amount
	}
	// simple interest at 6% over 365 actual days
	if math.Abs(total-6000) > 1 {
		t.Errorf("interest total = %.2f, want ~6000", total)
	}

	if len(principal) != 1 {
		t.Fatalf("expected a single balloon repayment, got %d", len(principal))
	}
	if principal[0].Amount != 100000 || !principal[0].Date.Equal(loan.EndDate) {
		t.Errorf("balloon = %.2f at %v, want 100000 at maturity", principal[0].Amount, principal[0].Date)
	}
}

func TestExpandLoanQuarterlyPrincipal(t *testing.T) {
	anchor := date(2025, time.January, 1)
	settings := Settings{PrimeRate: 5, VATRate: 17, CPI: 100}
	loan := Loan{
		ID:                 "l2",
		EntityID:           "e1",
		Name:               "Amortizing",
		Principal:          100000,
		Spread:             1,
		StartDate:          anchor,
		EndDate:            date(2026, time.January, 1),
		InterestFrequency:  FreqMonthly,
		PrincipalFrequency: FreqQuarterly,
		IsActive:           true,
	}

	events := expandLoans([]Loan{loan}, anchor, 730, settings)

	var repayments []Transaction
	for _, ev := range events {
		if ev.Category == CategoryLoanRepayments {
			repayments = append(repayments, ev)
		}
	}
	if len(repayments) != 4 {
		t.Fatalf("expected 4 principal installments, got %d", len(repayments))
	}
	total := 0.0
	for _, ev := range repayments {
		total += ev.Amount
	}
	if math.Abs(total-100000) > 0.001 {
		t.Errorf("repaid principal = %.2f, want exactly 100000", total)
	}
	last := repayments[len(repayments)-1]
	if !last.Date.Equal(loan.EndDate) {
		t.Errorf("final installment dated %v, want loan end", last.Date)
	}
}

func TestExpandLoanSkipsInactive(t *testing.T) {
	anchor := date(2025, time.January, 1)
	loan := Loan{
		ID: "l3", EntityID: "e1", Principal: 5000,
		StartDate: anchor, EndDate: date(2025, time.July, 1),
		InterestFrequency: FreqMonthly, PrincipalFrequency: FreqOneTime,
		IsActive: false,
	}
	events := expandLoans([]Loan{loan}, anchor, 365, Settings{PrimeRate: 5})
	if len(events) != 0 {
		t.Fatalf("inactive loan should produce no events, got %d", len(events))
	}
}

func TestExpandLoanUsesRateAtPaymentDate(t *testing.T) {
	anchor := date(2025, time.January, 1)
	prev := 10.0
	cutover := date(2025, time.February, 15)
	settings := Settings{PrimeRate: 5, PrevPrimeRate: &prev, PrimeRateChangeDate: &cutover}
	loan := Loan{
		ID: "l4", EntityID: "e1", Name: "RateSwitch", Principal: 100000, Spread: 0,
		StartDate: anchor, EndDate: date(2025, time.April, 1),
		InterestFrequency: FreqMonthly, PrincipalFrequency: FreqOneTime,
		IsActive: true,
	}

	events := expandLoans([]Loan{loan}, anchor, 365, settings)
	var interest []Transaction
	for _, ev := range events {
		if ev.Category == CategoryBanks {
			interest = append(interest, ev)
		}
	}
	if len(interest) != 3 {
		t.Fatalf("expected 3 interest charges, got %d", len(interest))
	}
	// Feb 1 charge resolves at the old 10% rate, Mar 1 at the new 5%
	feb := 100000 * 0.10 * 31 / 365
	mar := 100000 * 0.05 * 28 / 365
	if math.Abs(interest[0].Amount-feb) > 0.01 {
		t.Errorf("Feb interest = %.4f, want %.4f at previous prime", interest[0].Amount, feb)
	}
	if math.Abs(interest[1].Amount-mar) > 0.01 {
		t.Errorf("Mar interest = %.4f, want %.4f at current prime", interest[1].Amount, mar)
	}
}
