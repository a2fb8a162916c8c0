package simulation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCostOfGuarantee(t *testing.T) {
	g := Guarantee{
		ID:                 "g1",
		Amount:             1000000,
		SetupFee:           500,
		AnnualInterestRate: 0.75,
		IssueDate:          date(2025, time.January, 1),
		ExpiryDate:         date(2026, time.January, 1),
	}

	cost := CostOfGuarantee(g)
	if cost.Days != 365 {
		t.Fatalf("days = %d, want 365", cost.Days)
	}
	if !cost.InterestCost.Equal(decimal.NewFromInt(7500)) {
		t.Errorf("interest = %s, want 7500", cost.InterestCost)
	}
	if !cost.Total.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("total = %s, want 8000", cost.Total)
	}
}

func TestCostOfGuaranteeInvertedDates(t *testing.T) {
	g := Guarantee{
		ID:         "g2",
		Amount:     50000,
		SetupFee:   100,
		IssueDate:  date(2025, time.June, 1),
		ExpiryDate: date(2025, time.January, 1),
	}
	cost := CostOfGuarantee(g)
	if cost.Days != 0 {
		t.Errorf("inverted dates should clamp to 0 days, got %d", cost.Days)
	}
	if !cost.Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s, want setup fee only", cost.Total)
	}
}
