package simulation

import "github.com/shopspring/decimal"

var daysInYear = decimal.NewFromInt(365)

// GuaranteeCost is the on-demand cost breakdown of a bank guarantee. It is
// not part of the daily loop.
type GuaranteeCost struct {
	GuaranteeID  string          `json:"guarantee_id"`
	Days         int64           `json:"days"`
	SetupFee     decimal.Decimal `json:"setup_fee"`
	InterestCost decimal.Decimal `json:"interest_cost"`
	Total        decimal.Decimal `json:"total"`
}

// CostOfGuarantee prices a guarantee over its issue-to-expiry life:
// setup fee plus amount x annual rate x days/365.
func CostOfGuarantee(g Guarantee) GuaranteeCost {
	days := int64(daysBetween(g.IssueDate, g.ExpiryDate))
	if days < 0 {
		days = 0
	}
	amount := decimal.NewFromFloat(g.Amount)
	rate := decimal.NewFromFloat(g.AnnualInterestRate).Div(decimal.NewFromInt(100))
	years := decimal.NewFromInt(days).Div(daysInYear)
	interest := amount.Mul(rate).Mul(years)
	setup := decimal.NewFromFloat(g.SetupFee)
	return GuaranteeCost{
		GuaranteeID:  g.ID,
		Days:         days,
		SetupFee:     setup,
		InterestCost: interest,
		Total:        setup.Add(interest),
	}
}
