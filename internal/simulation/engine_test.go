package simulation

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func entriesByCategory(results []DailyResult, category string) []LedgerEntry {
	var entries []LedgerEntry
	for _, day := range results {
		for _, tx := range day.Transactions {
			if tx.Category == category {
				entries = append(entries, tx)
			}
		}
	}
	return entries
}

func TestInertEntityHasNoDrift(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Holdco"}},
		Accounts: []Account{{ID: "a1", EntityID: "e1", OpeningBalance: 5000}},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "e1", Kind: TxExpense, Category: "Suppliers",
			Date: anchor, Amount: 999, IsActive: false,
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 90)
	if len(results) != 90 {
		t.Fatalf("expected 90 daily results, got %d", len(results))
	}
	for i, day := range results {
		if day.EntityBalances["e1"] != 5000 {
			t.Fatalf("day %d balance = %.2f, want 5000", i, day.EntityBalances["e1"])
		}
		if len(day.Transactions) != 0 {
			t.Fatalf("day %d produced %d ledger rows, want none", i, len(day.Transactions))
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{
			{ID: "p", Name: "Parent", TargetBalance: 20000},
			{ID: "c", Name: "Child", ParentID: "p", OwnershipPercentage: 80, TargetBalance: 5000},
		},
		Accounts: []Account{
			{ID: "a1", EntityID: "p", OpeningBalance: 300000, CreditLimit: 100000, InterestSpread: 2},
			{ID: "a2", EntityID: "c", OpeningBalance: 1000, CreditLimit: 20000, CurrentCreditUtil: 4000},
		},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "c", Kind: TxExpense, Category: "Suppliers", Description: "Monthly supplies",
			Date: anchor, Amount: 2500, IsActive: true, IsRecurring: true, Frequency: FreqMonthly,
		}},
		Loans: []Loan{{
			ID: "l1", EntityID: "p", Name: "Facility", Principal: 50000, Spread: 1.2,
			StartDate: date(2025, time.February, 1), EndDate: date(2026, time.February, 1),
			InterestFrequency: FreqQuarterly, PrincipalFrequency: FreqOneTime, IsActive: true,
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	first := Run(state, anchor, 400)
	second := Run(state, anchor, 400)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical snapshot and anchor must produce identical results")
	}
}

func TestCreditBalancingIdempotentAtTarget(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Opco", TargetBalance: 10000}},
		Accounts: []Account{{ID: "a1", EntityID: "e1", OpeningBalance: 10000, CreditLimit: 50000}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 60)
	if rows := entriesByCategory(results, CategoryCreditBalancing); len(rows) != 0 {
		t.Fatalf("cash at target with zero utilization emitted %d balancing rows, want none", len(rows))
	}
}

func TestCapitalCallCascadeSplit(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{
			{ID: "A", Name: "Parent", OwnershipPercentage: 100},
			{ID: "B", Name: "Subsidiary", ParentID: "A", OwnershipPercentage: 60, TargetBalance: 10000},
		},
		Accounts: []Account{
			{ID: "a1", EntityID: "A", OpeningBalance: 100000},
			{ID: "a2", EntityID: "B", OpeningBalance: -5000},
		},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 30)
	day0 := results[0]

	if got := day0.EntityBalances["B"]; math.Abs(got-10000) > 0.001 {
		t.Errorf("subsidiary day-0 balance = %.2f, want 10000", got)
	}
	if got := day0.EntityBalances["A"]; math.Abs(got-91000) > 0.001 {
		t.Errorf("parent day-0 balance = %.2f, want 91000", got)
	}

	injections := entriesByCategory(results[:1], CategoryOwnerInjection)
	if len(injections) != 1 || math.Abs(injections[0].Amount-9000) > 0.001 {
		t.Fatalf("owner injection = %+v, want one credit of 9000", injections)
	}
	funding := entriesByCategory(results[:1], CategoryOwnerFunding)
	if len(funding) != 1 || math.Abs(funding[0].Amount+9000) > 0.001 {
		t.Fatalf("parent funding = %+v, want one debit of 9000", funding)
	}
	partner := entriesByCategory(results[:1], CategoryPartnerCapital)
	if len(partner) != 1 || math.Abs(partner[0].Amount-6000) > 0.001 {
		t.Fatalf("partner capital = %+v, want one credit of 6000", partner)
	}
}

func TestCapitalCallFailureAlerts(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{
			{ID: "A", Name: "Parent"},
			{ID: "B", Name: "Subsidiary", ParentID: "A", OwnershipPercentage: 100, TargetBalance: 50000},
		},
		Accounts: []Account{
			{ID: "a1", EntityID: "A", OpeningBalance: 100},
			{ID: "a2", EntityID: "B", OpeningBalance: 0},
		},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 10)
	if len(results[0].Alerts) == 0 {
		t.Fatal("expected a capital-call alert when the parent cannot fund its share")
	}
	if got := results[0].EntityBalances["B"]; got != 0 {
		t.Errorf("unfunded subsidiary balance = %.2f, want 0", got)
	}
}

func TestCapitalCallMonotonicInTarget(t *testing.T) {
	anchor := date(2025, time.January, 1)
	build := func(target float64) AppState {
		return AppState{
			Entities: []Entity{
				{ID: "A", Name: "Parent"},
				{ID: "B", Name: "Subsidiary", ParentID: "A", OwnershipPercentage: 60, TargetBalance: target},
			},
			Accounts: []Account{
				{ID: "a1", EntityID: "A", OpeningBalance: 1000000},
				{ID: "a2", EntityID: "B", OpeningBalance: -5000},
			},
			Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
		}
	}

	injected := func(results []DailyResult) float64 {
		total := 0.0
		for _, e := range entriesByCategory(results, CategoryOwnerInjection) {
			total += e.Amount
		}
		for _, e := range entriesByCategory(results, CategoryPartnerCapital) {
			total += e.Amount
		}
		return total
	}

	low := injected(Run(build(10000), anchor, 30))
	high := injected(Run(build(12000), anchor, 30))
	if high < low {
		t.Fatalf("raising the target lowered the injection: %.2f -> %.2f", low, high)
	}
}

func TestVATSettlementConservation(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Opco"}},
		Accounts: []Account{{ID: "a1", EntityID: "e1", OpeningBalance: 50000}},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "e1", Kind: TxIncome, Category: CategoryRent, Description: "Rent",
			Date: date(2025, time.January, 5), Amount: 1000, IncludesVAT: true, IsActive: true,
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 90)

	accrued := 0.0
	settled := 0.0
	for _, day := range results {
		for _, tx := range day.Transactions {
			if tx.Category == CategoryVAT {
				settled += tx.Amount
			} else if tx.IncludesVAT {
				accrued += math.Abs(tx.Amount) - math.Abs(tx.Amount)/1.17
			}
		}
	}
	if math.Abs(settled+accrued) > 0.01 {
		t.Errorf("settlements %.4f do not offset accrued VAT %.4f", settled, accrued)
	}

	// liability settles on the 22nd of the month after accrual
	vatRows := entriesByCategory(results, CategoryVAT)
	if len(vatRows) != 1 {
		t.Fatalf("expected one VAT settlement, got %d", len(vatRows))
	}
	if vatRows[0].Amount >= 0 {
		t.Errorf("VAT liability settlement = %.2f, want a debit", vatRows[0].Amount)
	}
	final := results[len(results)-1].EntityBalances["e1"]
	if math.Abs(final-(50000+1000)) > 0.01 {
		t.Errorf("final balance = %.2f, want opening plus net amount 51000", final)
	}
}

func TestVATRefundScheduledMidNextMonth(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Opco"}},
		Accounts: []Account{{ID: "a1", EntityID: "e1", OpeningBalance: 50000}},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "e1", Kind: TxExpense, Category: "Suppliers", Description: "Fit-out",
			Date: date(2025, time.January, 5), Amount: 1000, IncludesVAT: true, IsActive: true,
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 120)
	vatRows := entriesByCategory(results, CategoryVAT)
	if len(vatRows) != 1 || vatRows[0].Amount <= 0 {
		t.Fatalf("expected one VAT refund credit, got %+v", vatRows)
	}
	for _, day := range results {
		for _, tx := range day.Transactions {
			if tx.Category == CategoryVAT && day.Date != "2025-03-15" {
				t.Errorf("refund landed on %s, want 2025-03-15", day.Date)
			}
		}
	}
}

func TestMonthlyCreditLineInterest(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Opco"}},
		Accounts: []Account{{
			ID: "a1", EntityID: "e1", OpeningBalance: 0,
			CreditLimit: 50000, CurrentCreditUtil: 20000, InterestSpread: 2,
		}},
		Settings: Settings{PrimeRate: 5, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 40)
	rows := entriesByCategory(results, CategoryBankInterest)
	if len(rows) != 2 {
		t.Fatalf("expected interest on both month boundaries, got %d rows", len(rows))
	}
	// day 0 is Jan 1: 20000 x (5+2)/1200
	want := -20000 * 7.0 / 1200
	if math.Abs(rows[0].Amount-want) > 0.01 {
		t.Errorf("credit interest = %.4f, want %.4f", rows[0].Amount, want)
	}
}

func TestIncomeTaxAdvanceOn15th(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Opco", HasTaxAdvances: true, TaxAdvanceRate: 10}},
		Accounts: []Account{{ID: "a1", EntityID: "e1", OpeningBalance: 100000}},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "e1", Kind: TxIncome, Category: "Customers", Description: "Retainer",
			Date: date(2025, time.January, 2), Amount: 20000, IsActive: true,
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 30)
	rows := entriesByCategory(results, CategoryIncomeTax)
	if len(rows) != 1 {
		t.Fatalf("expected one tax advance, got %d", len(rows))
	}
	if math.Abs(rows[0].Amount+2000) > 0.001 {
		t.Errorf("tax advance = %.2f, want -2000", rows[0].Amount)
	}
	if results[14].Date != "2025-01-15" {
		t.Fatalf("day 14 is %s, expected the 15th", results[14].Date)
	}
}

func TestIntercompanyMirrorsCounterLeg(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "A", Name: "Holdco"}, {ID: "B", Name: "Opco"}},
		Accounts: []Account{
			{ID: "a1", EntityID: "A", OpeningBalance: 10000},
			{ID: "a2", EntityID: "B", OpeningBalance: 10000},
		},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "A", Kind: TxIntercompany, Category: CategoryIntercompany,
			Description: "Management fee", Date: date(2025, time.January, 3), Amount: 500,
			IsActive: true, IsIntercompany: true, TargetEntityID: "B",
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 10)
	day := results[2]
	if got := day.EntityBalances["A"]; math.Abs(got-9500) > 0.001 {
		t.Errorf("source balance = %.2f, want 9500", got)
	}
	if got := day.EntityBalances["B"]; math.Abs(got-10500) > 0.001 {
		t.Errorf("target balance = %.2f, want 10500", got)
	}
	if len(day.Transactions) != 2 {
		t.Fatalf("expected source row plus counter-leg, got %d rows", len(day.Transactions))
	}
	if day.Transactions[1].Kind != LedgerIntercompany || day.Transactions[1].Amount != 500 {
		t.Errorf("counter-leg = %+v, want +500 intercompany", day.Transactions[1])
	}
}

func TestMilestoneExpansionReplacesParent(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Propco"}},
		Accounts: []Account{{ID: "a1", EntityID: "e1", OpeningBalance: 1000000}},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "e1", Kind: TxExpense, Category: CategoryAssetPurchase,
			Description: "Lot 12", Date: date(2025, time.January, 10), Amount: 300000,
			IsActive: true, LinkageIndexBase: 100,
			Milestones: []Milestone{
				{ID: "m1", Description: "Signing", Amount: 100000, Date: date(2025, time.January, 10)},
				{ID: "m2", Description: "Permit", Amount: 200000, Date: date(2025, time.March, 10)},
			},
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 110},
	}

	results := Run(state, anchor, 120)
	rows := entriesByCategory(results, CategoryAssetPurchase)
	if len(rows) != 2 {
		t.Fatalf("expected two milestone events, got %d", len(rows))
	}
	if math.Abs(rows[0].Amount+110000) > 0.01 {
		t.Errorf("first milestone = %.2f, want CPI-adjusted -110000", rows[0].Amount)
	}
	if math.Abs(rows[1].Amount+220000) > 0.01 {
		t.Errorf("second milestone = %.2f, want CPI-adjusted -220000", rows[1].Amount)
	}
	// a third event would mean the parent leaked through
	total := 0.0
	for _, r := range rows {
		total += r.Amount
	}
	if math.Abs(total+330000) > 0.01 {
		t.Errorf("total milestone spend = %.2f, want -330000 with no parent double count", total)
	}
}

func TestCreditDrawCappedByAvailableCredit(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Opco", TargetBalance: 30000}},
		Accounts: []Account{{ID: "a1", EntityID: "e1", OpeningBalance: 0, CreditLimit: 10000}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 5)
	day0 := results[0]
	if got := day0.EntityBalances["e1"]; math.Abs(got-10000) > 0.001 {
		t.Errorf("balance after partial draw = %.2f, want 10000", got)
	}
	if got := day0.EntityCreditUtil["e1"]; math.Abs(got-10000) > 0.001 {
		t.Errorf("utilization = %.2f, want fully drawn 10000", got)
	}
	rows := entriesByCategory(results[:1], CategoryCreditBalancing)
	if len(rows) != 1 || math.Abs(rows[0].Amount-10000) > 0.001 {
		t.Fatalf("balancing rows = %+v, want one draw of 10000", rows)
	}
}

func TestDefaultHorizonApplied(t *testing.T) {
	state := AppState{
		Entities: []Entity{{ID: "e1", Name: "Opco"}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}
	results := Run(state, date(2025, time.January, 1), 0)
	if len(results) != DefaultHorizonDays {
		t.Fatalf("default horizon produced %d days, want %d", len(results), DefaultHorizonDays)
	}
}
