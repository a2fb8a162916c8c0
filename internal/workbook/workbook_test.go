package workbook

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"RealityFlow/internal/simulation"
)

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleState() simulation.AppState {
	prev := 5.0
	change := utcDate(2025, time.March, 1)
	return simulation.AppState{
		Entities: []simulation.Entity{
			{ID: "E1", Name: "Holdings", OwnershipPercentage: 100, UncalledCapital: 500000, TargetBalance: 10000},
			{ID: "E2", Name: "Property Sub", ParentID: "E1", OwnershipPercentage: 60, HasTaxAdvances: true, TaxAdvanceRate: 2},
		},
		Accounts: []simulation.Account{
			{ID: "A1", EntityID: "E1", BankName: "Leumi", AccountNumber: "123-456", OpeningBalance: 250000, CreditLimit: 100000, InterestSpread: 1.5, GuaranteeLimit: 50000},
		},
		Transactions: []simulation.Transaction{
			{
				ID: "T1", EntityID: "E2", Kind: simulation.TxIncome, Category: "Rent",
				Description: "Office rent", Date: utcDate(2025, time.January, 10),
				Amount: 11700, IncludesVAT: true, IsRecurring: true,
				Frequency: simulation.FreqMonthly, DayMode: simulation.DaySameAsStart,
				IsActive: true,
			},
			{
				ID: "T2", EntityID: "E1", Kind: simulation.TxOperational, Category: "Asset Purchase",
				Description: "Project Delta", Date: utcDate(2025, time.February, 1),
				Amount: 300000, IsActive: true,
				Milestones: []simulation.Milestone{
					{ID: "M1", Description: "Down payment", Percentage: 30, Amount: 90000, Date: utcDate(2025, time.February, 1)},
					{ID: "M2", Description: "Completion", Percentage: 70, Amount: 210000, Date: utcDate(2025, time.August, 1)},
				},
			},
		},
		Loans: []simulation.Loan{
			{ID: "L1", EntityID: "E1", Name: "Bridge", Principal: 1000000, Spread: 2.5,
				StartDate: utcDate(2025, time.January, 1), EndDate: utcDate(2026, time.January, 1),
				InterestFrequency: simulation.FreqMonthly, PrincipalFrequency: simulation.FreqOneTime, IsActive: true},
		},
		Leases: []simulation.Lease{
			{ID: "LS1", EntityID: "E2", TenantName: "Acme", Property: "Tower A",
				NetAmount: 10000, Frequency: simulation.FreqMonthly, PaymentDay: 1,
				IncludesVAT: true, LinkageIndexBase: 100,
				StartDate: utcDate(2025, time.March, 15), EndDate: utcDate(2027, time.March, 14)},
		},
		Guarantees: []simulation.Guarantee{
			{ID: "G1", EntityID: "E2", Beneficiary: "City Hall", Amount: 75000,
				IssueDate: utcDate(2025, time.January, 1), ExpiryDate: utcDate(2026, time.January, 1),
				SetupFee: 500, AnnualInterestRate: 0.75},
		},
		Tasks: []simulation.Task{
			{ID: "K1", EntityID: "E1", Title: "File VAT return", DueDate: utcDate(2025, time.April, 22), Priority: "high"},
		},
		Budgets: []simulation.Budget{
			{ID: "B1", EntityID: "E2", Category: "Maintenance", Property: "Tower A", AnnualBudget: 120000, ManualActualYTD: 30000},
		},
		Settings: simulation.Settings{
			PrimeRate: 6, PrevPrimeRate: &prev, PrimeRateChangeDate: &change,
			VATRate: 17, CPI: 104.2,
		},
	}
}

func TestStateRoundTrip(t *testing.T) {
	state := sampleState()

	var buf bytes.Buffer
	if err := ExportState(&buf, state); err != nil {
		t.Fatalf("export: %v", err)
	}

	got, err := ImportState(&buf, "RealityFlow_Backup_2025-01-01.xlsx")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if len(got.Entities) != 2 || len(got.Accounts) != 1 || len(got.Transactions) != 2 ||
		len(got.Loans) != 1 || len(got.Leases) != 1 || len(got.Guarantees) != 1 ||
		len(got.Tasks) != 1 || len(got.Budgets) != 1 {
		t.Fatalf("collection sizes changed after round trip: %+v", got)
	}

	e2 := got.Entities[1]
	if e2.ParentID != "E1" || e2.OwnershipPercentage != 60 || !e2.HasTaxAdvances || e2.TaxAdvanceRate != 2 {
		t.Errorf("entity E2 mangled: %+v", e2)
	}

	acct := got.Accounts[0]
	if acct.AccountNumber != "123-456" || acct.OpeningBalance != 250000 || acct.InterestSpread != 1.5 {
		t.Errorf("account mangled: %+v", acct)
	}

	rent := got.Transactions[0]
	if rent.Kind != simulation.TxIncome || !rent.IncludesVAT || !rent.IsRecurring ||
		rent.Frequency != simulation.FreqMonthly || rent.DayMode != simulation.DaySameAsStart {
		t.Errorf("recurring transaction flags lost: %+v", rent)
	}
	if !rent.Date.Equal(utcDate(2025, time.January, 10)) {
		t.Errorf("transaction date = %v", rent.Date)
	}

	asset := got.Transactions[1]
	if len(asset.Milestones) != 2 {
		t.Fatalf("milestones lost: %+v", asset.Milestones)
	}
	if asset.Milestones[1].Description != "Completion" || asset.Milestones[1].Amount != 210000 {
		t.Errorf("milestone mangled: %+v", asset.Milestones[1])
	}

	loan := got.Loans[0]
	if loan.PrincipalFrequency != simulation.FreqOneTime || loan.Spread != 2.5 || !loan.IsActive {
		t.Errorf("loan mangled: %+v", loan)
	}

	lease := got.Leases[0]
	if lease.PaymentDay != 1 || lease.LinkageIndexBase != 100 || !lease.IncludesVAT {
		t.Errorf("lease mangled: %+v", lease)
	}
	if !lease.StartDate.Equal(utcDate(2025, time.March, 15)) {
		t.Errorf("lease start = %v", lease.StartDate)
	}

	st := got.Settings
	if st.PrimeRate != 6 || st.VATRate != 17 || st.CPI != 104.2 {
		t.Errorf("settings mangled: %+v", st)
	}
	if st.PrevPrimeRate == nil || *st.PrevPrimeRate != 5 {
		t.Errorf("prev prime rate lost: %+v", st.PrevPrimeRate)
	}
	if st.PrimeRateChangeDate == nil || !st.PrimeRateChangeDate.Equal(utcDate(2025, time.March, 1)) {
		t.Errorf("prime rate change date lost: %+v", st.PrimeRateChangeDate)
	}
}

func TestImportTransactionsCSV(t *testing.T) {
	csvBody := strings.Join([]string{
		"id,entity_id,kind,category,description,date,amount,includes_vat,is_recurring,frequency,day_mode,is_active",
		"T1,E1,income,Rent,Monthly rent,2025-01-10,\"10,000\",true,true,Monthly,SameAsStart,true",
		"T2,E1,expense,Insurance,Annual policy,2025-06-01,2500,false,false,,,true",
	}, "\n")

	state, err := ImportState(strings.NewReader(csvBody), "transactions.csv")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(state.Transactions) != 2 {
		t.Fatalf("got %d transactions", len(state.Transactions))
	}
	if state.Transactions[0].Amount != 10000 {
		t.Errorf("thousand separator not stripped: %v", state.Transactions[0].Amount)
	}
	if !state.Transactions[0].IsRecurring || state.Transactions[0].Frequency != simulation.FreqMonthly {
		t.Errorf("recurring flags lost: %+v", state.Transactions[0])
	}
	if state.Transactions[1].Kind != simulation.TxExpense || state.Transactions[1].Amount != 2500 {
		t.Errorf("second row mangled: %+v", state.Transactions[1])
	}
	if len(state.Entities) != 0 {
		t.Errorf("csv import should only carry transactions")
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	if _, err := ImportState(strings.NewReader("x"), "state.pdf"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
