package simulation

import (
	"math"
	"testing"
	"time"
)

func forestFixture() []Entity {
	return []Entity{
		{ID: "A", Name: "Holdco", OwnershipPercentage: 100, UncalledCapital: 500000},
		{ID: "B", Name: "Propco", ParentID: "A", OwnershipPercentage: 60},
		{ID: "C", Name: "Devco", ParentID: "B", OwnershipPercentage: 50},
	}
}

func TestConsolidatedWeightChain(t *testing.T) {
	entities := forestFixture()
	if w := ConsolidatedWeight("A", entities); w != 1.0 {
		t.Errorf("root weight = %v, want 1.0", w)
	}
	if w := ConsolidatedWeight("B", entities); math.Abs(w-0.6) > 1e-9 {
		t.Errorf("child weight = %v, want 0.6", w)
	}
	if w := ConsolidatedWeight("C", entities); math.Abs(w-0.3) > 1e-9 {
		t.Errorf("grandchild weight = %v, want 0.6 x 0.5 = 0.3", w)
	}
}

func TestBuildConsolidatedView(t *testing.T) {
	anchor := date(2025, time.January, 2)
	state := AppState{
		Entities: forestFixture(),
		Accounts: []Account{
			{ID: "a1", EntityID: "A", OpeningBalance: 100000, CreditLimit: 50000, CurrentCreditUtil: 10000},
			{ID: "a2", EntityID: "B", OpeningBalance: 20000},
		},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 30)
	view := BuildConsolidatedView(state, results, nil)

	// no day-0 flows, so opening equals the weighted opening balances
	wantOpening := 100000.0 + 0.6*20000
	if math.Abs(view.OpeningBalance-wantOpening) > 0.01 {
		t.Errorf("opening balance = %.2f, want %.2f", view.OpeningBalance, wantOpening)
	}
	if math.Abs(view.AvailableCredit-40000) > 0.01 {
		t.Errorf("available credit = %.2f, want 40000", view.AvailableCredit)
	}
	if math.Abs(view.UncalledCapital-500000) > 0.01 {
		t.Errorf("uncalled capital = %.2f, want 500000", view.UncalledCapital)
	}
	if view.FirstDeficitDate != "" {
		t.Errorf("unexpected deficit date %q", view.FirstDeficitDate)
	}
	if len(view.Series) != 30 {
		t.Fatalf("series length = %d, want 30", len(view.Series))
	}
}

func TestConsolidatedViewSelection(t *testing.T) {
	anchor := date(2025, time.January, 2)
	state := AppState{
		Entities: forestFixture(),
		Accounts: []Account{
			{ID: "a1", EntityID: "A", OpeningBalance: 100000},
			{ID: "a2", EntityID: "B", OpeningBalance: 20000},
		},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}
	results := Run(state, anchor, 10)

	view := BuildConsolidatedView(state, results, []string{"B"})
	if len(view.Weights) != 1 {
		t.Fatalf("selection of one entity produced %d weights", len(view.Weights))
	}
	if math.Abs(view.OpeningBalance-12000) > 0.01 {
		t.Errorf("selected opening = %.2f, want 0.6 x 20000", view.OpeningBalance)
	}
}

func TestFirstDeficitDate(t *testing.T) {
	anchor := date(2025, time.January, 2)
	state := AppState{
		Entities: []Entity{{ID: "A", Name: "Opco"}},
		Accounts: []Account{{ID: "a1", EntityID: "A", OpeningBalance: 1000}},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "A", Kind: TxExpense, Category: "Suppliers", Description: "Invoice",
			Date: date(2025, time.January, 8), Amount: 5000, IsActive: true,
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}
	results := Run(state, anchor, 20)
	view := BuildConsolidatedView(state, results, nil)
	if view.FirstDeficitDate != "2025-01-08" {
		t.Errorf("first deficit = %q, want 2025-01-08", view.FirstDeficitDate)
	}
}

func TestBudgetStatuses(t *testing.T) {
	anchor := date(2025, time.January, 1)
	state := AppState{
		Entities: []Entity{{ID: "A", Name: "Opco"}},
		Accounts: []Account{{ID: "a1", EntityID: "A", OpeningBalance: 100000}},
		Transactions: []Transaction{{
			ID: "t1", EntityID: "A", Kind: TxExpense, Category: "Insurance", Description: "Building cover",
			Date: date(2025, time.February, 1), Amount: 40000, IsActive: true,
		}},
		Budgets: []Budget{{
			ID: "b1", EntityID: "A", Category: "Insurance",
			AnnualBudget: 60000, ManualActualYTD: 30000,
		}},
		Settings: Settings{PrimeRate: 6, VATRate: 17, CPI: 100},
	}

	results := Run(state, anchor, 60)
	statuses := BuildBudgetStatuses(state, results, anchor)
	if len(statuses) != 1 {
		t.Fatalf("expected one budget status, got %d", len(statuses))
	}
	s := statuses[0]
	if math.Abs(s.ForecastAmount-40000) > 0.01 {
		t.Errorf("forecast = %.2f, want 40000", s.ForecastAmount)
	}
	if math.Abs(s.TotalProjected-70000) > 0.01 {
		t.Errorf("projected = %.2f, want 70000", s.TotalProjected)
	}
	if s.Status != "over" {
		t.Errorf("status = %q, want over", s.Status)
	}
}

func TestUpcomingTasksWindow(t *testing.T) {
	anchor := date(2025, time.June, 1)
	tasks := []Task{
		{ID: "t1", Title: "VAT filing", DueDate: date(2025, time.June, 3)},
		{ID: "t2", Title: "Board pack", DueDate: date(2025, time.June, 2)},
		{ID: "t3", Title: "Renewal", DueDate: date(2025, time.July, 20)},
		{ID: "t4", Title: "Done already", DueDate: date(2025, time.June, 4), IsCompleted: true},
	}
	due := UpcomingTasks(tasks, anchor, 7)
	if len(due) != 2 {
		t.Fatalf("expected 2 upcoming tasks, got %d", len(due))
	}
	if due[0].ID != "t2" || due[1].ID != "t1" {
		t.Errorf("tasks not date-ascending: %v, %v", due[0].ID, due[1].ID)
	}
}
