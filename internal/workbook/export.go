package workbook

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"RealityFlow/internal/simulation"
)

// Sheet names of a state workbook. Import looks sheets up by these names, so
// they are part of the file format.
const (
	SheetEntities     = "Entities"
	SheetAccounts     = "Accounts"
	SheetTransactions = "Transactions"
	SheetLoans        = "Loans"
	SheetLeases       = "Leases"
	SheetGuarantees   = "Guarantees"
	SheetTasks        = "Tasks"
	SheetBudgets      = "Budgets"
	SheetSettings     = "Settings"
)

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(simulation.DateFormat)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func fmtBool(b bool) string {
	return strconv.FormatBool(b)
}

type sheetDef struct {
	name   string
	header []string
	rows   [][]interface{}
}

// ExportState writes the full snapshot as a multi-sheet xlsx workbook. One
// sheet per collection plus a single-row Settings sheet; milestone lists are
// JSON-encoded into a single cell of their parent transaction row.
func ExportState(w io.Writer, state simulation.AppState) error {
	sheets := []sheetDef{
		entitySheet(state.Entities),
		accountSheet(state.Accounts),
		transactionSheet(state.Transactions),
		loanSheet(state.Loans),
		leaseSheet(state.Leases),
		guaranteeSheet(state.Guarantees),
		taskSheet(state.Tasks),
		budgetSheet(state.Budgets),
		settingsSheet(state.Settings),
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(s.name); err != nil {
				return err
			}
		}
		header := make([]interface{}, len(s.header))
		for j, h := range s.header {
			header[j] = h
		}
		if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
			return err
		}
		for j, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func entitySheet(entities []simulation.Entity) sheetDef {
	s := sheetDef{name: SheetEntities, header: []string{
		"id", "name", "parent_id", "ownership_percentage", "uncalled_capital",
		"target_balance", "has_tax_advances", "tax_advance_rate",
	}}
	for _, e := range entities {
		s.rows = append(s.rows, []interface{}{
			e.ID, e.Name, e.ParentID, e.OwnershipPercentage, e.UncalledCapital,
			e.TargetBalance, fmtBool(e.HasTaxAdvances), e.TaxAdvanceRate,
		})
	}
	return s
}

func accountSheet(accounts []simulation.Account) sheetDef {
	s := sheetDef{name: SheetAccounts, header: []string{
		"id", "entity_id", "bank_name", "account_number", "nickname",
		"opening_balance", "credit_limit", "current_credit_util",
		"interest_spread", "is_tax_account", "guarantee_limit", "manual_guarantee_util",
	}}
	for _, a := range accounts {
		s.rows = append(s.rows, []interface{}{
			a.ID, a.EntityID, a.BankName, a.AccountNumber, a.Nickname,
			a.OpeningBalance, a.CreditLimit, a.CurrentCreditUtil,
			a.InterestSpread, fmtBool(a.IsTaxAccount), a.GuaranteeLimit, a.ManualGuaranteeUtil,
		})
	}
	return s
}

func transactionSheet(txs []simulation.Transaction) sheetDef {
	s := sheetDef{name: SheetTransactions, header: []string{
		"id", "entity_id", "account_id", "kind", "category", "description",
		"date", "amount", "includes_vat", "is_recurring", "frequency",
		"day_mode", "day_in_month", "is_active", "is_intercompany",
		"target_entity_id", "target_account_id", "milestones", "linkage_index_base",
	}}
	for _, t := range txs {
		milestones := ""
		if len(t.Milestones) > 0 {
			if b, err := json.Marshal(t.Milestones); err == nil {
				milestones = string(b)
			}
		}
		s.rows = append(s.rows, []interface{}{
			t.ID, t.EntityID, t.AccountID, string(t.Kind), t.Category, t.Description,
			fmtDate(t.Date), t.Amount, fmtBool(t.IncludesVAT), fmtBool(t.IsRecurring),
			string(t.Frequency), string(t.DayMode), t.DayInMonth, fmtBool(t.IsActive),
			fmtBool(t.IsIntercompany), t.TargetEntityID, t.TargetAccountID,
			milestones, t.LinkageIndexBase,
		})
	}
	return s
}

func loanSheet(loans []simulation.Loan) sheetDef {
	s := sheetDef{name: SheetLoans, header: []string{
		"id", "entity_id", "account_id", "name", "principal", "spread",
		"start_date", "end_date", "interest_frequency", "principal_frequency",
		"needs_rollover", "is_active",
	}}
	for _, l := range loans {
		s.rows = append(s.rows, []interface{}{
			l.ID, l.EntityID, l.AccountID, l.Name, l.Principal, l.Spread,
			fmtDate(l.StartDate), fmtDate(l.EndDate),
			string(l.InterestFrequency), string(l.PrincipalFrequency),
			fmtBool(l.NeedsRollover), fmtBool(l.IsActive),
		})
	}
	return s
}

func leaseSheet(leases []simulation.Lease) sheetDef {
	s := sheetDef{name: SheetLeases, header: []string{
		"id", "entity_id", "account_id", "tenant_name", "property", "service_type",
		"leased_area", "rate_per_area", "net_amount", "frequency", "payment_day",
		"includes_vat", "linkage_index_base", "start_date", "end_date",
	}}
	for _, l := range leases {
		s.rows = append(s.rows, []interface{}{
			l.ID, l.EntityID, l.AccountID, l.TenantName, l.Property, l.ServiceType,
			l.LeasedArea, l.RatePerArea, l.NetAmount, string(l.Frequency), l.PaymentDay,
			fmtBool(l.IncludesVAT), l.LinkageIndexBase, fmtDate(l.StartDate), fmtDate(l.EndDate),
		})
	}
	return s
}

func guaranteeSheet(gs []simulation.Guarantee) sheetDef {
	s := sheetDef{name: SheetGuarantees, header: []string{
		"id", "entity_id", "account_id", "beneficiary", "amount",
		"issue_date", "expiry_date", "setup_fee", "annual_interest_rate", "notes",
	}}
	for _, g := range gs {
		s.rows = append(s.rows, []interface{}{
			g.ID, g.EntityID, g.AccountID, g.Beneficiary, g.Amount,
			fmtDate(g.IssueDate), fmtDate(g.ExpiryDate), g.SetupFee,
			g.AnnualInterestRate, g.Notes,
		})
	}
	return s
}

func taskSheet(tasks []simulation.Task) sheetDef {
	s := sheetDef{name: SheetTasks, header: []string{
		"id", "entity_id", "title", "description", "due_date", "priority",
		"assignee", "is_completed", "is_recurring", "frequency", "day_mode", "day_in_month",
	}}
	for _, t := range tasks {
		s.rows = append(s.rows, []interface{}{
			t.ID, t.EntityID, t.Title, t.Description, fmtDate(t.DueDate), t.Priority,
			t.Assignee, fmtBool(t.IsCompleted), fmtBool(t.IsRecurring),
			string(t.Frequency), string(t.DayMode), t.DayInMonth,
		})
	}
	return s
}

func budgetSheet(budgets []simulation.Budget) sheetDef {
	s := sheetDef{name: SheetBudgets, header: []string{
		"id", "entity_id", "category", "property", "annual_budget", "manual_actual_ytd",
	}}
	for _, b := range budgets {
		s.rows = append(s.rows, []interface{}{
			b.ID, b.EntityID, b.Category, b.Property, b.AnnualBudget, b.ManualActualYTD,
		})
	}
	return s
}

func settingsSheet(st simulation.Settings) sheetDef {
	prev := ""
	if st.PrevPrimeRate != nil {
		prev = fmtFloat(*st.PrevPrimeRate)
	}
	changeDate := ""
	if st.PrimeRateChangeDate != nil {
		changeDate = fmtDate(*st.PrimeRateChangeDate)
	}
	return sheetDef{
		name: SheetSettings,
		header: []string{
			"prime_rate", "prev_prime_rate", "prime_rate_change_date", "vat_rate", "cpi",
		},
		rows: [][]interface{}{{
			st.PrimeRate, prev, changeDate, st.VATRate, st.CPI,
		}},
	}
}
