package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"RealityFlow/internal/simulation"
)

// LoadSnapshot assembles the full engine snapshot from the master tables.
// Soft-deleted rows are excluded at the query level.
func LoadSnapshot(ctx context.Context, pool *pgxpool.Pool) (simulation.AppState, error) {
	var state simulation.AppState

	rows, err := pool.Query(ctx, `
		SELECT entity_id, name, COALESCE(parent_id, ''), ownership_pct,
		       uncalled_capital, target_balance, has_tax_advances, tax_advance_rate
		FROM flow_entities WHERE status <> 'Deleted' ORDER BY entity_id`)
	if err != nil {
		return state, fmt.Errorf("load entities: %w", err)
	}
	for rows.Next() {
		var e simulation.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.ParentID, &e.OwnershipPercentage,
			&e.UncalledCapital, &e.TargetBalance, &e.HasTaxAdvances, &e.TaxAdvanceRate); err != nil {
			rows.Close()
			return state, err
		}
		state.Entities = append(state.Entities, e)
	}
	rows.Close()

	rows, err = pool.Query(ctx, `
		SELECT account_id, entity_id, COALESCE(bank_name, ''), COALESCE(account_number, ''),
		       COALESCE(nickname, ''), opening_balance, credit_limit, current_credit_util,
		       interest_spread, is_tax_account, guarantee_limit, manual_guarantee_util
		FROM flow_accounts WHERE status <> 'Deleted' ORDER BY account_id`)
	if err != nil {
		return state, fmt.Errorf("load accounts: %w", err)
	}
	for rows.Next() {
		var a simulation.Account
		if err := rows.Scan(&a.ID, &a.EntityID, &a.BankName, &a.AccountNumber,
			&a.Nickname, &a.OpeningBalance, &a.CreditLimit, &a.CurrentCreditUtil,
			&a.InterestSpread, &a.IsTaxAccount, &a.GuaranteeLimit, &a.ManualGuaranteeUtil); err != nil {
			rows.Close()
			return state, err
		}
		state.Accounts = append(state.Accounts, a)
	}
	rows.Close()

	rows, err = pool.Query(ctx, `
		SELECT transaction_id, entity_id, COALESCE(account_id, ''), kind, category,
		       COALESCE(description, ''), txn_date, amount, includes_vat, is_recurring,
		       COALESCE(frequency, ''), COALESCE(day_mode, ''), COALESCE(day_in_month, 0),
		       is_active, is_intercompany, COALESCE(target_entity_id, ''),
		       COALESCE(target_account_id, ''), COALESCE(milestones, '[]'),
		       COALESCE(linkage_index_base, 0)
		FROM flow_transactions WHERE status <> 'Deleted' ORDER BY transaction_id`)
	if err != nil {
		return state, fmt.Errorf("load transactions: %w", err)
	}
	for rows.Next() {
		var t simulation.Transaction
		var milestonesJSON []byte
		if err := rows.Scan(&t.ID, &t.EntityID, &t.AccountID, &t.Kind, &t.Category,
			&t.Description, &t.Date, &t.Amount, &t.IncludesVAT, &t.IsRecurring,
			&t.Frequency, &t.DayMode, &t.DayInMonth, &t.IsActive, &t.IsIntercompany,
			&t.TargetEntityID, &t.TargetAccountID, &milestonesJSON, &t.LinkageIndexBase); err != nil {
			rows.Close()
			return state, err
		}
		json.Unmarshal(milestonesJSON, &t.Milestones)
		state.Transactions = append(state.Transactions, t)
	}
	rows.Close()

	rows, err = pool.Query(ctx, `
		SELECT loan_id, entity_id, COALESCE(account_id, ''), name, principal, spread,
		       start_date, end_date, interest_frequency, principal_frequency,
		       needs_rollover, is_active
		FROM flow_loans WHERE status <> 'Deleted' ORDER BY loan_id`)
	if err != nil {
		return state, fmt.Errorf("load loans: %w", err)
	}
	for rows.Next() {
		var l simulation.Loan
		if err := rows.Scan(&l.ID, &l.EntityID, &l.AccountID, &l.Name, &l.Principal,
			&l.Spread, &l.StartDate, &l.EndDate, &l.InterestFrequency,
			&l.PrincipalFrequency, &l.NeedsRollover, &l.IsActive); err != nil {
			rows.Close()
			return state, err
		}
		state.Loans = append(state.Loans, l)
	}
	rows.Close()

	rows, err = pool.Query(ctx, `
		SELECT lease_id, entity_id, COALESCE(account_id, ''), COALESCE(tenant_name, ''),
		       COALESCE(property, ''), COALESCE(service_type, ''), leased_area,
		       rate_per_sqm, net_amount, frequency, payment_day, includes_vat,
		       COALESCE(linkage_index_base, 0), start_date, end_date
		FROM flow_leases WHERE status <> 'Deleted' ORDER BY lease_id`)
	if err != nil {
		return state, fmt.Errorf("load leases: %w", err)
	}
	for rows.Next() {
		var l simulation.Lease
		if err := rows.Scan(&l.ID, &l.EntityID, &l.AccountID, &l.TenantName,
			&l.Property, &l.ServiceType, &l.LeasedArea, &l.RatePerArea, &l.NetAmount,
			&l.Frequency, &l.PaymentDay, &l.IncludesVAT, &l.LinkageIndexBase,
			&l.StartDate, &l.EndDate); err != nil {
			rows.Close()
			return state, err
		}
		state.Leases = append(state.Leases, l)
	}
	rows.Close()

	rows, err = pool.Query(ctx, `
		SELECT guarantee_id, entity_id, COALESCE(account_id, ''), COALESCE(beneficiary, ''),
		       amount, issue_date, expiry_date, setup_fee, annual_interest_rate,
		       COALESCE(notes, '')
		FROM flow_guarantees WHERE status <> 'Deleted' ORDER BY guarantee_id`)
	if err != nil {
		return state, fmt.Errorf("load guarantees: %w", err)
	}
	for rows.Next() {
		var g simulation.Guarantee
		if err := rows.Scan(&g.ID, &g.EntityID, &g.AccountID, &g.Beneficiary,
			&g.Amount, &g.IssueDate, &g.ExpiryDate, &g.SetupFee,
			&g.AnnualInterestRate, &g.Notes); err != nil {
			rows.Close()
			return state, err
		}
		state.Guarantees = append(state.Guarantees, g)
	}
	rows.Close()

	rows, err = pool.Query(ctx, `
		SELECT task_id, entity_id, title, COALESCE(description, ''), due_date,
		       COALESCE(priority, ''), COALESCE(assignee, ''), is_completed,
		       is_recurring, COALESCE(frequency, ''), COALESCE(day_mode, ''),
		       COALESCE(day_in_month, 0)
		FROM flow_tasks WHERE status <> 'Deleted' ORDER BY due_date, task_id`)
	if err != nil {
		return state, fmt.Errorf("load tasks: %w", err)
	}
	for rows.Next() {
		var t simulation.Task
		if err := rows.Scan(&t.ID, &t.EntityID, &t.Title, &t.Description, &t.DueDate,
			&t.Priority, &t.Assignee, &t.IsCompleted, &t.IsRecurring,
			&t.Frequency, &t.DayMode, &t.DayInMonth); err != nil {
			rows.Close()
			return state, err
		}
		state.Tasks = append(state.Tasks, t)
	}
	rows.Close()

	rows, err = pool.Query(ctx, `
		SELECT budget_id, entity_id, category, COALESCE(property, ''),
		       annual_budget, manual_actual_ytd
		FROM flow_budgets WHERE status <> 'Deleted' ORDER BY budget_id`)
	if err != nil {
		return state, fmt.Errorf("load budgets: %w", err)
	}
	for rows.Next() {
		var b simulation.Budget
		if err := rows.Scan(&b.ID, &b.EntityID, &b.Category, &b.Property,
			&b.AnnualBudget, &b.ManualActualYTD); err != nil {
			rows.Close()
			return state, err
		}
		state.Budgets = append(state.Budgets, b)
	}
	rows.Close()

	var prevRate *float64
	var changeDate *time.Time
	err = pool.QueryRow(ctx, `
		SELECT prime_rate, prev_prime_rate, prime_rate_change_date, vat_rate, cpi
		FROM flow_settings ORDER BY updated_at DESC LIMIT 1`).
		Scan(&state.Settings.PrimeRate, &prevRate, &changeDate,
			&state.Settings.VATRate, &state.Settings.CPI)
	if err != nil && err != pgx.ErrNoRows {
		return state, fmt.Errorf("load settings: %w", err)
	}
	state.Settings.PrevPrimeRate = prevRate
	state.Settings.PrimeRateChangeDate = changeDate

	return state, nil
}

// ReplaceSnapshot swaps the master tables for an imported snapshot in one
// transaction. Bulk rows go in through CopyFrom.
func ReplaceSnapshot(ctx context.Context, pool *pgxpool.Pool, state simulation.AppState) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"flow_entities", "flow_accounts", "flow_transactions", "flow_loans",
		"flow_leases", "flow_guarantees", "flow_tasks", "flow_budgets",
	}
	for _, tbl := range tables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+tbl); err != nil {
			return fmt.Errorf("clear %s: %w", tbl, err)
		}
	}

	entityRows := make([][]interface{}, len(state.Entities))
	for i, e := range state.Entities {
		entityRows[i] = []interface{}{
			e.ID, e.Name, nullIfEmpty(e.ParentID), e.OwnershipPercentage,
			e.UncalledCapital, e.TargetBalance, e.HasTaxAdvances, e.TaxAdvanceRate, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_entities"},
		[]string{"entity_id", "name", "parent_id", "ownership_pct", "uncalled_capital",
			"target_balance", "has_tax_advances", "tax_advance_rate", "status"},
		pgx.CopyFromRows(entityRows)); err != nil {
		return fmt.Errorf("copy entities: %w", err)
	}

	accountRows := make([][]interface{}, len(state.Accounts))
	for i, a := range state.Accounts {
		accountRows[i] = []interface{}{
			a.ID, a.EntityID, a.BankName, a.AccountNumber, a.Nickname,
			a.OpeningBalance, a.CreditLimit, a.CurrentCreditUtil, a.InterestSpread,
			a.IsTaxAccount, a.GuaranteeLimit, a.ManualGuaranteeUtil, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_accounts"},
		[]string{"account_id", "entity_id", "bank_name", "account_number", "nickname",
			"opening_balance", "credit_limit", "current_credit_util", "interest_spread",
			"is_tax_account", "guarantee_limit", "manual_guarantee_util", "status"},
		pgx.CopyFromRows(accountRows)); err != nil {
		return fmt.Errorf("copy accounts: %w", err)
	}

	txRows := make([][]interface{}, len(state.Transactions))
	for i, t := range state.Transactions {
		var milestones interface{}
		if len(t.Milestones) > 0 {
			b, err := json.Marshal(t.Milestones)
			if err != nil {
				return fmt.Errorf("encode milestones for %s: %w", t.ID, err)
			}
			milestones = string(b)
		}
		txRows[i] = []interface{}{
			t.ID, t.EntityID, nullIfEmpty(t.AccountID), string(t.Kind), t.Category,
			t.Description, t.Date, t.Amount, t.IncludesVAT, t.IsRecurring,
			nullIfEmpty(string(t.Frequency)), nullIfEmpty(string(t.DayMode)), t.DayInMonth,
			t.IsActive, t.IsIntercompany, nullIfEmpty(t.TargetEntityID),
			nullIfEmpty(t.TargetAccountID), milestones, t.LinkageIndexBase, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_transactions"},
		[]string{"transaction_id", "entity_id", "account_id", "kind", "category",
			"description", "txn_date", "amount", "includes_vat", "is_recurring",
			"frequency", "day_mode", "day_in_month", "is_active", "is_intercompany",
			"target_entity_id", "target_account_id", "milestones", "linkage_index_base", "status"},
		pgx.CopyFromRows(txRows)); err != nil {
		return fmt.Errorf("copy transactions: %w", err)
	}

	loanRows := make([][]interface{}, len(state.Loans))
	for i, l := range state.Loans {
		loanRows[i] = []interface{}{
			l.ID, l.EntityID, nullIfEmpty(l.AccountID), l.Name, l.Principal, l.Spread,
			l.StartDate, l.EndDate, string(l.InterestFrequency), string(l.PrincipalFrequency),
			l.NeedsRollover, l.IsActive, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_loans"},
		[]string{"loan_id", "entity_id", "account_id", "name", "principal", "spread",
			"start_date", "end_date", "interest_frequency", "principal_frequency",
			"needs_rollover", "is_active", "status"},
		pgx.CopyFromRows(loanRows)); err != nil {
		return fmt.Errorf("copy loans: %w", err)
	}

	leaseRows := make([][]interface{}, len(state.Leases))
	for i, l := range state.Leases {
		leaseRows[i] = []interface{}{
			l.ID, l.EntityID, nullIfEmpty(l.AccountID), l.TenantName, l.Property,
			l.ServiceType, l.LeasedArea, l.RatePerArea, l.NetAmount, string(l.Frequency),
			l.PaymentDay, l.IncludesVAT, l.LinkageIndexBase, l.StartDate, l.EndDate, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_leases"},
		[]string{"lease_id", "entity_id", "account_id", "tenant_name", "property",
			"service_type", "leased_area", "rate_per_sqm", "net_amount", "frequency",
			"payment_day", "includes_vat", "linkage_index_base", "start_date", "end_date", "status"},
		pgx.CopyFromRows(leaseRows)); err != nil {
		return fmt.Errorf("copy leases: %w", err)
	}

	guaranteeRows := make([][]interface{}, len(state.Guarantees))
	for i, g := range state.Guarantees {
		guaranteeRows[i] = []interface{}{
			g.ID, g.EntityID, nullIfEmpty(g.AccountID), g.Beneficiary, g.Amount,
			g.IssueDate, g.ExpiryDate, g.SetupFee, g.AnnualInterestRate, g.Notes, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_guarantees"},
		[]string{"guarantee_id", "entity_id", "account_id", "beneficiary", "amount",
			"issue_date", "expiry_date", "setup_fee", "annual_interest_rate", "notes", "status"},
		pgx.CopyFromRows(guaranteeRows)); err != nil {
		return fmt.Errorf("copy guarantees: %w", err)
	}

	taskRows := make([][]interface{}, len(state.Tasks))
	for i, t := range state.Tasks {
		taskRows[i] = []interface{}{
			t.ID, t.EntityID, t.Title, t.Description, t.DueDate, t.Priority, t.Assignee,
			t.IsCompleted, t.IsRecurring, nullIfEmpty(string(t.Frequency)),
			nullIfEmpty(string(t.DayMode)), t.DayInMonth, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_tasks"},
		[]string{"task_id", "entity_id", "title", "description", "due_date", "priority",
			"assignee", "is_completed", "is_recurring", "frequency", "day_mode",
			"day_in_month", "status"},
		pgx.CopyFromRows(taskRows)); err != nil {
		return fmt.Errorf("copy tasks: %w", err)
	}

	budgetRows := make([][]interface{}, len(state.Budgets))
	for i, b := range state.Budgets {
		budgetRows[i] = []interface{}{
			b.ID, b.EntityID, b.Category, b.Property, b.AnnualBudget, b.ManualActualYTD, "Approved",
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_budgets"},
		[]string{"budget_id", "entity_id", "category", "property", "annual_budget",
			"manual_actual_ytd", "status"},
		pgx.CopyFromRows(budgetRows)); err != nil {
		return fmt.Errorf("copy budgets: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO flow_settings (prime_rate, prev_prime_rate, prime_rate_change_date, vat_rate, cpi, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		state.Settings.PrimeRate, state.Settings.PrevPrimeRate,
		state.Settings.PrimeRateChangeDate, state.Settings.VATRate, state.Settings.CPI); err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}

	return tx.Commit(ctx)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
