package workbook

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"RealityFlow/internal/simulation"
)

var dateLayouts = []string{simulation.DateFormat, "02-01-2006", "01/02/2006", "2 Jan 2006", "2006/01/02"}

// ImportState parses an uploaded workbook back into a snapshot. The extension
// picks the reader: .xlsx goes through excelize, legacy .xls through
// xlsReader, and .csv is accepted as a transactions-only sheet. Unknown sheets
// and unknown columns are ignored so older backups keep importing.
func ImportState(r io.Reader, filename string) (simulation.AppState, error) {
	ext := strings.ToLower(filepathExt(filename))
	var (
		sheets map[string][][]string
		err    error
	)
	switch ext {
	case ".xlsx":
		sheets, err = readXlsxSheets(r)
	case ".xls":
		sheets, err = readXlsSheets(r)
	case ".csv":
		var rows [][]string
		rows, err = csv.NewReader(r).ReadAll()
		sheets = map[string][][]string{SheetTransactions: rows}
	default:
		return simulation.AppState{}, errors.New("unsupported file type: " + ext)
	}
	if err != nil {
		return simulation.AppState{}, err
	}
	return decodeState(sheets), nil
}

func filepathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func readXlsxSheets(r io.Reader) (map[string][][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, err
		}
		sheets[name] = rows
	}
	return sheets, nil
}

// readXlsSheets stages the upload into a temp file because xlsReader only
// opens paths.
func readXlsSheets(r io.Reader) (map[string][][]string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp("", "rfstate-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, err
	}
	sheets := make(map[string][][]string)
	for i := 0; i < book.GetNumberSheets(); i++ {
		sheet, err := book.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		var rows [][]string
		for _, xlsRow := range sheet.GetRows() {
			var vals []string
			for _, col := range xlsRow.GetCols() {
				vals = append(vals, col.GetString())
			}
			rows = append(rows, vals)
		}
		sheets[sheet.GetName()] = rows
	}
	return sheets, nil
}

// sheetRows gives column access by normalized header name.
type sheetRows struct {
	cols map[string]int
	rows [][]string
}

func newSheetRows(raw [][]string) sheetRows {
	s := sheetRows{cols: make(map[string]int)}
	if len(raw) == 0 {
		return s
	}
	for i, h := range raw[0] {
		hn := strings.TrimSpace(h)
		hn = strings.Trim(hn, "'\"`")
		hn = strings.ToLower(hn)
		hn = strings.ReplaceAll(hn, " ", "_")
		s.cols[hn] = i
	}
	s.rows = raw[1:]
	return s
}

func (s sheetRows) get(row []string, col string) string {
	i, ok := s.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s sheetRows) getFloat(row []string, col string) float64 {
	cell := strings.ReplaceAll(s.get(row, col), ",", "")
	if cell == "" {
		return 0
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func (s sheetRows) getInt(row []string, col string) int {
	return int(s.getFloat(row, col))
}

func (s sheetRows) getBool(row []string, col string) bool {
	switch strings.ToLower(s.get(row, col)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func (s sheetRows) getDate(row []string, col string) time.Time {
	cell := s.get(row, col)
	if cell == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t
		}
	}
	return time.Time{}
}

func decodeState(sheets map[string][][]string) simulation.AppState {
	var state simulation.AppState

	s := newSheetRows(sheets[SheetEntities])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		state.Entities = append(state.Entities, simulation.Entity{
			ID:                  s.get(row, "id"),
			Name:                s.get(row, "name"),
			ParentID:            s.get(row, "parent_id"),
			OwnershipPercentage: s.getFloat(row, "ownership_percentage"),
			UncalledCapital:     s.getFloat(row, "uncalled_capital"),
			TargetBalance:       s.getFloat(row, "target_balance"),
			HasTaxAdvances:      s.getBool(row, "has_tax_advances"),
			TaxAdvanceRate:      s.getFloat(row, "tax_advance_rate"),
		})
	}

	s = newSheetRows(sheets[SheetAccounts])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		state.Accounts = append(state.Accounts, simulation.Account{
			ID:                  s.get(row, "id"),
			EntityID:            s.get(row, "entity_id"),
			BankName:            s.get(row, "bank_name"),
			AccountNumber:       s.get(row, "account_number"),
			Nickname:            s.get(row, "nickname"),
			OpeningBalance:      s.getFloat(row, "opening_balance"),
			CreditLimit:         s.getFloat(row, "credit_limit"),
			CurrentCreditUtil:   s.getFloat(row, "current_credit_util"),
			InterestSpread:      s.getFloat(row, "interest_spread"),
			IsTaxAccount:        s.getBool(row, "is_tax_account"),
			GuaranteeLimit:      s.getFloat(row, "guarantee_limit"),
			ManualGuaranteeUtil: s.getFloat(row, "manual_guarantee_util"),
		})
	}

	s = newSheetRows(sheets[SheetTransactions])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		tx := simulation.Transaction{
			ID:               s.get(row, "id"),
			EntityID:         s.get(row, "entity_id"),
			AccountID:        s.get(row, "account_id"),
			Kind:             simulation.TxKind(s.get(row, "kind")),
			Category:         s.get(row, "category"),
			Description:      s.get(row, "description"),
			Date:             s.getDate(row, "date"),
			Amount:           s.getFloat(row, "amount"),
			IncludesVAT:      s.getBool(row, "includes_vat"),
			IsRecurring:      s.getBool(row, "is_recurring"),
			Frequency:        simulation.Frequency(s.get(row, "frequency")),
			DayMode:          simulation.DayMode(s.get(row, "day_mode")),
			DayInMonth:       s.getInt(row, "day_in_month"),
			IsActive:         s.getBool(row, "is_active"),
			IsIntercompany:   s.getBool(row, "is_intercompany"),
			TargetEntityID:   s.get(row, "target_entity_id"),
			TargetAccountID:  s.get(row, "target_account_id"),
			LinkageIndexBase: s.getFloat(row, "linkage_index_base"),
		}
		if cell := s.get(row, "milestones"); strings.HasPrefix(cell, "[") {
			var ms []simulation.Milestone
			if err := json.Unmarshal([]byte(cell), &ms); err == nil {
				tx.Milestones = ms
			}
		}
		state.Transactions = append(state.Transactions, tx)
	}

	s = newSheetRows(sheets[SheetLoans])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		state.Loans = append(state.Loans, simulation.Loan{
			ID:                 s.get(row, "id"),
			EntityID:           s.get(row, "entity_id"),
			AccountID:          s.get(row, "account_id"),
			Name:               s.get(row, "name"),
			Principal:          s.getFloat(row, "principal"),
			Spread:             s.getFloat(row, "spread"),
			StartDate:          s.getDate(row, "start_date"),
			EndDate:            s.getDate(row, "end_date"),
			InterestFrequency:  simulation.Frequency(s.get(row, "interest_frequency")),
			PrincipalFrequency: simulation.Frequency(s.get(row, "principal_frequency")),
			NeedsRollover:      s.getBool(row, "needs_rollover"),
			IsActive:           s.getBool(row, "is_active"),
		})
	}

	s = newSheetRows(sheets[SheetLeases])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		state.Leases = append(state.Leases, simulation.Lease{
			ID:               s.get(row, "id"),
			EntityID:         s.get(row, "entity_id"),
			AccountID:        s.get(row, "account_id"),
			TenantName:       s.get(row, "tenant_name"),
			Property:         s.get(row, "property"),
			ServiceType:      s.get(row, "service_type"),
			LeasedArea:       s.getFloat(row, "leased_area"),
			RatePerArea:      s.getFloat(row, "rate_per_area"),
			NetAmount:        s.getFloat(row, "net_amount"),
			Frequency:        simulation.Frequency(s.get(row, "frequency")),
			PaymentDay:       s.getInt(row, "payment_day"),
			IncludesVAT:      s.getBool(row, "includes_vat"),
			LinkageIndexBase: s.getFloat(row, "linkage_index_base"),
			StartDate:        s.getDate(row, "start_date"),
			EndDate:          s.getDate(row, "end_date"),
		})
	}

	s = newSheetRows(sheets[SheetGuarantees])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		state.Guarantees = append(state.Guarantees, simulation.Guarantee{
			ID:                 s.get(row, "id"),
			EntityID:           s.get(row, "entity_id"),
			AccountID:          s.get(row, "account_id"),
			Beneficiary:        s.get(row, "beneficiary"),
			Amount:             s.getFloat(row, "amount"),
			IssueDate:          s.getDate(row, "issue_date"),
			ExpiryDate:         s.getDate(row, "expiry_date"),
			SetupFee:           s.getFloat(row, "setup_fee"),
			AnnualInterestRate: s.getFloat(row, "annual_interest_rate"),
			Notes:              s.get(row, "notes"),
		})
	}

	s = newSheetRows(sheets[SheetTasks])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		state.Tasks = append(state.Tasks, simulation.Task{
			ID:          s.get(row, "id"),
			EntityID:    s.get(row, "entity_id"),
			Title:       s.get(row, "title"),
			Description: s.get(row, "description"),
			DueDate:     s.getDate(row, "due_date"),
			Priority:    s.get(row, "priority"),
			Assignee:    s.get(row, "assignee"),
			IsCompleted: s.getBool(row, "is_completed"),
			IsRecurring: s.getBool(row, "is_recurring"),
			Frequency:   simulation.Frequency(s.get(row, "frequency")),
			DayMode:     simulation.DayMode(s.get(row, "day_mode")),
			DayInMonth:  s.getInt(row, "day_in_month"),
		})
	}

	s = newSheetRows(sheets[SheetBudgets])
	for _, row := range s.rows {
		if s.get(row, "id") == "" {
			continue
		}
		state.Budgets = append(state.Budgets, simulation.Budget{
			ID:              s.get(row, "id"),
			EntityID:        s.get(row, "entity_id"),
			Category:        s.get(row, "category"),
			Property:        s.get(row, "property"),
			AnnualBudget:    s.getFloat(row, "annual_budget"),
			ManualActualYTD: s.getFloat(row, "manual_actual_ytd"),
		})
	}

	s = newSheetRows(sheets[SheetSettings])
	if len(s.rows) > 0 {
		row := s.rows[0]
		state.Settings = simulation.Settings{
			PrimeRate: s.getFloat(row, "prime_rate"),
			VATRate:   s.getFloat(row, "vat_rate"),
			CPI:       s.getFloat(row, "cpi"),
		}
		if cell := s.get(row, "prev_prime_rate"); cell != "" {
			prev := s.getFloat(row, "prev_prime_rate")
			state.Settings.PrevPrimeRate = &prev
		}
		if d := s.getDate(row, "prime_rate_change_date"); !d.IsZero() {
			state.Settings.PrimeRateChangeDate = &d
		}
	}

	return state
}
