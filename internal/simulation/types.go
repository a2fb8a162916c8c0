package simulation

import "time"

// DefaultHorizonDays is the forecast horizon used when the caller does not ask
// for a specific one.
const DefaultHorizonDays = 730

// Frequency is the recurrence cadence of a financial instrument.
type Frequency string

const (
	FreqMonthly      Frequency = "Monthly"
	FreqQuarterly    Frequency = "Quarterly"
	FreqSemiAnnually Frequency = "SemiAnnually"
	FreqAnnually     Frequency = "Annually"
	FreqOneTime      Frequency = "OneTime"
)

// MonthStep returns the calendar step of the frequency in months, 0 for OneTime.
func (f Frequency) MonthStep() int {
	switch f {
	case FreqMonthly:
		return 1
	case FreqQuarterly:
		return 3
	case FreqSemiAnnually:
		return 6
	case FreqAnnually:
		return 12
	}
	return 0
}

// DayMode selects which day of the month a recurring transaction fires on.
type DayMode string

const (
	DaySameAsStart DayMode = "SameAsStart"
	DaySpecific    DayMode = "Specific"
	DayLastDay     DayMode = "LastDay"
)

// TxKind is the direction/kind of a domain transaction.
type TxKind string

const (
	TxIncome       TxKind = "income"
	TxExpense      TxKind = "expense"
	TxFinancial    TxKind = "financial"
	TxTax          TxKind = "tax"
	TxOperational  TxKind = "operational"
	TxIntercompany TxKind = "intercompany"
)

// LedgerKind is the closed classification assigned to every emitted ledger row.
// Downstream aggregation keys on this, never on free-text categories.
type LedgerKind string

const (
	LedgerOperational  LedgerKind = "operational"
	LedgerFinancial    LedgerKind = "financial"
	LedgerTax          LedgerKind = "tax"
	LedgerIntercompany LedgerKind = "intercompany"
)

// Stable categories for synthetic ledger rows produced by the engine.
const (
	CategoryLoanReceipts    = "Loan Receipts"
	CategoryLoanRepayments  = "Loan Repayments"
	CategoryBankInterest    = "Bank Interest"
	CategoryBanks           = "Banks"
	CategoryRent            = "Rent"
	CategoryAssetPurchase   = "Asset Purchase"
	CategoryAssetSale       = "Asset Sale"
	CategoryVAT             = "VAT"
	CategoryIncomeTax       = "Income Tax"
	CategoryOwnerInjection  = "Owner Injection"
	CategoryOwnerFunding    = "Subsidiary Funding"
	CategoryPartnerCapital  = "Partner Capital"
	CategoryIntercompany    = "Intercompany"
	CategoryCreditBalancing = "Credit Balancing"
)

// Entity is a legal/organizational unit in the ownership forest.
type Entity struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	ParentID            string  `json:"parent_id,omitempty"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
	UncalledCapital     float64 `json:"uncalled_capital"`
	TargetBalance       float64 `json:"target_balance"`
	HasTaxAdvances      bool    `json:"has_tax_advances"`
	TaxAdvanceRate      float64 `json:"tax_advance_rate"`
}

// Account is a bank account belonging to exactly one entity. The engine pools
// all accounts of an entity into one cash position and one credit facility.
type Account struct {
	ID                  string  `json:"id"`
	EntityID            string  `json:"entity_id"`
	BankName            string  `json:"bank_name"`
	AccountNumber       string  `json:"account_number"`
	Nickname            string  `json:"nickname"`
	OpeningBalance      float64 `json:"opening_balance"`
	CreditLimit         float64 `json:"credit_limit"`
	CurrentCreditUtil   float64 `json:"current_credit_util"`
	InterestSpread      float64 `json:"interest_spread"`
	IsTaxAccount        bool    `json:"is_tax_account"`
	GuaranteeLimit      float64 `json:"guarantee_limit"`
	ManualGuaranteeUtil float64 `json:"manual_guarantee_util"`
}

// Milestone is one dated installment of a staged asset transaction.
type Milestone struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Percentage  float64   `json:"percentage"`
	Amount      float64   `json:"amount"`
	Days        int       `json:"days"`
	Date        time.Time `json:"date"`
}

// Transaction is a one-off or recurring financial event tied to one entity.
// Amounts are entered positive; the engine derives the sign from kind/category.
type Transaction struct {
	ID               string      `json:"id"`
	EntityID         string      `json:"entity_id"`
	AccountID        string      `json:"account_id,omitempty"`
	Kind             TxKind      `json:"kind"`
	Category         string      `json:"category"`
	Description      string      `json:"description"`
	Date             time.Time   `json:"date"`
	Amount           float64     `json:"amount"`
	IncludesVAT      bool        `json:"includes_vat"`
	IsRecurring      bool        `json:"is_recurring"`
	Frequency        Frequency   `json:"frequency,omitempty"`
	DayMode          DayMode     `json:"day_mode,omitempty"`
	DayInMonth       int         `json:"day_in_month,omitempty"`
	IsActive         bool        `json:"is_active"`
	IsIntercompany   bool        `json:"is_intercompany"`
	TargetEntityID   string      `json:"target_entity_id,omitempty"`
	TargetAccountID  string      `json:"target_account_id,omitempty"`
	Milestones       []Milestone `json:"milestones,omitempty"`
	LinkageIndexBase float64     `json:"linkage_index_base,omitempty"`
}

// Loan carries independent interest and principal schedules. A OneTime
// principal frequency means a balloon repayment at maturity.
type Loan struct {
	ID                 string    `json:"id"`
	EntityID           string    `json:"entity_id"`
	AccountID          string    `json:"account_id,omitempty"`
	Name               string    `json:"name"`
	Principal          float64   `json:"principal"`
	Spread             float64   `json:"spread"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	InterestFrequency  Frequency `json:"interest_frequency"`
	PrincipalFrequency Frequency `json:"principal_frequency"`
	NeedsRollover      bool      `json:"needs_rollover"`
	IsActive           bool      `json:"is_active"`
}

// Lease produces periodic rent income, optionally CPI linked.
type Lease struct {
	ID               string    `json:"id"`
	EntityID         string    `json:"entity_id"`
	AccountID        string    `json:"account_id,omitempty"`
	TenantName       string    `json:"tenant_name"`
	Property         string    `json:"property"`
	ServiceType      string    `json:"service_type"`
	LeasedArea       float64   `json:"leased_area"`
	RatePerArea      float64   `json:"rate_per_area"`
	NetAmount        float64   `json:"net_amount"`
	Frequency        Frequency `json:"frequency"`
	PaymentDay       int       `json:"payment_day"`
	IncludesVAT      bool      `json:"includes_vat"`
	LinkageIndexBase float64   `json:"linkage_index_base,omitempty"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

// Guarantee cost is a standalone derived calculation, not part of the daily loop.
type Guarantee struct {
	ID                 string    `json:"id"`
	EntityID           string    `json:"entity_id"`
	AccountID          string    `json:"account_id,omitempty"`
	Beneficiary        string    `json:"beneficiary"`
	Amount             float64   `json:"amount"`
	IssueDate          time.Time `json:"issue_date"`
	ExpiryDate         time.Time `json:"expiry_date"`
	SetupFee           float64   `json:"setup_fee"`
	AnnualInterestRate float64   `json:"annual_interest_rate"`
	Notes              string    `json:"notes,omitempty"`
}

// Task is a finance to-do; part of the snapshot, unused by the daily loop.
type Task struct {
	ID          string    `json:"id"`
	EntityID    string    `json:"entity_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    string    `json:"priority"`
	Assignee    string    `json:"assignee"`
	IsCompleted bool      `json:"is_completed"`
	IsRecurring bool      `json:"is_recurring"`
	Frequency   Frequency `json:"frequency,omitempty"`
	DayMode     DayMode   `json:"day_mode,omitempty"`
	DayInMonth  int       `json:"day_in_month,omitempty"`
}

// Budget is an annual envelope per entity/category with a manual YTD actual.
type Budget struct {
	ID              string  `json:"id"`
	EntityID        string  `json:"entity_id"`
	Category        string  `json:"category"`
	Property        string  `json:"property,omitempty"`
	AnnualBudget    float64 `json:"annual_budget"`
	ManualActualYTD float64 `json:"manual_actual_ytd"`
}

// Settings holds the global rate configuration.
type Settings struct {
	PrimeRate           float64    `json:"prime_rate"`
	PrevPrimeRate       *float64   `json:"prev_prime_rate,omitempty"`
	PrimeRateChangeDate *time.Time `json:"prime_rate_change_date,omitempty"`
	VATRate             float64    `json:"vat_rate"`
	CPI                 float64    `json:"cpi"`
}

// AppState is the full immutable domain snapshot consumed by the engine.
type AppState struct {
	Entities     []Entity      `json:"entities"`
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Loans        []Loan        `json:"loans"`
	Leases       []Lease       `json:"leases"`
	Guarantees   []Guarantee   `json:"guarantees"`
	Tasks        []Task        `json:"tasks"`
	Budgets      []Budget      `json:"budgets"`
	Settings     Settings      `json:"settings"`
}

// LedgerEntry is one synthetic row in a day's audit ledger. Amount is signed.
type LedgerEntry struct {
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	EntityID    string     `json:"entity_id"`
	Kind        LedgerKind `json:"kind"`
	Category    string     `json:"category,omitempty"`
	AccountID   string     `json:"account_id,omitempty"`
	IncludesVAT bool       `json:"includes_vat,omitempty"`
}

// DailyResult is the immutable snapshot of one simulated day.
type DailyResult struct {
	Date             string             `json:"date"`
	EntityBalances   map[string]float64 `json:"entity_balances"`
	EntityCreditUtil map[string]float64 `json:"entity_credit_util"`
	AggregatedCash   float64            `json:"aggregated_cash"`
	Transactions     []LedgerEntry      `json:"transactions"`
	Alerts           []string           `json:"alerts"`
}
