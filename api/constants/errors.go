package constants

// ============================================================================
// VALIDATION ERRORS - Entities
// ============================================================================

const (
	ErrNoEntities         = "No entities found in the system"
	ErrEntityNotFound     = "Entity not found"
	ErrEntityCreateFailed = "Failed to create entity. Please check if the entity already exists"
	ErrEntityUpdateFailed = "Failed to update entity. Please verify the entity ID and try again"
	ErrEntityHasChildren  = "Entity still has subsidiaries. Reassign or delete them first"
	ErrInvalidOwnership   = "Ownership percentage must be between 0 and 100"
	ErrInvalidParent      = "Parent entity not found"
)

// ============================================================================
// VALIDATION ERRORS - Accounts
// ============================================================================

const (
	ErrAccountNotFound     = "Bank account not found"
	ErrAccountCreateFailed = "Failed to create bank account"
	ErrAccountUpdateFailed = "Failed to update bank account. Please verify the account ID and try again"
	ErrAccountEntity       = "Bank account must belong to an existing entity"
)

// ============================================================================
// VALIDATION ERRORS - Transactions, Loans, Leases
// ============================================================================

const (
	ErrTransactionNotFound     = "Transaction not found"
	ErrTransactionCreateFailed = "Failed to create transaction"
	ErrTransactionUpdateFailed = "Failed to update transaction. Please verify the transaction ID and try again"
	ErrInvalidFrequency        = "Invalid frequency. Must be Monthly, Quarterly, SemiAnnually, Annually or OneTime"
	ErrInvalidDayMode          = "Invalid day mode. Must be SameAsStart, Specific or LastDay"
	ErrLoanNotFound            = "Loan not found"
	ErrLoanCreateFailed        = "Failed to create loan"
	ErrLoanDates               = "Loan end date must be after its start date"
	ErrLeaseNotFound           = "Lease not found"
	ErrLeaseCreateFailed       = "Failed to create lease"
	ErrLeaseDates              = "Lease end date must be after its start date"
)

// ============================================================================
// VALIDATION ERRORS - Guarantees, Tasks, Budgets
// ============================================================================

const (
	ErrGuaranteeNotFound     = "Guarantee not found"
	ErrGuaranteeCreateFailed = "Failed to create guarantee"
	ErrTaskNotFound          = "Task not found"
	ErrTaskCreateFailed      = "Failed to create task"
	ErrBudgetNotFound        = "Budget not found"
	ErrBudgetCreateFailed    = "Failed to create budget"
	ErrSettingsUpdateFailed  = "Failed to update global settings"
)

// ============================================================================
// FORECAST & WORKBOOK ERRORS
// ============================================================================

const (
	ErrForecastFailed             = "Forecast run failed. Please check the snapshot data and try again"
	ErrNoForecastRun              = "No forecast run available. Run a forecast first"
	ErrInvalidHorizon             = "horizon_days must be a positive number"
	ErrInvalidStartDate           = "start_date must be formatted YYYY-MM-DD"
	ErrSnapshotLoadFailed         = "Failed to load the master data snapshot"
	ErrUnsupportedFileType        = "unsupported file type"
	ErrFailedToParseMultipartForm = "Failed to parse multipart form"
	ErrWorkbookExportFailed       = "Failed to build the state workbook"
	ErrWorkbookImportFailed       = "Failed to import the state workbook"
	ErrNoFileUploaded             = "No file found in the upload"
)
