package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type LoanRequest struct {
	EntityID           string  `json:"entity_id"`
	AccountID          string  `json:"account_id,omitempty"`
	Name               string  `json:"name"`
	Principal          float64 `json:"principal"`
	Spread             float64 `json:"spread"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	InterestFrequency  string  `json:"interest_frequency"`
	PrincipalFrequency string  `json:"principal_frequency"`
	NeedsRollover      bool    `json:"needs_rollover"`
	IsActive           bool    `json:"is_active"`
}

func CreateLoans(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Loans []LoanRequest `json:"loans"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Loans) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Loans))
		for _, loan := range req.Loans {
			if !validFrequency(loan.InterestFrequency) || !validFrequency(loan.PrincipalFrequency) {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidFrequency)
				return
			}
			if loan.EndDate <= loan.StartDate {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrLoanDates)
				return
			}
			loanID := newID("LOAN")
			_, err := db.Exec(`
				INSERT INTO flow_loans
					(loan_id, entity_id, account_id, name, principal, spread, start_date,
					 end_date, interest_frequency, principal_frequency, needs_rollover,
					 is_active, status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'Approved',now(),now())`,
				loanID, loan.EntityID, nullable(loan.AccountID), loan.Name, loan.Principal,
				loan.Spread, loan.StartDate, loan.EndDate, loan.InterestFrequency,
				loan.PrincipalFrequency, loan.NeedsRollover, loan.IsActive)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrLoanCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"loan_id": loanID, "name": loan.Name})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

func GetLoans(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT loan_id, entity_id, COALESCE(account_id, ''), name, principal, spread,
			       to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
			       interest_frequency, principal_frequency, needs_rollover, is_active
			FROM flow_loans WHERE status <> 'Deleted' ORDER BY start_date, loan_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, entityID, accountID, name, start, end, intFreq, prinFreq string
			var principal, spread float64
			var rollover, active bool
			if err := rows.Scan(&id, &entityID, &accountID, &name, &principal, &spread,
				&start, &end, &intFreq, &prinFreq, &rollover, &active); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"loan_id":             id,
				"entity_id":           entityID,
				"account_id":          accountID,
				"name":                name,
				"principal":           principal,
				"spread":              spread,
				"start_date":          start,
				"end_date":            end,
				"interest_frequency":  intFreq,
				"principal_frequency": prinFreq,
				"needs_rollover":      rollover,
				"is_active":           active,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var loanColumns = map[string]string{
	"account_id":          "account_id",
	"name":                "name",
	"principal":           "principal",
	"spread":              "spread",
	"start_date":          "start_date",
	"end_date":            "end_date",
	"interest_frequency":  "interest_frequency",
	"principal_frequency": "principal_frequency",
	"needs_rollover":      "needs_rollover",
	"is_active":           "is_active",
}

func UpdateLoan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LoanID string                 `json:"loan_id"`
			Fields map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LoanID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		query, args, n := buildUpdateQuery("flow_loans", "loan_id", req.LoanID, req.Fields, loanColumns)
		if n == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		res, err := db.Exec(query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrLoanNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func DeleteLoan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LoanID string `json:"loan_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LoanID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_loans SET status='Deleted', updated_at=now() WHERE loan_id=$1 AND status <> 'Deleted'`,
			req.LoanID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrLoanNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
