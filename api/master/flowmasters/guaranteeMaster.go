package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type GuaranteeRequest struct {
	EntityID           string  `json:"entity_id"`
	AccountID          string  `json:"account_id,omitempty"`
	Beneficiary        string  `json:"beneficiary"`
	Amount             float64 `json:"amount"`
	IssueDate          string  `json:"issue_date"`
	ExpiryDate         string  `json:"expiry_date"`
	SetupFee           float64 `json:"setup_fee"`
	AnnualInterestRate float64 `json:"annual_interest_rate"`
	Notes              string  `json:"notes,omitempty"`
}

func CreateGuarantees(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Guarantees []GuaranteeRequest `json:"guarantees"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Guarantees) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Guarantees))
		for _, g := range req.Guarantees {
			guaranteeID := newID("GTE")
			_, err := db.Exec(`
				INSERT INTO flow_guarantees
					(guarantee_id, entity_id, account_id, beneficiary, amount, issue_date,
					 expiry_date, setup_fee, annual_interest_rate, notes, status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'Approved',now(),now())`,
				guaranteeID, g.EntityID, nullable(g.AccountID), g.Beneficiary, g.Amount,
				g.IssueDate, g.ExpiryDate, g.SetupFee, g.AnnualInterestRate, g.Notes)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrGuaranteeCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"guarantee_id": guaranteeID, "beneficiary": g.Beneficiary})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

func GetGuarantees(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT guarantee_id, entity_id, COALESCE(account_id, ''), COALESCE(beneficiary, ''),
			       amount, to_char(issue_date, 'YYYY-MM-DD'), to_char(expiry_date, 'YYYY-MM-DD'),
			       setup_fee, annual_interest_rate, COALESCE(notes, '')
			FROM flow_guarantees WHERE status <> 'Deleted' ORDER BY expiry_date, guarantee_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, entityID, accountID, beneficiary, issue, expiry, notes string
			var amount, setupFee, rate float64
			if err := rows.Scan(&id, &entityID, &accountID, &beneficiary, &amount,
				&issue, &expiry, &setupFee, &rate, &notes); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"guarantee_id":         id,
				"entity_id":            entityID,
				"account_id":           accountID,
				"beneficiary":          beneficiary,
				"amount":               amount,
				"issue_date":           issue,
				"expiry_date":          expiry,
				"setup_fee":            setupFee,
				"annual_interest_rate": rate,
				"notes":                notes,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var guaranteeColumns = map[string]string{
	"account_id":           "account_id",
	"beneficiary":          "beneficiary",
	"amount":               "amount",
	"issue_date":           "issue_date",
	"expiry_date":          "expiry_date",
	"setup_fee":            "setup_fee",
	"annual_interest_rate": "annual_interest_rate",
	"notes":                "notes",
}

func UpdateGuarantee(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GuaranteeID string                 `json:"guarantee_id"`
			Fields      map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuaranteeID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		query, args, n := buildUpdateQuery("flow_guarantees", "guarantee_id", req.GuaranteeID, req.Fields, guaranteeColumns)
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
			api.RespondWithError(w, http.StatusNotFound, constants.ErrGuaranteeNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func DeleteGuarantee(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GuaranteeID string `json:"guarantee_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuaranteeID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_guarantees SET status='Deleted', updated_at=now() WHERE guarantee_id=$1 AND status <> 'Deleted'`,
			req.GuaranteeID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrGuaranteeNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
