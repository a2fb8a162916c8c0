package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
	"RealityFlow/internal/simulation"
)

type TransactionRequest struct {
	EntityID         string                 `json:"entity_id"`
	AccountID        string                 `json:"account_id,omitempty"`
	Kind             string                 `json:"kind"`
	Category         string                 `json:"category"`
	Description      string                 `json:"description"`
	Date             string                 `json:"date"`
	Amount           float64                `json:"amount"`
	IncludesVAT      bool                   `json:"includes_vat"`
	IsRecurring      bool                   `json:"is_recurring"`
	Frequency        string                 `json:"frequency,omitempty"`
	DayMode          string                 `json:"day_mode,omitempty"`
	DayInMonth       int                    `json:"day_in_month,omitempty"`
	IsActive         bool                   `json:"is_active"`
	IsIntercompany   bool                   `json:"is_intercompany"`
	TargetEntityID   string                 `json:"target_entity_id,omitempty"`
	TargetAccountID  string                 `json:"target_account_id,omitempty"`
	Milestones       []simulation.Milestone `json:"milestones,omitempty"`
	LinkageIndexBase float64                `json:"linkage_index_base,omitempty"`
}

func validFrequency(f string) bool {
	switch simulation.Frequency(f) {
	case "", simulation.FreqMonthly, simulation.FreqQuarterly,
		simulation.FreqSemiAnnually, simulation.FreqAnnually, simulation.FreqOneTime:
		return true
	}
	return false
}

func validDayMode(m string) bool {
	switch simulation.DayMode(m) {
	case "", simulation.DaySameAsStart, simulation.DaySpecific, simulation.DayLastDay:
		return true
	}
	return false
}

func CreateTransactions(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Transactions []TransactionRequest `json:"transactions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Transactions) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Transactions))
		for _, txn := range req.Transactions {
			if !validFrequency(txn.Frequency) {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidFrequency)
				return
			}
			if !validDayMode(txn.DayMode) {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidDayMode)
				return
			}
			var milestones interface{}
			if len(txn.Milestones) > 0 {
				b, err := json.Marshal(txn.Milestones)
				if err != nil {
					api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
					return
				}
				milestones = string(b)
			}
			transactionID := newID("TXN")
			_, err := db.Exec(`
				INSERT INTO flow_transactions
					(transaction_id, entity_id, account_id, kind, category, description,
					 txn_date, amount, includes_vat, is_recurring, frequency, day_mode,
					 day_in_month, is_active, is_intercompany, target_entity_id,
					 target_account_id, milestones, linkage_index_base, status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,'Approved',now(),now())`,
				transactionID, txn.EntityID, nullable(txn.AccountID), txn.Kind, txn.Category,
				txn.Description, txn.Date, txn.Amount, txn.IncludesVAT, txn.IsRecurring,
				nullable(txn.Frequency), nullable(txn.DayMode), txn.DayInMonth, txn.IsActive,
				txn.IsIntercompany, nullable(txn.TargetEntityID), nullable(txn.TargetAccountID),
				milestones, txn.LinkageIndexBase)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTransactionCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"transaction_id": transactionID})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

func GetTransactions(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT transaction_id, entity_id, COALESCE(account_id, ''), kind, category,
			       COALESCE(description, ''), to_char(txn_date, 'YYYY-MM-DD'), amount,
			       includes_vat, is_recurring, COALESCE(frequency, ''), COALESCE(day_mode, ''),
			       COALESCE(day_in_month, 0), is_active, is_intercompany,
			       COALESCE(target_entity_id, ''), COALESCE(target_account_id, ''),
			       COALESCE(milestones::text, '[]'), COALESCE(linkage_index_base, 0)
			FROM flow_transactions WHERE status <> 'Deleted' ORDER BY txn_date, transaction_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, entityID, accountID, kind, category, description, date string
			var frequency, dayMode, targetEntity, targetAccount, milestonesJSON string
			var amount, linkageBase float64
			var dayInMonth int
			var includesVAT, isRecurring, isActive, isIntercompany bool
			if err := rows.Scan(&id, &entityID, &accountID, &kind, &category, &description,
				&date, &amount, &includesVAT, &isRecurring, &frequency, &dayMode,
				&dayInMonth, &isActive, &isIntercompany, &targetEntity, &targetAccount,
				&milestonesJSON, &linkageBase); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			var milestones []simulation.Milestone
			json.Unmarshal([]byte(milestonesJSON), &milestones)
			out = append(out, map[string]interface{}{
				"transaction_id":     id,
				"entity_id":          entityID,
				"account_id":         accountID,
				"kind":               kind,
				"category":           category,
				"description":        description,
				"date":               date,
				"amount":             amount,
				"includes_vat":       includesVAT,
				"is_recurring":       isRecurring,
				"frequency":          frequency,
				"day_mode":           dayMode,
				"day_in_month":       dayInMonth,
				"is_active":          isActive,
				"is_intercompany":    isIntercompany,
				"target_entity_id":   targetEntity,
				"target_account_id":  targetAccount,
				"milestones":         milestones,
				"linkage_index_base": linkageBase,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var transactionColumns = map[string]string{
	"account_id":         "account_id",
	"kind":               "kind",
	"category":           "category",
	"description":        "description",
	"date":               "txn_date",
	"amount":             "amount",
	"includes_vat":       "includes_vat",
	"is_recurring":       "is_recurring",
	"frequency":          "frequency",
	"day_mode":           "day_mode",
	"day_in_month":       "day_in_month",
	"is_active":          "is_active",
	"is_intercompany":    "is_intercompany",
	"target_entity_id":   "target_entity_id",
	"target_account_id":  "target_account_id",
	"linkage_index_base": "linkage_index_base",
}

func UpdateTransaction(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TransactionID string                 `json:"transaction_id"`
			Fields        map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		if f, ok := req.Fields["frequency"].(string); ok && !validFrequency(f) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidFrequency)
			return
		}
		if m, ok := req.Fields["day_mode"].(string); ok && !validDayMode(m) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidDayMode)
			return
		}
		query, args, n := buildUpdateQuery("flow_transactions", "transaction_id", req.TransactionID, req.Fields, transactionColumns)
		if n == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		res, err := db.Exec(query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTransactionUpdateFailed+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrTransactionNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func DeleteTransaction(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TransactionID string `json:"transaction_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_transactions SET status='Deleted', updated_at=now() WHERE transaction_id=$1 AND status <> 'Deleted'`,
			req.TransactionID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrTransactionNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
