package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type AccountRequest struct {
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

func CreateAccounts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Accounts []AccountRequest `json:"accounts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Accounts) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Accounts))
		for _, acc := range req.Accounts {
			var exists bool
			if err := db.QueryRow(
				`SELECT EXISTS(SELECT 1 FROM flow_entities WHERE entity_id=$1 AND status <> 'Deleted')`,
				acc.EntityID).Scan(&exists); err != nil || !exists {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrAccountEntity)
				return
			}
			accountID := newID("ACC")
			_, err := db.Exec(`
				INSERT INTO flow_accounts
					(account_id, entity_id, bank_name, account_number, nickname,
					 opening_balance, credit_limit, current_credit_util, interest_spread,
					 is_tax_account, guarantee_limit, manual_guarantee_util, status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'Approved',now(),now())`,
				accountID, acc.EntityID, acc.BankName, acc.AccountNumber, acc.Nickname,
				acc.OpeningBalance, acc.CreditLimit, acc.CurrentCreditUtil, acc.InterestSpread,
				acc.IsTaxAccount, acc.GuaranteeLimit, acc.ManualGuaranteeUtil)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrAccountCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"account_id": accountID, "entity_id": acc.EntityID})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

func GetAccounts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT account_id, entity_id, COALESCE(bank_name, ''), COALESCE(account_number, ''),
			       COALESCE(nickname, ''), opening_balance, credit_limit, current_credit_util,
			       interest_spread, is_tax_account, guarantee_limit, manual_guarantee_util
			FROM flow_accounts WHERE status <> 'Deleted' ORDER BY account_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, entityID, bank, number, nickname string
			var opening, limit, util, spread, gLimit, gUtil float64
			var isTax bool
			if err := rows.Scan(&id, &entityID, &bank, &number, &nickname, &opening,
				&limit, &util, &spread, &isTax, &gLimit, &gUtil); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"account_id":            id,
				"entity_id":             entityID,
				"bank_name":             bank,
				"account_number":        number,
				"nickname":              nickname,
				"opening_balance":       opening,
				"credit_limit":          limit,
				"current_credit_util":   util,
				"interest_spread":       spread,
				"is_tax_account":        isTax,
				"guarantee_limit":       gLimit,
				"manual_guarantee_util": gUtil,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var accountColumns = map[string]string{
	"bank_name":             "bank_name",
	"account_number":        "account_number",
	"nickname":              "nickname",
	"opening_balance":       "opening_balance",
	"credit_limit":          "credit_limit",
	"current_credit_util":   "current_credit_util",
	"interest_spread":       "interest_spread",
	"is_tax_account":        "is_tax_account",
	"guarantee_limit":       "guarantee_limit",
	"manual_guarantee_util": "manual_guarantee_util",
}

func UpdateAccount(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccountID string                 `json:"account_id"`
			Fields    map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		query, args, n := buildUpdateQuery("flow_accounts", "account_id", req.AccountID, req.Fields, accountColumns)
		if n == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		res, err := db.Exec(query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrAccountUpdateFailed+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrAccountNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func DeleteAccount(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccountID string `json:"account_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_accounts SET status='Deleted', updated_at=now() WHERE account_id=$1 AND status <> 'Deleted'`,
			req.AccountID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrAccountNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
