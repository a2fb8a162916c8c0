package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type BudgetRequest struct {
	EntityID        string  `json:"entity_id"`
	Category        string  `json:"category"`
	Property        string  `json:"property,omitempty"`
	AnnualBudget    float64 `json:"annual_budget"`
	ManualActualYTD float64 `json:"manual_actual_ytd"`
}

func CreateBudgets(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Budgets []BudgetRequest `json:"budgets"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Budgets) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Budgets))
		for _, b := range req.Budgets {
			budgetID := newID("BUD")
			_, err := db.Exec(`
				INSERT INTO flow_budgets
					(budget_id, entity_id, category, property, annual_budget,
					 manual_actual_ytd, status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,'Approved',now(),now())`,
				budgetID, b.EntityID, b.Category, b.Property, b.AnnualBudget, b.ManualActualYTD)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrBudgetCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"budget_id": budgetID, "category": b.Category})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

func GetBudgets(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT budget_id, entity_id, category, COALESCE(property, ''),
			       annual_budget, manual_actual_ytd
			FROM flow_budgets WHERE status <> 'Deleted' ORDER BY budget_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, entityID, category, property string
			var annual, actual float64
			if err := rows.Scan(&id, &entityID, &category, &property, &annual, &actual); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"budget_id":         id,
				"entity_id":         entityID,
				"category":          category,
				"property":          property,
				"annual_budget":     annual,
				"manual_actual_ytd": actual,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var budgetColumns = map[string]string{
	"category":          "category",
	"property":          "property",
	"annual_budget":     "annual_budget",
	"manual_actual_ytd": "manual_actual_ytd",
}

func UpdateBudget(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BudgetID string                 `json:"budget_id"`
			Fields   map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BudgetID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		query, args, n := buildUpdateQuery("flow_budgets", "budget_id", req.BudgetID, req.Fields, budgetColumns)
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
			api.RespondWithError(w, http.StatusNotFound, constants.ErrBudgetNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func DeleteBudget(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BudgetID string `json:"budget_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BudgetID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_budgets SET status='Deleted', updated_at=now() WHERE budget_id=$1 AND status <> 'Deleted'`,
			req.BudgetID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrBudgetNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
