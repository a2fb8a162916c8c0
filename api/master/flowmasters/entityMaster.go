package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type EntityRequest struct {
	Name                string  `json:"name"`
	ParentID            string  `json:"parent_id,omitempty"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
	UncalledCapital     float64 `json:"uncalled_capital"`
	TargetBalance       float64 `json:"target_balance"`
	HasTaxAdvances      bool    `json:"has_tax_advances"`
	TaxAdvanceRate      float64 `json:"tax_advance_rate"`
}

// CreateEntities inserts one or more entities. A parent, when named, must
// already exist: the ownership forest is built top-down.
func CreateEntities(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Entities []EntityRequest `json:"entities"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Entities) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Entities))
		for _, ent := range req.Entities {
			if ent.OwnershipPercentage < 0 || ent.OwnershipPercentage > 100 {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidOwnership)
				return
			}
			if ent.ParentID != "" {
				var exists bool
				if err := db.QueryRow(
					`SELECT EXISTS(SELECT 1 FROM flow_entities WHERE entity_id=$1 AND status <> 'Deleted')`,
					ent.ParentID).Scan(&exists); err != nil || !exists {
					api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidParent)
					return
				}
			}
			entityID := newID("ENT")
			_, err := db.Exec(`
				INSERT INTO flow_entities
					(entity_id, name, parent_id, ownership_pct, uncalled_capital,
					 target_balance, has_tax_advances, tax_advance_rate, status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'Approved',now(),now())`,
				entityID, ent.Name, nullable(ent.ParentID), ent.OwnershipPercentage,
				ent.UncalledCapital, ent.TargetBalance, ent.HasTaxAdvances, ent.TaxAdvanceRate)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrEntityCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"entity_id": entityID, "name": ent.Name})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

// GetEntities returns the full entity forest.
func GetEntities(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT entity_id, name, COALESCE(parent_id, ''), ownership_pct,
			       uncalled_capital, target_balance, has_tax_advances, tax_advance_rate
			FROM flow_entities WHERE status <> 'Deleted' ORDER BY entity_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, name, parentID string
			var ownership, uncalled, target, taxRate float64
			var hasTax bool
			if err := rows.Scan(&id, &name, &parentID, &ownership, &uncalled, &target, &hasTax, &taxRate); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"entity_id":            id,
				"name":                 name,
				"parent_id":            parentID,
				"ownership_percentage": ownership,
				"uncalled_capital":     uncalled,
				"target_balance":       target,
				"has_tax_advances":     hasTax,
				"tax_advance_rate":     taxRate,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var entityColumns = map[string]string{
	"name":                 "name",
	"parent_id":            "parent_id",
	"ownership_percentage": "ownership_pct",
	"uncalled_capital":     "uncalled_capital",
	"target_balance":       "target_balance",
	"has_tax_advances":     "has_tax_advances",
	"tax_advance_rate":     "tax_advance_rate",
}

// UpdateEntity applies a partial field map to one entity.
func UpdateEntity(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			EntityID string                 `json:"entity_id"`
			Fields   map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		query, args, n := buildUpdateQuery("flow_entities", "entity_id", req.EntityID, req.Fields, entityColumns)
		if n == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		res, err := db.Exec(query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrEntityUpdateFailed+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrEntityNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// DeleteEntity soft-deletes an entity. Entities with live children are
// refused so the forest never dangles.
func DeleteEntity(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			EntityID string `json:"entity_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EntityID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		var children int
		if err := db.QueryRow(
			`SELECT count(*) FROM flow_entities WHERE parent_id=$1 AND status <> 'Deleted'`,
			req.EntityID).Scan(&children); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if children > 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEntityHasChildren)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_entities SET status='Deleted', updated_at=now() WHERE entity_id=$1 AND status <> 'Deleted'`,
			req.EntityID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrEntityNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
