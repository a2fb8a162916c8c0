package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type LeaseRequest struct {
	EntityID         string  `json:"entity_id"`
	AccountID        string  `json:"account_id,omitempty"`
	TenantName       string  `json:"tenant_name"`
	Property         string  `json:"property"`
	ServiceType      string  `json:"service_type"`
	LeasedArea       float64 `json:"leased_area"`
	RatePerArea      float64 `json:"rate_per_area"`
	NetAmount        float64 `json:"net_amount"`
	Frequency        string  `json:"frequency"`
	PaymentDay       int     `json:"payment_day"`
	IncludesVAT      bool    `json:"includes_vat"`
	LinkageIndexBase float64 `json:"linkage_index_base,omitempty"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
}

func CreateLeases(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Leases []LeaseRequest `json:"leases"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Leases) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Leases))
		for _, lease := range req.Leases {
			if !validFrequency(lease.Frequency) {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidFrequency)
				return
			}
			if lease.EndDate <= lease.StartDate {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrLeaseDates)
				return
			}
			// Area x rate wins over a stale net amount when both are present.
			netAmount := lease.NetAmount
			if lease.LeasedArea > 0 && lease.RatePerArea > 0 {
				netAmount = lease.LeasedArea * lease.RatePerArea
			}
			leaseID := newID("LSE")
			_, err := db.Exec(`
				INSERT INTO flow_leases
					(lease_id, entity_id, account_id, tenant_name, property, service_type,
					 leased_area, rate_per_sqm, net_amount, frequency, payment_day,
					 includes_vat, linkage_index_base, start_date, end_date, status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,'Approved',now(),now())`,
				leaseID, lease.EntityID, nullable(lease.AccountID), lease.TenantName,
				lease.Property, lease.ServiceType, lease.LeasedArea, lease.RatePerArea,
				netAmount, lease.Frequency, lease.PaymentDay, lease.IncludesVAT,
				lease.LinkageIndexBase, lease.StartDate, lease.EndDate)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrLeaseCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"lease_id": leaseID, "tenant_name": lease.TenantName})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

func GetLeases(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT lease_id, entity_id, COALESCE(account_id, ''), COALESCE(tenant_name, ''),
			       COALESCE(property, ''), COALESCE(service_type, ''), leased_area,
			       rate_per_sqm, net_amount, frequency, payment_day, includes_vat,
			       COALESCE(linkage_index_base, 0), to_char(start_date, 'YYYY-MM-DD'),
			       to_char(end_date, 'YYYY-MM-DD')
			FROM flow_leases WHERE status <> 'Deleted' ORDER BY start_date, lease_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, entityID, accountID, tenant, property, service, freq, start, end string
			var area, rate, net, linkage float64
			var payDay int
			var vat bool
			if err := rows.Scan(&id, &entityID, &accountID, &tenant, &property, &service,
				&area, &rate, &net, &freq, &payDay, &vat, &linkage, &start, &end); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"lease_id":           id,
				"entity_id":          entityID,
				"account_id":         accountID,
				"tenant_name":        tenant,
				"property":           property,
				"service_type":       service,
				"leased_area":        area,
				"rate_per_area":      rate,
				"net_amount":         net,
				"frequency":          freq,
				"payment_day":        payDay,
				"includes_vat":       vat,
				"linkage_index_base": linkage,
				"start_date":         start,
				"end_date":           end,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var leaseColumns = map[string]string{
	"account_id":         "account_id",
	"tenant_name":        "tenant_name",
	"property":           "property",
	"service_type":       "service_type",
	"leased_area":        "leased_area",
	"rate_per_area":      "rate_per_sqm",
	"net_amount":         "net_amount",
	"frequency":          "frequency",
	"payment_day":        "payment_day",
	"includes_vat":       "includes_vat",
	"linkage_index_base": "linkage_index_base",
	"start_date":         "start_date",
	"end_date":           "end_date",
}

func UpdateLease(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LeaseID string                 `json:"lease_id"`
			Fields  map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LeaseID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		query, args, n := buildUpdateQuery("flow_leases", "lease_id", req.LeaseID, req.Fields, leaseColumns)
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
			api.RespondWithError(w, http.StatusNotFound, constants.ErrLeaseNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func DeleteLease(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LeaseID string `json:"lease_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LeaseID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_leases SET status='Deleted', updated_at=now() WHERE lease_id=$1 AND status <> 'Deleted'`,
			req.LeaseID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrLeaseNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
