package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type SettingsRequest struct {
	PrimeRate           float64  `json:"prime_rate"`
	PrevPrimeRate       *float64 `json:"prev_prime_rate,omitempty"`
	PrimeRateChangeDate *string  `json:"prime_rate_change_date,omitempty"`
	VATRate             float64  `json:"vat_rate"`
	CPI                 float64  `json:"cpi"`
}

// GetSettings returns the latest settings row. Settings are append-only;
// every update inserts a fresh row so rate history survives.
func GetSettings(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			primeRate, vatRate, cpi float64
			prevPrime               sql.NullFloat64
			changeDate              sql.NullString
		)
		err := db.QueryRow(`
			SELECT prime_rate, prev_prime_rate, to_char(prime_rate_change_date, 'YYYY-MM-DD'),
			       vat_rate, cpi
			FROM flow_settings ORDER BY updated_at DESC LIMIT 1`).
			Scan(&primeRate, &prevPrime, &changeDate, &vatRate, &cpi)
		if err == sql.ErrNoRows {
			api.RespondWithPayload(w, true, "", map[string]interface{}{})
			return
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		out := map[string]interface{}{
			"prime_rate": primeRate,
			"vat_rate":   vatRate,
			"cpi":        cpi,
		}
		if prevPrime.Valid {
			out["prev_prime_rate"] = prevPrime.Float64
		}
		if changeDate.Valid {
			out["prime_rate_change_date"] = changeDate.String
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

func UpdateSettings(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		var prevPrime interface{}
		if req.PrevPrimeRate != nil {
			prevPrime = *req.PrevPrimeRate
		}
		var changeDate interface{}
		if req.PrimeRateChangeDate != nil && *req.PrimeRateChangeDate != "" {
			changeDate = *req.PrimeRateChangeDate
		}
		_, err := db.Exec(`
			INSERT INTO flow_settings
				(prime_rate, prev_prime_rate, prime_rate_change_date, vat_rate, cpi, updated_at)
			VALUES ($1,$2,$3,$4,$5,now())`,
			req.PrimeRate, prevPrime, changeDate, req.VATRate, req.CPI)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSettingsUpdateFailed+": "+err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
