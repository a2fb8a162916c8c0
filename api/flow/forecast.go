package flow

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"RealityFlow/api"
	"RealityFlow/api/constants"
	"RealityFlow/internal/simulation"
)

// forecastRequest is the shared request body of the forecast endpoints.
type forecastRequest struct {
	EntityIDs   []string `json:"entity_ids"`
	StartDate   string   `json:"start_date"`
	HorizonDays int      `json:"horizon_days"`
}

func (req *forecastRequest) anchor() (time.Time, error) {
	if req.StartDate == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(simulation.DateFormat, req.StartDate)
}

func (req *forecastRequest) horizon() int {
	if req.HorizonDays == 0 {
		return simulation.DefaultHorizonDays
	}
	return req.HorizonDays
}

// cachedRun keeps the latest simulation in memory so drilldown and derived
// views do not rerun the engine per request.
type cachedRun struct {
	runID   string
	anchor  time.Time
	horizon int
	state   simulation.AppState
	results []simulation.DailyResult
}

var (
	runMu     sync.RWMutex
	latestRun *cachedRun
)

func setLatestRun(run *cachedRun) {
	runMu.Lock()
	latestRun = run
	runMu.Unlock()
}

func getLatestRun() *cachedRun {
	runMu.RLock()
	defer runMu.RUnlock()
	return latestRun
}

// executeForecast loads the snapshot, runs the engine and caches the result.
func executeForecast(ctx context.Context, pool *pgxpool.Pool, anchor time.Time, horizon int) (*cachedRun, error) {
	state, err := LoadSnapshot(ctx, pool)
	if err != nil {
		return nil, err
	}
	results := simulation.Run(state, anchor, horizon)
	run := &cachedRun{
		runID:   uuid.New().String(),
		anchor:  anchor,
		horizon: horizon,
		state:   state,
		results: results,
	}
	setLatestRun(run)
	if err := persistRun(ctx, pool, run); err != nil {
		// The run is still served from memory; history just has a gap.
		log.Printf("[Flow] failed to persist forecast run %s: %v", run.runID, err)
	}
	return run, nil
}

func persistRun(ctx context.Context, pool *pgxpool.Pool, run *cachedRun) error {
	resultsJSON, err := json.Marshal(run.results)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO forecast_runs (run_id, anchor_date, horizon_days, results, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		run.runID, run.anchor, run.horizon, resultsJSON)
	return err
}

// Refresh reruns the forecast from today's date, replacing the cached run.
// The nightly scheduler calls this so morning dashboards serve a warm run.
func Refresh(ctx context.Context, pool *pgxpool.Pool, horizon int) (string, error) {
	if horizon <= 0 {
		horizon = simulation.DefaultHorizonDays
	}
	now := time.Now()
	anchor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	run, err := executeForecast(ctx, pool, anchor, horizon)
	if err != nil {
		return "", err
	}
	return run.runID, nil
}

// RunForecast executes a fresh simulation and returns the run id plus the
// full daily series.
func RunForecast(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		anchor, err := req.anchor()
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidStartDate)
			return
		}
		if req.HorizonDays < 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidHorizon)
			return
		}

		run, err := executeForecast(r.Context(), pool, anchor, req.horizon())
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotLoadFailed+": "+err.Error())
			return
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"run_id":               run.runID,
			"anchor_date":          run.anchor.Format(simulation.DateFormat),
			"horizon_days":         run.horizon,
			"results":              run.results,
		})
	}
}

// reuseOrRun serves derived views from the cached run when the request does
// not pin a start date or horizon; otherwise it runs fresh.
func reuseOrRun(ctx context.Context, pool *pgxpool.Pool, req forecastRequest) (*cachedRun, error) {
	if req.StartDate == "" && req.HorizonDays == 0 {
		if run := getLatestRun(); run != nil {
			return run, nil
		}
	}
	anchor, err := req.anchor()
	if err != nil {
		return nil, err
	}
	return executeForecast(ctx, pool, anchor, req.horizon())
}

// ConsolidatedForecast rolls the latest (or a fresh) run up into the
// ownership-weighted view for the selected entities.
func ConsolidatedForecast(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		run, err := reuseOrRun(r.Context(), pool, req)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrForecastFailed+": "+err.Error())
			return
		}
		view := simulation.BuildConsolidatedView(run.state, run.results, req.EntityIDs)
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"run_id":               run.runID,
			"view":                 view,
		})
	}
}

// ForecastDrilldown returns the ledger rows and alerts of a single simulated
// day, optionally filtered to one entity.
func ForecastDrilldown(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			forecastRequest
			Date     string `json:"date"`
			EntityID string `json:"entity_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		run, err := reuseOrRun(r.Context(), pool, req.forecastRequest)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrForecastFailed+": "+err.Error())
			return
		}

		for _, day := range run.results {
			if day.Date != req.Date {
				continue
			}
			rows := day.Transactions
			if req.EntityID != "" {
				filtered := make([]simulation.LedgerEntry, 0, len(rows))
				for _, tx := range rows {
					if tx.EntityID == req.EntityID {
						filtered = append(filtered, tx)
					}
				}
				rows = filtered
			}
			w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
			json.NewEncoder(w).Encode(map[string]interface{}{
				constants.ValueSuccess: true,
				"date":                 day.Date,
				"entity_balances":      day.EntityBalances,
				"entity_credit_util":   day.EntityCreditUtil,
				"aggregated_cash":      day.AggregatedCash,
				"transactions":         rows,
				"alerts":               day.Alerts,
			})
			return
		}
		api.RespondWithError(w, http.StatusNotFound, constants.ErrNoForecastRun)
	}
}

// GuaranteeCosts prices every guarantee in the snapshot, or the ids given in
// the request body.
func GuaranteeCosts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GuaranteeIDs []string `json:"guarantee_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		state, err := LoadSnapshot(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotLoadFailed+": "+err.Error())
			return
		}
		wanted := make(map[string]bool, len(req.GuaranteeIDs))
		for _, id := range req.GuaranteeIDs {
			wanted[id] = true
		}
		costs := make([]simulation.GuaranteeCost, 0, len(state.Guarantees))
		for _, g := range state.Guarantees {
			if len(wanted) > 0 && !wanted[g.ID] {
				continue
			}
			costs = append(costs, simulation.CostOfGuarantee(g))
		}
		api.RespondWithPayload(w, true, "", costs)
	}
}

// BudgetUtilization projects every budget envelope against the forecast.
func BudgetUtilization(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		run, err := reuseOrRun(r.Context(), pool, req)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrForecastFailed+": "+err.Error())
			return
		}
		statuses := simulation.BuildBudgetStatuses(run.state, run.results, run.anchor)
		api.RespondWithPayload(w, true, "", statuses)
	}
}

// UpcomingTasks lists open tasks due inside the requested window (default 7
// days).
func UpcomingTasks(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WindowDays int    `json:"window_days"`
			StartDate  string `json:"start_date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		if req.WindowDays <= 0 {
			req.WindowDays = 7
		}
		anchor := time.Now()
		if req.StartDate != "" {
			parsed, err := time.Parse(simulation.DateFormat, req.StartDate)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidStartDate)
				return
			}
			anchor = parsed
		}
		state, err := LoadSnapshot(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotLoadFailed+": "+err.Error())
			return
		}
		due := simulation.UpcomingTasks(state.Tasks, anchor, req.WindowDays)
		api.RespondWithPayload(w, true, "", due)
	}
}
