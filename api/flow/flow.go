package flow

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StartFlowService exposes the forecast engine over HTTP on its own port.
// The gateway proxies /flow/ here.
func StartFlowService(pool *pgxpool.Pool) {
	router := mux.NewRouter()

	router.HandleFunc("/flow/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Flow Service is active"))
	}).Methods("GET")

	router.Handle("/flow/forecast", RunForecast(pool)).Methods("POST")
	router.Handle("/flow/forecast/consolidated", ConsolidatedForecast(pool)).Methods("POST")
	router.Handle("/flow/forecast/drilldown", ForecastDrilldown(pool)).Methods("POST")
	router.Handle("/flow/guarantees/cost", GuaranteeCosts(pool)).Methods("POST")
	router.Handle("/flow/budgets/utilization", BudgetUtilization(pool)).Methods("POST")
	router.Handle("/flow/tasks/upcoming", UpcomingTasks(pool)).Methods("POST")
	router.Handle("/flow/state/export", ExportState(pool)).Methods("POST")
	router.Handle("/flow/state/import", ImportState(pool)).Methods("POST")

	log.Println("Flow Service started on :6143")
	if err := http.ListenAndServe(":6143", router); err != nil {
		log.Fatalf("Flow Service failed: %v", err)
	}
}
