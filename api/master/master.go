package master

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"RealityFlow/api/master/flowmasters"
)

func StartMasterService(db *sql.DB) {
	router := mux.NewRouter()

	router.HandleFunc("/master/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Master Service is healthy"))
	}).Methods("GET")

	router.HandleFunc("/master/entities/create", flowmasters.CreateEntities(db)).Methods("POST")
	router.HandleFunc("/master/entities/all", flowmasters.GetEntities(db)).Methods("POST")
	router.HandleFunc("/master/entities/update", flowmasters.UpdateEntity(db)).Methods("POST")
	router.HandleFunc("/master/entities/delete", flowmasters.DeleteEntity(db)).Methods("POST")

	router.HandleFunc("/master/accounts/create", flowmasters.CreateAccounts(db)).Methods("POST")
	router.HandleFunc("/master/accounts/all", flowmasters.GetAccounts(db)).Methods("POST")
	router.HandleFunc("/master/accounts/update", flowmasters.UpdateAccount(db)).Methods("POST")
	router.HandleFunc("/master/accounts/delete", flowmasters.DeleteAccount(db)).Methods("POST")

	router.HandleFunc("/master/transactions/create", flowmasters.CreateTransactions(db)).Methods("POST")
	router.HandleFunc("/master/transactions/all", flowmasters.GetTransactions(db)).Methods("POST")
	router.HandleFunc("/master/transactions/update", flowmasters.UpdateTransaction(db)).Methods("POST")
	router.HandleFunc("/master/transactions/delete", flowmasters.DeleteTransaction(db)).Methods("POST")

	router.HandleFunc("/master/loans/create", flowmasters.CreateLoans(db)).Methods("POST")
	router.HandleFunc("/master/loans/all", flowmasters.GetLoans(db)).Methods("POST")
	router.HandleFunc("/master/loans/update", flowmasters.UpdateLoan(db)).Methods("POST")
	router.HandleFunc("/master/loans/delete", flowmasters.DeleteLoan(db)).Methods("POST")

	router.HandleFunc("/master/leases/create", flowmasters.CreateLeases(db)).Methods("POST")
	router.HandleFunc("/master/leases/all", flowmasters.GetLeases(db)).Methods("POST")
	router.HandleFunc("/master/leases/update", flowmasters.UpdateLease(db)).Methods("POST")
	router.HandleFunc("/master/leases/delete", flowmasters.DeleteLease(db)).Methods("POST")

	router.HandleFunc("/master/guarantees/create", flowmasters.CreateGuarantees(db)).Methods("POST")
	router.HandleFunc("/master/guarantees/all", flowmasters.GetGuarantees(db)).Methods("POST")
	router.HandleFunc("/master/guarantees/update", flowmasters.UpdateGuarantee(db)).Methods("POST")
	router.HandleFunc("/master/guarantees/delete", flowmasters.DeleteGuarantee(db)).Methods("POST")

	router.HandleFunc("/master/tasks/create", flowmasters.CreateTasks(db)).Methods("POST")
	router.HandleFunc("/master/tasks/all", flowmasters.GetTasks(db)).Methods("POST")
	router.HandleFunc("/master/tasks/update", flowmasters.UpdateTask(db)).Methods("POST")
	router.HandleFunc("/master/tasks/delete", flowmasters.DeleteTask(db)).Methods("POST")

	router.HandleFunc("/master/budgets/create", flowmasters.CreateBudgets(db)).Methods("POST")
	router.HandleFunc("/master/budgets/all", flowmasters.GetBudgets(db)).Methods("POST")
	router.HandleFunc("/master/budgets/update", flowmasters.UpdateBudget(db)).Methods("POST")
	router.HandleFunc("/master/budgets/delete", flowmasters.DeleteBudget(db)).Methods("POST")

	router.HandleFunc("/master/settings/get", flowmasters.GetSettings(db)).Methods("POST")
	router.HandleFunc("/master/settings/update", flowmasters.UpdateSettings(db)).Methods("POST")

	log.Println("Master Service started on :7143")
	if err := http.ListenAndServe(":7143", router); err != nil {
		log.Fatalf("Master Service failed: %v", err)
	}
}
