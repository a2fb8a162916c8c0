package flowmasters

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"RealityFlow/api"
	"RealityFlow/api/constants"
)

type TaskRequest struct {
	EntityID    string `json:"entity_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
	Frequency   string `json:"frequency,omitempty"`
	DayMode     string `json:"day_mode,omitempty"`
	DayInMonth  int    `json:"day_in_month,omitempty"`
}

func CreateTasks(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Tasks []TaskRequest `json:"tasks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Tasks) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}

		created := make([]map[string]interface{}, 0, len(req.Tasks))
		for _, t := range req.Tasks {
			if !validFrequency(t.Frequency) {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidFrequency)
				return
			}
			taskID := newID("TSK")
			_, err := db.Exec(`
				INSERT INTO flow_tasks
					(task_id, entity_id, title, description, due_date, priority, assignee,
					 is_completed, is_recurring, frequency, day_mode, day_in_month,
					 status, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,false,$8,$9,$10,$11,'Approved',now(),now())`,
				taskID, t.EntityID, t.Title, t.Description, t.DueDate, t.Priority,
				t.Assignee, t.IsRecurring, nullable(t.Frequency), nullable(t.DayMode), t.DayInMonth)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTaskCreateFailed+": "+err.Error())
				return
			}
			created = append(created, map[string]interface{}{"task_id": taskID, "title": t.Title})
		}
		api.RespondWithPayload(w, true, "", created)
	}
}

func GetTasks(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.Query(`
			SELECT task_id, entity_id, title, COALESCE(description, ''),
			       to_char(due_date, 'YYYY-MM-DD'), COALESCE(priority, ''),
			       COALESCE(assignee, ''), is_completed, is_recurring,
			       COALESCE(frequency, ''), COALESCE(day_mode, ''), COALESCE(day_in_month, 0)
			FROM flow_tasks WHERE status <> 'Deleted' ORDER BY due_date, task_id`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToQuery+": "+err.Error())
			return
		}
		defer rows.Close()

		out := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, entityID, title, description, due, priority, assignee, freq, dayMode string
			var completed, recurring bool
			var dayInMonth int
			if err := rows.Scan(&id, &entityID, &title, &description, &due, &priority,
				&assignee, &completed, &recurring, &freq, &dayMode, &dayInMonth); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"task_id":      id,
				"entity_id":    entityID,
				"title":        title,
				"description":  description,
				"due_date":     due,
				"priority":     priority,
				"assignee":     assignee,
				"is_completed": completed,
				"is_recurring": recurring,
				"frequency":    freq,
				"day_mode":     dayMode,
				"day_in_month": dayInMonth,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

var taskColumns = map[string]string{
	"title":        "title",
	"description":  "description",
	"due_date":     "due_date",
	"priority":     "priority",
	"assignee":     "assignee",
	"is_completed": "is_completed",
	"is_recurring": "is_recurring",
	"frequency":    "frequency",
	"day_mode":     "day_mode",
	"day_in_month": "day_in_month",
}

func UpdateTask(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TaskID string                 `json:"task_id"`
			Fields map[string]interface{} `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		query, args, n := buildUpdateQuery("flow_tasks", "task_id", req.TaskID, req.Fields, taskColumns)
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
			api.RespondWithError(w, http.StatusNotFound, constants.ErrTaskNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func DeleteTask(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TaskID string `json:"task_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
			return
		}
		res, err := db.Exec(
			`UPDATE flow_tasks SET status='Deleted', updated_at=now() WHERE task_id=$1 AND status <> 'Deleted'`,
			req.TaskID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB+": "+err.Error())
			return
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrTaskNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
