package flow

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"RealityFlow/api"
	"RealityFlow/api/constants"
	"RealityFlow/internal/simulation"
	"RealityFlow/internal/workbook"
)

// ExportState streams the full snapshot as a multi-sheet xlsx backup.
func ExportState(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := LoadSnapshot(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotLoadFailed+": "+err.Error())
			return
		}

		var buf bytes.Buffer
		if err := workbook.ExportState(&buf, state); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrWorkbookExportFailed+": "+err.Error())
			return
		}

		filename := fmt.Sprintf("RealityFlow_Backup_%s.xlsx", time.Now().Format(simulation.DateFormat))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Write(buf.Bytes())
	}
}

// ImportState replaces the master tables with the uploaded workbook and
// invalidates cached forecast runs.
func ImportState(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFailedToParseMultipartForm)
			return
		}

		var imported *simulation.AppState
		for _, files := range r.MultipartForm.File {
			for _, fileHeader := range files {
				file, err := fileHeader.Open()
				if err != nil {
					continue
				}
				state, err := workbook.ImportState(file, fileHeader.Filename)
				file.Close()
				if err != nil {
					api.RespondWithError(w, http.StatusBadRequest, constants.ErrWorkbookImportFailed+": "+err.Error())
					return
				}
				imported = &state
			}
		}
		if imported == nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFileUploaded)
			return
		}

		if err := ReplaceSnapshot(r.Context(), pool, *imported); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrWorkbookImportFailed+": "+err.Error())
			return
		}
		// Cached runs reference the replaced snapshot.
		setLatestRun(nil)

		api.RespondWithResult(w, true, "")
	}
}
