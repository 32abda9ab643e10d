package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/internal/tracker"
)

// listInvestors returns the scored investor list for the dashboard.
func (app *application) listInvestors(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.tracker.Investors())
}

type updateStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// updateStatus moves an investor to a new pipeline status. The tracker
// applies it optimistically, so the response reflects the new status even
// before the database write lands. htmx requests get the refreshed status
// selector back, everything else gets the updated investor as JSON.
func (app *application) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if !app.decodeJSON(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			app.apiError(w, r, http.StatusBadRequest, "invalid form body")
			return
		}
		id, err := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
		if err != nil {
			app.apiError(w, r, http.StatusBadRequest, "invalid investor id")
			return
		}
		req.ID = id
		req.Status = r.PostForm.Get("status")
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		app.apiError(w, r, http.StatusBadRequest, "unknown status")
		return
	}

	if err = app.tracker.SetStatus(r.Context(), req.ID, status); err != nil {
		if errors.Is(err, tracker.ErrUnknownInvestor) {
			app.apiError(w, r, http.StatusNotFound, "investor not found")
			return
		}
		app.serverError(w, r, err)
		return
	}

	investor, err := app.tracker.Get(req.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	h := app.htmx.NewHandler(w, r)
	if h.IsHxRequest() {
		app.renderPartial(w, r, "status-select", investor)
		return
	}
	app.writeJSON(w, r, http.StatusOK, investor)
}
