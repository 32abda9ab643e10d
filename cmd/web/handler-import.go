package main

import (
	"net/http"

	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
)

type addInvestorRequest struct {
	Name               string `json:"name"`
	Fund               string `json:"fund"`
	Domain             string `json:"domain"`
	SectorFocus        string `json:"sector_focus"`
	StageFocus         string `json:"stage_focus"`
	PortfolioCompanies string `json:"portfolio_companies"`
	NotesForPitch      string `json:"notes_for_pitch"`
	Bio                string `json:"bio"`
	Thesis             string `json:"thesis"`
	LinkedInURL        string `json:"linkedin_url"`
	TwitterHandle      string `json:"twitter_handle"`
	AvatarURL          string `json:"avatar_url"`
	Status             string `json:"status"`
}

// addInvestor stores a single investor from the add-investor modal.
func (app *application) addInvestor(w http.ResponseWriter, r *http.Request) {
	var req addInvestorRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		app.apiError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	status := models.StatusToResearch
	if req.Status != "" {
		parsed, err := models.ParseStatus(req.Status)
		if err != nil {
			app.apiError(w, r, http.StatusBadRequest, "unknown status")
			return
		}
		status = parsed
	}

	investor := models.Investor{
		Name:               req.Name,
		Fund:               req.Fund,
		Domain:             req.Domain,
		SectorFocus:        req.SectorFocus,
		StageFocus:         req.StageFocus,
		PortfolioCompanies: req.PortfolioCompanies,
		NotesForPitch:      req.NotesForPitch,
		Bio:                req.Bio,
		Thesis:             req.Thesis,
		LinkedInURL:        req.LinkedInURL,
		TwitterHandle:      req.TwitterHandle,
		AvatarURL:          req.AvatarURL,
		Status:             status,
	}

	id, err := app.investors.Insert(r.Context(), investor)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if err = app.tracker.Refresh(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}

	stored, err := app.tracker.Get(id)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, stored)
}

// uploadCSV bulk-imports investors from a multipart CSV upload.
func (app *application) uploadCSV(w http.ResponseWriter, r *http.Request) {
	const maxUploadBytes = 10 << 20
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		app.apiError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		app.apiError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	investors, err := models.ParseInvestorCSV(file)
	if err != nil {
		if errors.Is(err, models.ErrMissingNameColumn) {
			app.apiError(w, r, http.StatusBadRequest, "CSV must have a name column")
			return
		}
		app.apiError(w, r, http.StatusBadRequest, "could not parse CSV")
		return
	}

	imported, err := app.investors.BulkInsert(r.Context(), investors)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if err = app.tracker.Refresh(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]int{"imported": imported})
}

// downloadTemplate serves the CSV header row for bulk imports.
func (app *application) downloadTemplate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="investors_template.csv"`)
	_, _ = w.Write([]byte(models.CSVTemplate()))
}
