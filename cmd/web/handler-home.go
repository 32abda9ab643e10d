package main

import (
	"net/http"

	"github.com/opencrew/pitchboard/internal/models"
)

type homeTemplateData struct {
	Investors []models.Investor
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		Investors: app.tracker.Investors(),
	}

	app.render(w, r, http.StatusOK, "home", data)
}
