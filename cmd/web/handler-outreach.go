package main

import (
	"log/slog"
	"net/http"

	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/mailer"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/internal/pitch"
	"github.com/opencrew/pitchboard/internal/tracker"
)

type investorIDRequest struct {
	ID int64 `json:"id"`
}

// lookupInvestor resolves the request's investor or writes the error response.
func (app *application) lookupInvestor(w http.ResponseWriter, r *http.Request, id int64) (models.Investor, bool) {
	investor, err := app.tracker.Get(id)
	if err != nil {
		if errors.Is(err, tracker.ErrUnknownInvestor) {
			app.apiError(w, r, http.StatusNotFound, "investor not found")
		} else {
			app.serverError(w, r, err)
		}
		return investor, false
	}
	return investor, true
}

// findEmail resolves an email address for the investor through the contact
// resolver. Lookup failures are part of the payload, not HTTP errors.
func (app *application) findEmail(w http.ResponseWriter, r *http.Request) {
	var req investorIDRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	investor, ok := app.lookupInvestor(w, r, req.ID)
	if !ok {
		return
	}

	resolution := app.resolver.Resolve(r.Context(), investor.Name, investor.Domain)
	app.writeJSON(w, r, http.StatusOK, resolution)
}

// generateTips asks the tip generator for pitching advice on the investor.
func (app *application) generateTips(w http.ResponseWriter, r *http.Request) {
	var req investorIDRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	investor, ok := app.lookupInvestor(w, r, req.ID)
	if !ok {
		return
	}

	tips, err := app.tips.GenerateTips(r.Context(), investor)
	if err != nil {
		app.apiError(w, r, http.StatusBadGateway, "could not generate tips")
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"tips": tips})
}

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// sendEmail dispatches an already-composed email. The subject defaults to the
// video pitch subject line.
func (app *application) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if req.To == "" || req.Body == "" {
		app.apiError(w, r, http.StatusBadRequest, "to and body are required")
		return
	}
	if req.Subject == "" {
		req.Subject = pitch.EmailSubject
	}

	msg := mailer.Message{To: req.To, Subject: req.Subject, Body: req.Body}
	if err := app.sender.Send(r.Context(), msg); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "send email failed", errors.SlogError(err))
		app.apiError(w, r, http.StatusBadGateway, "email could not be sent")
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]bool{"sent": true})
}

// prepLinkedIn builds the LinkedIn connection message for the investor.
func (app *application) prepLinkedIn(w http.ResponseWriter, r *http.Request) {
	var req investorIDRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	investor, ok := app.lookupInvestor(w, r, req.ID)
	if !ok {
		return
	}
	if investor.LinkedInURL == "" {
		app.apiError(w, r, http.StatusUnprocessableEntity, "investor has no LinkedIn profile")
		return
	}

	app.writeJSON(w, r, http.StatusOK, pitch.LinkedInPrep{
		Message:    pitch.LinkedInMessage(investor),
		ProfileURL: investor.LinkedInURL,
	})
}
