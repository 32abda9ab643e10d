package main

import (
	"net/http"

	"github.com/opencrew/pitchboard/internal/ai"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/internal/pitch"
)

// currentPitch resolves the browser's open pitch session or writes a 404.
func (app *application) currentPitch(w http.ResponseWriter, r *http.Request) (*pitch.Session, bool) {
	id := app.sessionManager.GetString(r.Context(), pitchSessionKey)
	if id == "" {
		app.apiError(w, r, http.StatusNotFound, "no open pitch session")
		return nil, false
	}
	session, ok := app.pitches.Get(id)
	if !ok {
		app.apiError(w, r, http.StatusNotFound, "no open pitch session")
		return nil, false
	}
	return session, true
}

// pitchError maps workflow errors onto API status codes. The error message is
// surfaced so the modal can show the service's own words.
func (app *application) pitchError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pitch.ErrCaptureUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, pitch.ErrInvalidPhase), errors.Is(err, pitch.ErrPreconditionFailed):
		status = http.StatusConflict
	case errors.Is(err, pitch.ErrNoMedia):
		status = http.StatusBadRequest
	case errors.Is(err, pitch.ErrPrepFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, pitch.ErrUploadFailed), errors.Is(err, pitch.ErrSendFailed),
		errors.Is(err, ai.ErrTipsUnavailable):
		status = http.StatusBadGateway
	default:
		app.serverError(w, r, err)
		return
	}
	app.apiError(w, r, status, err.Error())
}

// pitchOpen starts a fresh workflow session for an investor. Opening always
// replaces the browser's previous session wholesale, so reopening the modal
// or switching investors is a full reset.
func (app *application) pitchOpen(w http.ResponseWriter, r *http.Request) {
	var req investorIDRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	investor, ok := app.lookupInvestor(w, r, req.ID)
	if !ok {
		return
	}

	if old := app.sessionManager.GetString(r.Context(), pitchSessionKey); old != "" {
		app.pitches.Close(old)
	}
	id, session := app.pitches.Open(investor)
	app.sessionManager.Put(r.Context(), pitchSessionKey, id)
	app.writeJSON(w, r, http.StatusOK, session.Snapshot())
}

func (app *application) pitchClose(w http.ResponseWriter, r *http.Request) {
	if id := app.sessionManager.GetString(r.Context(), pitchSessionKey); id != "" {
		app.pitches.Close(id)
		app.sessionManager.Remove(r.Context(), pitchSessionKey)
	}
	app.writeJSON(w, r, http.StatusOK, map[string]bool{"closed": true})
}

func (app *application) pitchState(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	app.writeJSON(w, r, http.StatusOK, session.Snapshot())
}

func (app *application) pitchRecordStart(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	if err := session.StartRecording(r.Context()); err != nil {
		app.pitchError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, session.Snapshot())
}

func (app *application) pitchRecordStop(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	if err := session.StopRecording(r.Context()); err != nil {
		app.pitchError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, session.Snapshot())
}

func (app *application) pitchRetry(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	if err := session.Retry(); err != nil {
		app.pitchError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, session.Snapshot())
}

// pitchSave downloads the recorded take for offline use.
func (app *application) pitchSave(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	media, err := session.SaveOffline()
	if err != nil {
		app.pitchError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", media.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="pitch.webm"`)
	_, _ = w.Write(media.Bytes)
}

func (app *application) pitchUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	if err := session.Upload(r.Context()); err != nil {
		app.pitchError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, session.Snapshot())
}

type emailBodyRequest struct {
	Body string `json:"body"`
}

func (app *application) pitchSetEmailBody(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	var req emailBodyRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	session.SetEmailBody(req.Body)
	app.writeJSON(w, r, http.StatusOK, session.Snapshot())
}

func (app *application) pitchFindEmail(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	app.writeJSON(w, r, http.StatusOK, session.ResolveEmail(r.Context()))
}

func (app *application) pitchTips(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	tips, err := session.GenerateTips(r.Context())
	if err != nil {
		app.pitchError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"tips": tips})
}

// pitchSend dispatches the composed email and optimistically moves the
// investor to Pitched.
func (app *application) pitchSend(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	if err := session.SendEmailPitch(r.Context()); err != nil {
		app.pitchError(w, r, err)
		return
	}
	if err := app.tracker.SetStatus(r.Context(), session.Investor().ID, models.StatusPitched); err != nil {
		// The email already went out, the status update is best effort.
		app.logger.Debug("mark pitched failed", "investor_id", session.Investor().ID)
	}
	app.writeJSON(w, r, http.StatusOK, map[string]bool{"sent": true})
}

func (app *application) pitchLinkedIn(w http.ResponseWriter, r *http.Request) {
	session, ok := app.currentPitch(w, r)
	if !ok {
		return
	}
	prep, err := session.PrepLinkedIn()
	if err != nil {
		app.pitchError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, prep)
}
