package main

import (
	"io/fs"
	"net/http"

	"github.com/justinas/alice"
	"github.com/opencrew/pitchboard/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	staticFS, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", cacheForeverHeaders(
		http.StripPrefix("/static", http.FileServer(http.FS(staticFS)))))

	session := alice.New(app.sessionManager.LoadAndSave, commonContext)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.Handle("GET /api/healthy", http.HandlerFunc(app.healthy))

	mux.Handle("GET /api/investors", session.ThenFunc(app.listInvestors))
	mux.Handle("POST /api/update_status", session.ThenFunc(app.updateStatus))
	mux.Handle("POST /api/find_email", session.ThenFunc(app.findEmail))
	mux.Handle("POST /api/generate_tips", session.ThenFunc(app.generateTips))
	mux.Handle("POST /api/send_email", session.ThenFunc(app.sendEmail))
	mux.Handle("POST /api/prep_linkedin", session.ThenFunc(app.prepLinkedIn))
	mux.Handle("POST /api/add_investor", session.ThenFunc(app.addInvestor))
	mux.Handle("POST /api/upload_csv", session.ThenFunc(app.uploadCSV))
	mux.Handle("GET /api/download_template", session.ThenFunc(app.downloadTemplate))

	mux.Handle("POST /api/pitch/open", session.ThenFunc(app.pitchOpen))
	mux.Handle("POST /api/pitch/close", session.ThenFunc(app.pitchClose))
	mux.Handle("GET /api/pitch/state", session.ThenFunc(app.pitchState))
	mux.Handle("POST /api/pitch/record/start", session.ThenFunc(app.pitchRecordStart))
	mux.Handle("POST /api/pitch/record/stop", session.ThenFunc(app.pitchRecordStop))
	mux.Handle("POST /api/pitch/retry", session.ThenFunc(app.pitchRetry))
	mux.Handle("GET /api/pitch/save", session.ThenFunc(app.pitchSave))
	mux.Handle("POST /api/pitch/upload", session.ThenFunc(app.pitchUpload))
	mux.Handle("POST /api/pitch/email_body", session.ThenFunc(app.pitchSetEmailBody))
	mux.Handle("POST /api/pitch/find_email", session.ThenFunc(app.pitchFindEmail))
	mux.Handle("POST /api/pitch/tips", session.ThenFunc(app.pitchTips))
	mux.Handle("POST /api/pitch/send", session.ThenFunc(app.pitchSend))
	mux.Handle("GET /api/pitch/linkedin", session.ThenFunc(app.pitchLinkedIn))

	return app.recoverPanic(app.logRequest(secureHeaders(noSurf(mux))))
}
