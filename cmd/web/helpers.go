package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/opencrew/pitchboard/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// writeJSON renders v as the JSON response body.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response",
			errors.SlogError(errors.Wrap(err, "encode JSON response")))
	}
}

// apiError renders an error the way the dashboard expects it: {"error": message}.
func (app *application) apiError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.Debug("api error", "method", r.Method, "uri", r.URL.RequestURI(),
		"status", status, "message", message)
	app.writeJSON(w, r, status, map[string]string{"error": message})
}

// decodeJSON parses the request body into v. Form-encoded bodies are not
// supported on the JSON API.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		app.apiError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
