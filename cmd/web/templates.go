package main

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/opencrew/pitchboard/internal/contexthelpers"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/ui"
)

// templateFuncs are available in every template. csrfToken is a placeholder
// that the render functions override with the request-scoped token.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"csrfToken": func() string {
			panic("not implemented")
		},
		"statuses": models.Statuses,
		"band": func(score int) models.Band {
			return models.LikelihoodBand(score)
		},
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to a directory inside ui/templates/pages. It has to include a template named "page".
func pageTemplate(pageName string) (*template.Template, error) {
	t := template.New(pageName).Funcs(templateFuncs())
	t, err := t.ParseFS(ui.Files,
		"templates/base.gohtml",
		"templates/partials/*.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName))
	if err != nil {
		return nil, errors.Wrap(err, "parse page template", slog.String("page", pageName))
	}
	return t, nil
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, err := pageTemplate(page)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	csrfToken := contexthelpers.CSRFToken(r.Context())
	t.Funcs(template.FuncMap{
		"csrfToken": func() string {
			return csrfToken
		},
	})

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", page)))
		return
	}

	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPartial renders a single named template from the partials directory,
// used for htmx swaps.
func (app *application) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	t := template.New(name).Funcs(templateFuncs())
	t, err := t.ParseFS(ui.Files, "templates/partials/*.gohtml")
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "parse partials"))
		return
	}

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute partial", slog.String("template", name)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
