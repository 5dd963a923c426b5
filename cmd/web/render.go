package main

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evidenx/evidenx/internal/caseview"
	"github.com/evidenx/evidenx/internal/comparison"
	"github.com/evidenx/evidenx/internal/contexthelpers"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/incident"
	"github.com/evidenx/evidenx/internal/media"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/ssr"
	"github.com/evidenx/evidenx/internal/timeline"
)

func newExpander() ssr.Expander {
	return ssr.Expander{
		Components: map[string]string{
			"button-primary":   "btn btn-primary",
			"button-secondary": "btn btn-secondary",
		},
		Badges: map[string]ssr.ClassFunc{
			"status-badge": func(value string) string {
				return caseview.StatusClass(models.CaseStatus(value))
			},
			"visibility-badge": func(value string) string {
				return caseview.VisibilityClass(models.Visibility(value))
			},
			"source-badge": func(value string) string {
				return timeline.SourceClass(models.TimelineSource(value))
			},
			"analysis-badge": func(value string) string {
				return comparison.StatusClass(models.AnalysisStatus(value))
			},
		},
	}
}

// formField is a labelled input of the registration form.
type formField struct {
	Name      string
	Label     string
	Value     string
	Error     string
	Multiline bool
}

// templateFuncs are the helpers available in every template. nonce and csrf are overridden per request.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"nonce": func() template.HTMLAttr {
			panic("not implemented")
		},
		"csrf": func() template.HTML {
			panic("not implemented")
		},
		"clock":         media.FormatClock,
		"hours":         incident.FormatHours,
		"sourceLabel":   timeline.SourceLabel,
		"analysisLabel": comparison.StatusLabel,
		"join":          strings.Join,
		"date":          formatDayOfMonth,
		"field": func(name, label, value string, errs caseview.FieldErrors, multiline bool) formField {
			return formField{Name: name, Label: label, Value: value, Error: errs[name], Multiline: multiline}
		},
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to directory inside the templates/pages folder. It has to include a template named "page".
func (app *application) pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		"templates/partials/*.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}
	t, err := template.New(pageName).Funcs(templateFuncs()).ParseFS(app.files, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "parse templates", slog.String("page", pageName))
	}
	return t, nil
}

func (app *application) execute(r *http.Request, page string, name string, data any) (*bytes.Buffer, error) {
	t, err := app.pageTemplate(page)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // we trust the csrf since it's not provided by user.
		},
	})
	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		return nil, errors.Wrap(err, "execute template", slog.String("page", page), slog.String("template", name))
	}
	return buf, nil
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	buf, err := app.execute(r, page, "base", data)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	out := new(bytes.Buffer)
	if err = app.expander.Expand(out, buf); err != nil {
		app.serverError(w, r, errors.Wrap(err, "expand custom elements", slog.String("page", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = out.WriteTo(w)
}

// renderFragment renders a single named template of the page, used for htmx swaps.
func (app *application) renderFragment(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	name string,
	data any,
) {
	buf, err := app.execute(r, page, name, data)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	out := new(bytes.Buffer)
	if err = app.expander.ExpandFragment(out, buf); err != nil {
		app.serverError(w, r, errors.Wrap(err, "expand custom elements", slog.String("page", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = out.WriteTo(w)
}
