package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evidenx/evidenx/internal/caseview"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/knowledge"
	"github.com/evidenx/evidenx/internal/logging"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/repositories"
	"github.com/evidenx/evidenx/internal/timeline"
)

// maxRequestBody limits the size of JSON request bodies.
const maxRequestBody = 1 << 20

type apiValidationResponse struct {
	Error  string               `json:"error"`
	Fields caseview.FieldErrors `json:"fields"`
}

func (app *application) apiListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := app.cases.List(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list cases"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, cases)
}

// apiCase resolves the caseID path value for the API handlers and answers 404 for unknown cases.
func (app *application) apiCase(w http.ResponseWriter, r *http.Request) (models.Case, *http.Request, bool) {
	caseID := r.PathValue("caseID")
	r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("case_id", caseID)))
	c, err := app.cases.Get(r.Context(), caseID)
	if errors.Is(err, repositories.ErrNotFound) {
		app.apiError(w, r, http.StatusNotFound, caseNotFound)
		return models.Case{}, r, false
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get case"))
		return models.Case{}, r, false
	}
	return c, r, true
}

func (app *application) apiGetCase(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.apiCase(w, r)
	if !ok {
		return
	}
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) apiCreateCase(w http.ResponseWriter, r *http.Request) {
	var form caseview.RegistrationForm
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		app.apiError(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}
	c, fieldErrors, err := app.createCase(r, &form)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if len(fieldErrors) > 0 {
		app.writeJSON(w, r, http.StatusUnprocessableEntity, apiValidationResponse{
			Error:  "invalid case registration",
			Fields: fieldErrors,
		})
		return
	}
	w.Header().Set("Location", "/api/v1/cases/"+c.ID)
	app.writeJSON(w, r, http.StatusCreated, c)
}

func (app *application) apiTimeline(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.apiCase(w, r)
	if !ok {
		return
	}
	events, err := app.timeline.ListByCase(r.Context(), c.ID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list timeline"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, timeline.Sort(events))
}

func (app *application) apiQueryKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.apiCase(w, r)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		app.apiError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	ctx := r.Context()
	answer, err := app.knowledge.Query(ctx, c.ID, query)
	if errors.Is(err, knowledge.ErrUnconfigured) {
		app.apiError(w, r, http.StatusServiceUnavailable, "knowledge base is not configured")
		return
	}
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "query knowledge base", errors.SlogError(err))
		app.apiError(w, r, http.StatusBadGateway, "knowledge base query failed")
		return
	}
	app.writeJSON(w, r, http.StatusOK, answer)
}
