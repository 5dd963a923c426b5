package main

import (
	"net/http"

	"github.com/evidenx/evidenx/internal/caseview"
	"github.com/evidenx/evidenx/internal/contexthelpers"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
)

type dashboardTemplateData struct {
	BaseTemplateData

	Filter        caseview.CaseFilter
	Cases         []models.Case
	Total         int
	HiddenPrivate int
	Statuses      []models.CaseStatus
	Visibilities  []models.Visibility
}

func (app *application) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cases, err := app.cases.List(ctx)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list cases"))
		return
	}

	visible := cases
	if !contexthelpers.IsAuthenticated(ctx) {
		visible = make([]models.Case, 0, len(cases))
		for _, c := range cases {
			if !c.IsPrivate() {
				visible = append(visible, c)
			}
		}
	}

	query := r.URL.Query()
	filter := caseview.CaseFilter{
		Search:     query.Get("search"),
		Status:     query.Get("status"),
		Visibility: query.Get("visibility"),
	}
	data := dashboardTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Filter:           filter,
		Cases:            caseview.FilterCases(visible, filter),
		Total:            len(visible),
		HiddenPrivate:    len(cases) - len(visible),
		Statuses:         models.CaseStatuses,
		Visibilities:     models.Visibilities,
	}
	app.render(w, r, http.StatusOK, "dashboard", data)
}
