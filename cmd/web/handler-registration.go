package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/evidenx/evidenx/internal/caseview"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/repositories"
	"github.com/google/uuid"
)

type registrationTemplateData struct {
	BaseTemplateData

	Form         caseview.RegistrationForm
	Errors       caseview.FieldErrors
	Statuses     []models.CaseStatus
	Visibilities []models.Visibility
}

func (app *application) newRegistrationData(r *http.Request, form caseview.RegistrationForm) registrationTemplateData {
	return registrationTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Form:             form,
		Errors:           caseview.FieldErrors{},
		Statuses:         models.CaseStatuses,
		Visibilities:     models.Visibilities,
	}
}

func (app *application) registerCase(w http.ResponseWriter, r *http.Request) {
	form := caseview.RegistrationForm{
		Status:     string(models.CaseStatusOpen),
		Visibility: string(models.VisibilityPrivate),
	}
	app.render(w, r, http.StatusOK, "registration", app.newRegistrationData(r, form))
}

// createCase validates and registers a case. Validation failures are returned as field errors, a FIR number that
// is already registered included.
func (app *application) createCase(
	r *http.Request,
	form *caseview.RegistrationForm,
) (models.Case, caseview.FieldErrors, error) {
	if errs := caseview.ValidateRegistration(form); len(errs) > 0 {
		return models.Case{}, errs, nil
	}
	c := form.Case(uuid.NewString(), time.Now().UTC().Truncate(time.Second))
	ctx := r.Context()
	if err := app.cases.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Case{}, caseview.FieldErrors{"firNumber": "FIR Number is already registered"}, nil
		}
		return models.Case{}, nil, errors.Wrap(err, "create case")
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "registered case",
		slog.String("case_id", c.ID), slog.String("fir_number", c.FIRNumber))
	return c, nil, nil
}

func (app *application) registerCasePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	form := caseview.RegistrationForm{
		FIRNumber:            r.PostForm.Get("firNumber"),
		Title:                r.PostForm.Get("title"),
		Summary:              r.PostForm.Get("summary"),
		Petitioner:           r.PostForm.Get("petitioner"),
		Accused:              r.PostForm.Get("accused"),
		InvestigatingOfficer: r.PostForm.Get("investigatingOfficer"),
		Location:             r.PostForm.Get("location"),
		Description:          r.PostForm.Get("description"),
		Status:               r.PostForm.Get("status"),
		Visibility:           r.PostForm.Get("visibility"),
	}
	c, fieldErrors, err := app.createCase(r, &form)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if len(fieldErrors) > 0 {
		data := app.newRegistrationData(r, form)
		data.Errors = fieldErrors
		app.render(w, r, http.StatusUnprocessableEntity, "registration", data)
		return
	}
	http.Redirect(w, r, "/cases/"+c.ID, http.StatusSeeOther)
}
