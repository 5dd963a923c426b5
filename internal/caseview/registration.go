package caseview

import (
	"slices"
	"strings"
	"time"

	"github.com/evidenx/evidenx/internal/models"
)

// RegistrationForm is the input of the case registration form.
type RegistrationForm struct {
	FIRNumber            string `json:"firNumber"`
	Title                string `json:"title"`
	Summary              string `json:"summary"`
	Petitioner           string `json:"petitioner"`
	Accused              string `json:"accused"`
	InvestigatingOfficer string `json:"investigatingOfficer"`
	Location             string `json:"location"`
	Description          string `json:"description"`
	Status               string `json:"status"`
	Visibility           string `json:"visibility"`
}

// FieldErrors maps form field names to the validation message shown next to the field.
type FieldErrors map[string]string

// ValidateRegistration trims the form, fills in defaults and reports missing or invalid fields.
//
// Status defaults to Open and visibility to Private.
func ValidateRegistration(f *RegistrationForm) FieldErrors {
	for _, field := range []*string{
		&f.FIRNumber, &f.Title, &f.Summary, &f.Petitioner, &f.Accused, &f.InvestigatingOfficer, &f.Location,
		&f.Description, &f.Status, &f.Visibility,
	} {
		*field = strings.TrimSpace(*field)
	}
	if f.Status == "" {
		f.Status = string(models.CaseStatusOpen)
	}
	if f.Visibility == "" {
		f.Visibility = string(models.VisibilityPrivate)
	}

	errs := FieldErrors{}
	required := []struct {
		name  string
		value string
		label string
	}{
		{"firNumber", f.FIRNumber, "FIR Number"},
		{"title", f.Title, "Case Title"},
		{"summary", f.Summary, "Case Summary"},
		{"petitioner", f.Petitioner, "Petitioner"},
		{"accused", f.Accused, "Accused"},
		{"investigatingOfficer", f.InvestigatingOfficer, "Investigating Officer"},
		{"location", f.Location, "Location"},
	}
	for _, r := range required {
		if r.value == "" {
			errs[r.name] = r.label + " is required"
		}
	}
	if !slices.Contains(models.CaseStatuses, models.CaseStatus(f.Status)) {
		errs["status"] = "Status must be one of Open, In-Progress or Closed"
	}
	if !slices.Contains(models.Visibilities, models.Visibility(f.Visibility)) {
		errs["visibility"] = "Visibility must be Public or Private"
	}
	return errs
}

// Case builds the case to register from a validated form.
func (f *RegistrationForm) Case(id string, registered time.Time) models.Case {
	return models.Case{
		ID:                   id,
		FIRNumber:            f.FIRNumber,
		Title:                f.Title,
		Summary:              f.Summary,
		Petitioner:           f.Petitioner,
		Accused:              f.Accused,
		InvestigatingOfficer: f.InvestigatingOfficer,
		RegisteredDate:       registered,
		Status:               models.CaseStatus(f.Status),
		Visibility:           models.Visibility(f.Visibility),
		Location:             f.Location,
		Description:          f.Description,
	}
}
