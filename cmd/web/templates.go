package main

import (
	"net/http"

	"github.com/evidenx/evidenx/internal/contexthelpers"
)

type BaseTemplateData struct {
	Authenticated bool
	Investigator  string
	CurrentPath   string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	return BaseTemplateData{
		Authenticated: contexthelpers.IsAuthenticated(ctx),
		Investigator:  contexthelpers.Investigator(ctx),
		CurrentPath:   contexthelpers.CurrentPath(ctx),
	}
}

type notFoundTemplateData struct {
	BaseTemplateData
	Message string
}
