package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evidenx/evidenx/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status), slog.Any("formdata", r.PostForm))
	http.Error(w, http.StatusText(status), status)
}

// notFound renders the not found page with a message telling what was missing.
func (app *application) notFound(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "not found", slog.String("message", message))
	data := notFoundTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Message:          message,
	}
	app.render(w, r, http.StatusNotFound, "notfound", data)
}

func (app *application) notFoundPage(w http.ResponseWriter, r *http.Request) {
	app.notFound(w, r, "Page not found")
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "write JSON response", errors.SlogError(err))
	}
}

func (app *application) apiError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "API error",
		slog.Int("status", status), slog.String("message", message))
	app.writeJSON(w, r, status, apiErrorResponse{Error: message})
}
