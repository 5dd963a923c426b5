package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
)

type loginTemplateData struct {
	BaseTemplateData

	Next  string
	Error string
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	data := loginTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Next:             safeNext(r.URL.Query().Get("next")),
	}
	app.render(w, r, http.StatusOK, "login", data)
}

func (app *application) loginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	next := safeNext(r.PostForm.Get("next"))
	investigator, ok := app.apiTokens.lookup(strings.TrimSpace(r.PostForm.Get("token")))
	if !ok {
		data := loginTemplateData{
			BaseTemplateData: newBaseTemplateData(r),
			Next:             next,
			Error:            "Invalid access token",
		}
		app.render(w, r, http.StatusUnprocessableEntity, "login", data)
		return
	}

	ctx := r.Context()
	if err := app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	app.sessionManager.Put(ctx, string(investigatorSessionKey), investigator)
	app.logger.LogAttrs(ctx, slog.LevelInfo, "investigator signed in", slog.String("investigator", investigator))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := app.sessionManager.Destroy(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
