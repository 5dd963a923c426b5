package main

import (
	"io/fs"
	"net/http"

	htmxmiddleware "github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(app.files, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", http.FileServerFS(static))))

	session := alice.New(
		app.sessionManager.LoadAndSave,
		noSurf,
		app.authenticate,
		commonContext,
		htmxmiddleware.MiddleWare,
	)
	dynamic := session.Append(func(next http.Handler) http.Handler {
		return timeoutHandler(next, defaultTimeout)
	})
	mustAuthenticate := dynamic.Append(app.mustAuthenticate)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.dashboard))
	mux.Handle("GET /login", dynamic.ThenFunc(app.login))
	mux.Handle("POST /login", dynamic.ThenFunc(app.loginPost))
	mux.Handle("POST /logout", dynamic.ThenFunc(app.logout))

	mux.Handle("GET /cases/new", mustAuthenticate.ThenFunc(app.registerCase))
	mux.Handle("POST /cases/new", mustAuthenticate.ThenFunc(app.registerCasePost))
	mux.Handle("GET /cases/{caseID}", dynamic.ThenFunc(app.caseDetails))
	mux.Handle("POST /cases/{caseID}/selection", dynamic.ThenFunc(app.toggleSelection))
	mux.Handle("POST /cases/{caseID}/selection/clear", dynamic.ThenFunc(app.clearSelection))
	mux.Handle("POST /cases/{caseID}/chat", dynamic.ThenFunc(app.askAssistant))
	mux.Handle("POST /cases/{caseID}/chat/toggle", dynamic.ThenFunc(app.toggleAssistant))
	mux.Handle("GET /cases/{caseID}/timeline", dynamic.ThenFunc(app.caseTimeline))
	mux.Handle("GET /cases/{caseID}/incidents", dynamic.ThenFunc(app.incidentView))
	mux.Handle("GET /cases/{caseID}/compare", dynamic.ThenFunc(app.compareWitnesses))
	mux.Handle("GET /cases/{caseID}/evidence/{evidenceID}", dynamic.ThenFunc(app.evidenceView))
	mux.Handle("POST /cases/{caseID}/evidence/{evidenceID}/ask", dynamic.ThenFunc(app.askVideo))
	mux.Handle("POST /cases/{caseID}/evidence/{evidenceID}/followups", dynamic.ThenFunc(app.addFollowUp))
	mux.Handle("POST /cases/{caseID}/evidence/{evidenceID}/followups/{questionID}/delete",
		dynamic.ThenFunc(app.removeFollowUp))

	// Streaming responses can't go through the timeout handler or the session middleware that buffers the response.
	stream := alice.New(app.serverSentEventMiddleware, app.authenticate)
	mux.Handle("GET /cases/{caseID}/chat/{messageID}/stream", stream.ThenFunc(app.streamAnswer))

	api := alice.New(app.authenticateToken, func(next http.Handler) http.Handler {
		return timeoutHandler(next, defaultTimeout)
	})
	mux.Handle("GET /api/v1/cases/{$}", api.ThenFunc(app.apiListCases))
	mux.Handle("POST /api/v1/cases/{$}", api.ThenFunc(app.apiCreateCase))
	mux.Handle("GET /api/v1/cases/{caseID}", api.ThenFunc(app.apiGetCase))
	mux.Handle("GET /api/v1/timeline/case/{caseID}", api.ThenFunc(app.apiTimeline))
	mux.Handle("GET /api/v1/video/search/{caseID}/query-knowledge-base", api.ThenFunc(app.apiQueryKnowledgeBase))

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("/", dynamic.ThenFunc(app.notFoundPage))

	standard := alice.New(app.recoverPanic, app.logRequest, app.secureHeaders)
	return standard.Then(mux)
}
