package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/evidenx/evidenx/internal/caseview"
	"github.com/evidenx/evidenx/internal/chat"
	"github.com/evidenx/evidenx/internal/contexthelpers"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/logging"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/repositories"
	"github.com/evidenx/evidenx/internal/timeline"
	"golang.org/x/sync/errgroup"
)

// caseNotFound is shown in place of a missing case.
const caseNotFound = "Case not found"

// loadCase resolves the case of the caseID path value. Missing cases get the not found page and private cases
// send anonymous visitors to sign in. The request returned carries the case id in its log attributes.
func (app *application) loadCase(w http.ResponseWriter, r *http.Request) (models.Case, *http.Request, bool) {
	caseID := r.PathValue("caseID")
	r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("case_id", caseID)))
	c, err := app.cases.Get(r.Context(), caseID)
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r, caseNotFound)
		return models.Case{}, r, false
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get case"))
		return models.Case{}, r, false
	}
	if c.IsPrivate() && !contexthelpers.IsAuthenticated(r.Context()) {
		app.redirectToLogin(w, r)
		return models.Case{}, r, false
	}
	return c, r, true
}

func (app *application) selection(r *http.Request, caseID string) caseview.Selection {
	ids, ok := app.sessionManager.Get(r.Context(), selectionSessionKey.scoped(caseID)).([]string)
	if !ok {
		return nil
	}
	return ids
}

// chatMessageView is a chat message with what's needed to link its timestamps to the case video.
type chatMessageView struct {
	models.ChatMessage

	CaseID  string
	VideoID string
}

func chatViews(messages []models.ChatMessage, caseID string, videoID string) []chatMessageView {
	views := make([]chatMessageView, len(messages))
	for i, m := range messages {
		views[i] = chatMessageView{ChatMessage: m, CaseID: caseID, VideoID: videoID}
	}
	return views
}

// firstVideoID returns the video the assistant timestamps point to.
func firstVideoID(evidence []models.Evidence) string {
	i := slices.IndexFunc(evidence, models.Evidence.IsVideo)
	if i < 0 {
		return ""
	}
	return evidence[i].ID
}

type selectionView struct {
	CaseID        string
	Count         int
	AudioNames    []string
	CanCompare    bool
	CompareURL    string
	SelectedAudio int
}

func newSelectionView(caseID string, selection caseview.Selection, evidence []models.Evidence) selectionView {
	audioIDs := selection.AudioIDs(evidence)
	return selectionView{
		CaseID:        caseID,
		Count:         len(selection),
		AudioNames:    selection.AudioNames(evidence),
		CanCompare:    selection.CanCompare(evidence),
		CompareURL:    "/cases/" + url.PathEscape(caseID) + "/compare?ids=" + url.QueryEscape(strings.Join(audioIDs, ",")),
		SelectedAudio: len(audioIDs),
	}
}

type caseTemplateData struct {
	BaseTemplateData

	Case           models.Case
	Search         string
	Evidence       []models.Evidence
	EvidenceTotal  int
	Selection      caseview.Selection
	SelectionView  selectionView
	Timeline       []models.TimelineEvent
	AssistantOpen  bool
	Messages       []chatMessageView
	FailureMessage string
}

// recentTimelineEvents is how many timeline events the case page previews.
const recentTimelineEvents = 5

func (app *application) caseDetails(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}

	var (
		evidence []models.Evidence
		events   []models.TimelineEvent
		messages []models.ChatMessage
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		evidence, err = app.evidence.ListByCase(ctx, c.ID)
		return errors.Wrap(err, "list evidence")
	})
	g.Go(func() error {
		var err error
		events, err = app.timeline.ListByCase(ctx, c.ID)
		return errors.Wrap(err, "list timeline")
	})
	g.Go(func() error {
		var err error
		messages, err = app.assistant.History(ctx, c.ID)
		return errors.Wrap(err, "chat history")
	})
	if err := g.Wait(); err != nil {
		app.serverError(w, r, err)
		return
	}

	events = timeline.Sort(events)
	if len(events) > recentTimelineEvents {
		events = events[:recentTimelineEvents]
	}
	search := r.URL.Query().Get("search")
	selection := app.selection(r, c.ID)
	data := caseTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Case:             c,
		Search:           search,
		Evidence:         caseview.FilterEvidence(evidence, search),
		EvidenceTotal:    len(evidence),
		Selection:        selection,
		SelectionView:    newSelectionView(c.ID, selection, evidence),
		Timeline:         events,
		AssistantOpen:    app.sessionManager.GetBool(r.Context(), assistantSessionKey.scoped(c.ID)),
		Messages:         chatViews(messages, c.ID, firstVideoID(evidence)),
		FailureMessage:   chat.FailureMessage,
	}
	app.render(w, r, http.StatusOK, "case", data)
}

func (app *application) toggleSelection(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	evidenceID := r.PostForm.Get("evidence_id")
	if _, err := app.evidence.Get(ctx, c.ID, evidenceID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.clientError(w, r, http.StatusUnprocessableEntity)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "get evidence"))
		return
	}

	selection := app.selection(r, c.ID).Toggle(evidenceID)
	app.sessionManager.Put(ctx, selectionSessionKey.scoped(c.ID), []string(selection))
	app.respondSelection(w, r, c, selection)
}

func (app *application) clearSelection(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}
	app.sessionManager.Remove(r.Context(), selectionSessionKey.scoped(c.ID))
	app.respondSelection(w, r, c, nil)
}

// respondSelection swaps the selection bar for htmx and redirects back to the case otherwise.
func (app *application) respondSelection(
	w http.ResponseWriter,
	r *http.Request,
	c models.Case,
	selection caseview.Selection,
) {
	h := app.htmx.NewHandler(w, r)
	if !h.Request().HxRequest {
		http.Redirect(w, r, "/cases/"+c.ID, http.StatusSeeOther)
		return
	}
	evidence, err := app.evidence.ListByCase(r.Context(), c.ID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list evidence"))
		return
	}
	app.renderFragment(w, r, http.StatusOK, "case", "selection", newSelectionView(c.ID, selection, evidence))
}

func (app *application) toggleAssistant(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	key := assistantSessionKey.scoped(c.ID)
	app.sessionManager.Put(ctx, key, !app.sessionManager.GetBool(ctx, key))
	http.Redirect(w, r, "/cases/"+c.ID+"#assistant", http.StatusSeeOther)
}
