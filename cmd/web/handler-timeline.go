package main

import (
	"net/http"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/timeline"
)

type timelineTemplateData struct {
	BaseTemplateData

	Case    models.Case
	Search  string
	Source  string
	Sources []models.TimelineSource
	Events  []timelineEventView
	Total   int
}

type timelineEventView struct {
	models.TimelineEvent

	SourceClass  string
	EvidencePath string
}

func (app *application) caseTimeline(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}
	events, err := app.timeline.ListByCase(r.Context(), c.ID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list timeline"))
		return
	}

	query := r.URL.Query()
	search := query.Get("search")
	source := query.Get("source")
	if source == "" {
		source = timeline.All
	}
	filtered := timeline.Filter(timeline.Sort(events), search, source)
	views := make([]timelineEventView, len(filtered))
	for i, e := range filtered {
		views[i] = timelineEventView{TimelineEvent: e, SourceClass: timeline.SourceClass(e.Source)}
		if e.EvidenceID != "" {
			views[i].EvidencePath = evidencePath(c.ID, e.EvidenceID)
		}
	}

	data := timelineTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Case:             c,
		Search:           search,
		Source:           source,
		Sources:          models.TimelineSources,
		Events:           views,
		Total:            len(events),
	}
	app.render(w, r, http.StatusOK, "timeline", data)
}
