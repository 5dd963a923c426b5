package main

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/evidenx/evidenx/internal/comparison"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"golang.org/x/sync/errgroup"
)

// minComparedMedia is the number of audio recordings a witness comparison needs.
const minComparedMedia = 2

type statusFilter struct {
	Value    string
	Label    string
	Count    int
	URL      string
	Selected bool
}

type compareTemplateData struct {
	BaseTemplateData

	Case      models.Case
	Media     []models.Evidence
	Enough    bool
	Witnesses []models.Witness
	Analysis  []models.AnalysisItem
	Counts    comparison.Counts
	Status    string
	Filters   []statusFilter
	CaseURL   string
}

// comparedIDs reads the evidence ids from the ids parameter, given either comma separated or repeated.
func comparedIDs(query url.Values) []string {
	var ids []string
	for _, value := range query["ids"] {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (app *application) compareWitnesses(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}

	var (
		evidence    []models.Evidence
		comparisons []models.AudioComparison
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		evidence, err = app.evidence.ListByCase(ctx, c.ID)
		return errors.Wrap(err, "list evidence")
	})
	g.Go(func() error {
		var err error
		comparisons, err = app.comparison.ListByCase(ctx, c.ID)
		return errors.Wrap(err, "list comparisons")
	})
	if err := g.Wait(); err != nil {
		app.serverError(w, r, err)
		return
	}

	query := r.URL.Query()
	compared := comparison.ComparedMedia(evidence, comparedIDs(query))
	data := compareTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Case:             c,
		Media:            compared,
		Enough:           len(compared) >= minComparedMedia,
		CaseURL:          "/cases/" + url.PathEscape(c.ID),
	}
	if !data.Enough {
		app.render(w, r, http.StatusOK, "compare", data)
		return
	}

	ids := make([]string, len(compared))
	for i, e := range compared {
		ids[i] = e.ID
	}
	matched := comparison.ForEvidence(comparisons, ids)
	analysis := comparison.Analysis(matched)
	status := query.Get("status")
	if status == "" {
		status = comparison.All
	}

	data.Witnesses = comparison.Witnesses(matched)
	data.Analysis = comparison.FilterAnalysis(analysis, status)
	data.Counts = comparison.Count(analysis)
	data.Status = status

	filterURL := func(value string) string {
		q := url.Values{}
		q.Set("ids", strings.Join(ids, ","))
		q.Set("status", value)
		return "/cases/" + url.PathEscape(c.ID) + "/compare?" + q.Encode()
	}
	data.Filters = append(data.Filters, statusFilter{
		Value: comparison.All, Label: "All", Count: data.Counts.Total,
		URL: filterURL(comparison.All), Selected: status == comparison.All,
	})
	counts := map[models.AnalysisStatus]int{
		models.AnalysisStatusSimilarity:    data.Counts.Similarities,
		models.AnalysisStatusContradiction: data.Counts.Contradictions,
		models.AnalysisStatusGrayArea:      data.Counts.GrayAreas,
	}
	for _, s := range models.AnalysisStatuses {
		data.Filters = append(data.Filters, statusFilter{
			Value:    string(s),
			Label:    comparison.StatusLabel(s),
			Count:    counts[s],
			URL:      filterURL(string(s)),
			Selected: status == string(s),
		})
	}

	app.render(w, r, http.StatusOK, "compare", data)
}
