package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/incident"
	"github.com/evidenx/evidenx/internal/models"
	"golang.org/x/sync/errgroup"
)

// parseDayOfMonth parses the MM-DD form used in incident page links.
func parseDayOfMonth(value string) (models.DayOfMonth, bool) {
	var d models.DayOfMonth
	if _, err := fmt.Sscanf(value, "%d-%d", &d.Month, &d.Day); err != nil {
		return models.DayOfMonth{}, false
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return models.DayOfMonth{}, false
	}
	return d, true
}

func formatDayOfMonth(d models.DayOfMonth) string {
	return fmt.Sprintf("%02d-%02d", d.Month, d.Day)
}

// parseIncidentView reads the incident page state from the query. Without a month the view opens on the month of
// the first incident.
func parseIncidentView(query url.Values, dates []models.DayOfMonth, registered time.Time) incident.View {
	view := incident.View{
		Mode:  incident.ModeTimeline,
		Year:  registered.Year(),
		Month: registered.Month(),
		Range: incident.FullDay,
	}
	if len(dates) > 0 {
		view.Month = time.Month(dates[0].Month)
	}
	if query.Get("mode") == string(incident.ModeMonth) {
		view.Mode = incident.ModeMonth
	}
	if year, err := strconv.Atoi(query.Get("year")); err == nil && year > 0 {
		view.Year = year
	}
	if month, err := strconv.Atoi(query.Get("month")); err == nil && month >= 1 && month <= 12 {
		view.Month = time.Month(month)
	}
	if d, ok := parseDayOfMonth(query.Get("date")); ok {
		view.Selected = &d
		view.Month = time.Month(d.Month)
	}
	if from, err := strconv.ParseFloat(query.Get("from"), 64); err == nil && from >= 0 && from <= 24 {
		view.Range.Start = from
	}
	if to, err := strconv.ParseFloat(query.Get("to"), 64); err == nil && to >= view.Range.Start && to <= 24 {
		view.Range.End = to
	}
	return view
}

// incidentURL links to the incident page with the view state and overrides applied.
func incidentURL(caseID string, view incident.View, overrides map[string]string) string {
	q := url.Values{}
	q.Set("mode", string(view.Mode))
	q.Set("year", strconv.Itoa(view.Year))
	q.Set("month", strconv.Itoa(int(view.Month)))
	if view.Selected != nil {
		q.Set("date", formatDayOfMonth(*view.Selected))
	}
	if view.Range != incident.FullDay {
		q.Set("from", strconv.FormatFloat(view.Range.Start, 'f', -1, 64))
		q.Set("to", strconv.FormatFloat(view.Range.End, 'f', -1, 64))
	}
	for k, v := range overrides {
		if v == "" {
			q.Del(k)
			continue
		}
		q.Set(k, v)
	}
	return "/cases/" + url.PathEscape(caseID) + "/incidents?" + q.Encode()
}

type eventBlock struct {
	models.IncidentEvent

	Block      incident.Block
	Confidence incident.Confidence
	URL        string
}

type laneView struct {
	incident.Lane

	Blocks []eventBlock
}

type dateLink struct {
	Date     models.DayOfMonth
	Label    string
	URL      string
	Selected bool
}

type calendarCell struct {
	incident.Cell

	URL string
}

type incidentTemplateData struct {
	BaseTemplateData

	Case     models.Case
	View     incident.View
	Axis     incident.Range
	Ticks    []incident.Tick
	Lanes    []laneView
	Selected *eventBlock
	Events   int

	Dates         []dateLink
	AllDatesURL   string
	Navigation    incident.Navigation
	PrevDateURL   string
	NextDateURL   string
	TimelineURL   string
	MonthURL      string
	Month         incident.Month
	Cells         []calendarCell
	PrevMonthURL  string
	NextMonthURL  string
	CloseEventURL string
}

func (app *application) incidentView(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}

	var (
		actors []models.Actor
		events []models.IncidentEvent
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		actors, err = app.incidents.Actors(ctx, c.ID)
		return errors.Wrap(err, "list actors")
	})
	g.Go(func() error {
		var err error
		events, err = app.incidents.Events(ctx, c.ID)
		return errors.Wrap(err, "list incident events")
	})
	if err := g.Wait(); err != nil {
		app.serverError(w, r, err)
		return
	}

	query := r.URL.Query()
	dates := incident.Dates(events)
	view := parseIncidentView(query, dates, c.RegisteredDate)
	shown := incident.Filter(events, view)
	axis := incident.DataRange(shown)
	selectedEventID, _ := strconv.Atoi(query.Get("event"))

	data := incidentTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Case:             c,
		View:             view,
		Axis:             axis,
		Ticks:            incident.HourTicks(axis),
		Events:           len(shown),
		AllDatesURL:      incidentURL(c.ID, view, map[string]string{"date": "", "event": ""}),
		TimelineURL:      incidentURL(c.ID, view, map[string]string{"mode": string(incident.ModeTimeline)}),
		MonthURL:         incidentURL(c.ID, view, map[string]string{"mode": string(incident.ModeMonth), "event": ""}),
		CloseEventURL:    incidentURL(c.ID, view, nil),
	}

	for _, lane := range incident.Lanes(actors, shown) {
		lv := laneView{Lane: lane, Blocks: make([]eventBlock, 0, len(lane.Events))}
		for _, e := range lane.Events {
			block := eventBlock{
				IncidentEvent: e,
				Block:         incident.Place(e, axis),
				Confidence:    incident.ConfidenceLevel(e.Confidence),
				URL:           incidentURL(c.ID, view, map[string]string{"event": strconv.Itoa(e.ID)}),
			}
			if e.ID == selectedEventID {
				selected := block
				data.Selected = &selected
			}
			lv.Blocks = append(lv.Blocks, block)
		}
		data.Lanes = append(data.Lanes, lv)
	}

	for _, d := range dates {
		data.Dates = append(data.Dates, dateLink{
			Date:     d,
			Label:    formatDayOfMonth(d),
			URL:      incidentURL(c.ID, view, map[string]string{"date": formatDayOfMonth(d), "event": ""}),
			Selected: view.Selected != nil && *view.Selected == d,
		})
	}
	if view.Selected != nil {
		data.Navigation = incident.Navigate(dates, *view.Selected)
		if data.Navigation.HasPrev {
			data.PrevDateURL = incidentURL(c.ID, view,
				map[string]string{"date": formatDayOfMonth(*data.Navigation.Prev), "event": ""})
		}
		if data.Navigation.HasNext {
			data.NextDateURL = incidentURL(c.ID, view,
				map[string]string{"date": formatDayOfMonth(*data.Navigation.Next), "event": ""})
		}
	}

	data.Month = incident.MonthGrid(view.Year, view.Month, events)
	for _, cell := range data.Month.Cells {
		cc := calendarCell{Cell: cell}
		if cell.Incident() {
			d := models.DayOfMonth{Day: cell.Day, Month: int(view.Month)}
			cc.URL = incidentURL(c.ID, view, map[string]string{
				"mode":  string(incident.ModeTimeline),
				"date":  formatDayOfMonth(d),
				"event": "",
			})
		}
		data.Cells = append(data.Cells, cc)
	}
	prevYear, prevMonth := data.Month.Prev()
	nextYear, nextMonth := data.Month.Next()
	data.PrevMonthURL = incidentURL(c.ID, view, map[string]string{
		"year": strconv.Itoa(prevYear), "month": strconv.Itoa(int(prevMonth)), "date": "", "event": "",
	})
	data.NextMonthURL = incidentURL(c.ID, view, map[string]string{
		"year": strconv.Itoa(nextYear), "month": strconv.Itoa(int(nextMonth)), "date": "", "event": "",
	})

	app.render(w, r, http.StatusOK, "incidents", data)
}
