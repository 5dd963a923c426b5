package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/evidenx/evidenx/internal/chat"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/logging"
	"github.com/evidenx/evidenx/internal/media"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/repositories"
)

const evidenceNotFound = "Evidence not found"

// loadEvidence resolves the evidenceID path value within the case of the request.
func (app *application) loadEvidence(
	w http.ResponseWriter,
	r *http.Request,
) (models.Case, models.Evidence, *http.Request, bool) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return models.Case{}, models.Evidence{}, r, false
	}
	evidenceID := r.PathValue("evidenceID")
	r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("evidence_id", evidenceID)))
	e, err := app.evidence.Get(r.Context(), c.ID, evidenceID)
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r, evidenceNotFound)
		return models.Case{}, models.Evidence{}, r, false
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get evidence"))
		return models.Case{}, models.Evidence{}, r, false
	}
	return c, e, r, true
}

func evidencePath(caseID string, evidenceID string) string {
	return "/cases/" + url.PathEscape(caseID) + "/evidence/" + url.PathEscape(evidenceID)
}

// parsePosition reads a playback position given either in seconds or as a clock value.
func parsePosition(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return seconds
	}
	if seconds, err := media.ParseClock(value); err == nil {
		return seconds
	}
	return 0
}

func frameBoxes(boxes []models.DetectionBox) []media.Box {
	frame := make([]media.Box, len(boxes))
	for i, b := range boxes {
		frame[i] = media.Box{Time: b.Time, Coords: [4]float64{b.X, b.Y, b.Width, b.Height}, ShowFor: b.ShowFor}
	}
	return frame
}

type waveformBar struct {
	Height int
	Played bool
}

// waveform draws the bars of the audio track. The heights form a fixed pattern.
func waveform(position, duration float64) []waveformBar {
	played := media.WaveformBars(position, duration, media.DefaultWaveformBars)
	bars := make([]waveformBar, media.DefaultWaveformBars)
	for i := range bars {
		bars[i] = waveformBar{
			Height: 20 + (i*37)%60, //nolint:mnd // pattern
			Played: i < played,
		}
	}
	return bars
}

type evidenceTemplateData struct {
	BaseTemplateData

	Case      models.Case
	Evidence  models.Evidence
	Path      string
	Player    media.Player
	Progress  float64
	SkipBack  float64
	SkipAhead float64

	// Video evidence.
	Exchanges  []chat.VideoExchange
	Flags      []media.Flag
	Boxes      []media.Box
	Detections []models.Detection

	// Audio evidence.
	Markers   []media.Marker
	Waveform  []waveformBar
	FollowUps []models.FollowUpQuestion
}

// skipSeconds is how far the skip buttons move the playback position.
const skipSeconds = 10

func (app *application) evidenceView(w http.ResponseWriter, r *http.Request) {
	c, e, r, ok := app.loadEvidence(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var player media.Player
	if duration, err := media.ParseClock(e.Duration); err == nil {
		player.Duration = duration
	}
	player.Seek(parsePosition(r.URL.Query().Get("t")))
	back, ahead := player, player
	back.Skip(-skipSeconds)
	ahead.Skip(skipSeconds)

	data := evidenceTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Case:             c,
		Evidence:         e,
		Path:             evidencePath(c.ID, e.ID),
		Player:           player,
		Progress:         player.Progress(),
		SkipBack:         back.Position,
		SkipAhead:        ahead.Position,
	}

	switch {
	case e.IsVideo():
		detections, err := app.media.Detections(ctx, e.ID)
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "list detections"))
			return
		}
		boxes, err := app.media.DetectionBoxes(ctx, e.ID)
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "list detection boxes"))
			return
		}
		data.Detections = detections
		data.Exchanges = app.videoExchanges(r, e.ID)
		data.Flags = chat.VideoFlags(data.Exchanges, player.Duration)
		data.Boxes = media.VisibleDetections(frameBoxes(boxes), player.Position)
	case e.IsAudio():
		followUps, err := app.followUps.List(ctx, e.ID)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		data.FollowUps = followUps
		data.Markers = media.TranscriptMarkers(e.Transcript, player.Duration, media.DefaultMarkerLimit)
		data.Waveform = waveform(player.Position, player.Duration)
	}

	app.render(w, r, http.StatusOK, "evidence", data)
}

func (app *application) videoExchanges(r *http.Request, evidenceID string) []chat.VideoExchange {
	exchanges, ok := app.sessionManager.Get(r.Context(), videoChatSessionKey.scoped(evidenceID)).([]chat.VideoExchange)
	if !ok {
		return nil
	}
	return exchanges
}

// askVideo answers a question about video evidence from its recorded detections. The conversation lives in the
// session.
func (app *application) askVideo(w http.ResponseWriter, r *http.Request) {
	c, e, r, ok := app.loadEvidence(w, r)
	if !ok {
		return
	}
	if !e.IsVideo() {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	path := evidencePath(c.ID, e.ID)

	query := strings.TrimSpace(r.PostForm.Get("query"))
	if query == "" {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	detections, err := app.media.Detections(ctx, e.ID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list detections"))
		return
	}
	exchange := chat.AnswerVideo(detections, query)
	exchanges := append(app.videoExchanges(r, e.ID), exchange)
	app.sessionManager.Put(ctx, videoChatSessionKey.scoped(e.ID), exchanges)

	if len(exchange.Timestamps) > 0 {
		path += "?t=" + strconv.FormatFloat(exchange.Timestamps[0], 'f', -1, 64)
	}
	http.Redirect(w, r, path+"#video-assistant", http.StatusSeeOther)
}

func (app *application) addFollowUp(w http.ResponseWriter, r *http.Request) {
	c, e, r, ok := app.loadEvidence(w, r)
	if !ok {
		return
	}
	if !e.IsAudio() {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if err := app.followUps.Add(r.Context(), e.ID, r.PostForm.Get("question")); err != nil {
		app.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, evidencePath(c.ID, e.ID)+"#follow-ups", http.StatusSeeOther)
}

func (app *application) removeFollowUp(w http.ResponseWriter, r *http.Request) {
	c, e, r, ok := app.loadEvidence(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.PathValue("questionID"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if err = app.followUps.Remove(r.Context(), e.ID, id); err != nil {
		app.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, evidencePath(c.ID, e.ID)+"#follow-ups", http.StatusSeeOther)
}
