package chat

import (
	"strings"

	"github.com/evidenx/evidenx/internal/media"
	"github.com/evidenx/evidenx/internal/models"
)

// NoDetections answers a video question that matches no recorded detection.
const NoDetections = "No matching detections found"

// VideoExchange is one question and answer of the video assistant.
type VideoExchange struct {
	Query      string    `json:"query"`
	Response   string    `json:"response"`
	Timestamps []float64 `json:"timestamps,omitempty"`
}

// MatchDetection finds the detection for a query. A query matches when either text contains the other,
// ignoring case and surrounding space.
func MatchDetection(detections []models.Detection, query string) (models.Detection, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.Detection{}, false
	}
	for _, d := range detections {
		known := strings.ToLower(d.Query)
		if strings.Contains(known, q) || strings.Contains(q, known) {
			return d, true
		}
	}
	return models.Detection{}, false
}

// AnswerVideo answers a question from the detections of a video.
func AnswerVideo(detections []models.Detection, query string) VideoExchange {
	query = strings.TrimSpace(query)
	d, ok := MatchDetection(detections, query)
	if !ok {
		return VideoExchange{Query: query, Response: NoDetections}
	}
	return VideoExchange{
		Query:      query,
		Response:   d.Response,
		Timestamps: d.Timestamps,
	}
}

// VideoFlags places the timestamps of every answered exchange on the video track.
func VideoFlags(exchanges []VideoExchange, duration float64) []media.Flag {
	answers := make([][]float64, 0, len(exchanges))
	for _, e := range exchanges {
		if len(e.Timestamps) > 0 {
			answers = append(answers, e.Timestamps)
		}
	}
	return media.Flags(answers, duration)
}
