// Package knowledge answers investigator questions about a case.
package knowledge

import (
	"context"
	"regexp"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/media"
)

// Answer is the reply of the knowledge base. Timestamps are video offsets in seconds.
type Answer struct {
	Query      string    `json:"query"`
	Answer     string    `json:"answer"`
	Timestamps []float64 `json:"timestamps"`
}

type Querier interface {
	Query(ctx context.Context, caseID string, question string) (Answer, error)
}

// StreamingQuerier additionally reports the answer while it is being generated.
type StreamingQuerier interface {
	Querier
	QueryStream(ctx context.Context, caseID string, question string, onDelta func(delta string)) (Answer, error)
}

var clockPattern = regexp.MustCompile(`\[(\d{1,2}:\d{2}(?::\d{2})?)]`)

// timestampsIn extracts the [mm:ss] references of an answer in order of appearance.
func timestampsIn(text string) []float64 {
	var timestamps []float64
	for _, match := range clockPattern.FindAllStringSubmatch(text, -1) {
		seconds, err := media.ParseClock(match[1])
		if err != nil {
			continue
		}
		timestamps = append(timestamps, seconds)
	}
	return timestamps
}

var ErrUnconfigured = errors.NewSentinel("no knowledge base configured")

// Unconfigured fails every question. It stands in when neither a backend nor a language model is configured.
type Unconfigured struct{}

func (Unconfigured) Query(context.Context, string, string) (Answer, error) {
	return Answer{}, ErrUnconfigured
}
