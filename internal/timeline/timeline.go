// Package timeline prepares the case diary timeline for display.
package timeline

import (
	"slices"
	"strings"

	"github.com/evidenx/evidenx/internal/models"
)

// All disables the source filter.
const All = "all"

// Sort returns the events in ascending timestamp order. Events with equal timestamps keep their relative order.
func Sort(events []models.TimelineEvent) []models.TimelineEvent {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b models.TimelineEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// Filter keeps the events whose title or description contains search and whose source matches.
func Filter(events []models.TimelineEvent, search string, source string) []models.TimelineEvent {
	search = strings.ToLower(strings.TrimSpace(search))
	filtered := make([]models.TimelineEvent, 0, len(events))
	for _, e := range events {
		if source != "" && source != All && string(e.Source) != source {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), search) &&
			!strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// SourceClass returns the colour class of the marker for an event source.
func SourceClass(source models.TimelineSource) string {
	switch source {
	case models.TimelineSourceCaseDiary:
		return "source-blue"
	case models.TimelineSourceVideo:
		return "source-red"
	case models.TimelineSourceAudio:
		return "source-green"
	case models.TimelineSourceDocument:
		return "source-amber"
	default:
		return "source-gray"
	}
}

// SourceLabel returns the human-readable name of an event source.
func SourceLabel(source models.TimelineSource) string {
	switch source {
	case models.TimelineSourceCaseDiary:
		return "Case Diary"
	case models.TimelineSourceVideo:
		return "Video"
	case models.TimelineSourceAudio:
		return "Audio"
	case models.TimelineSourceDocument:
		return "Document"
	default:
		return string(source)
	}
}
