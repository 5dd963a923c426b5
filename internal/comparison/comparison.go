// Package comparison selects and summarises the witness audio comparisons of a case.
package comparison

import (
	"slices"

	"github.com/evidenx/evidenx/internal/models"
)

// All disables the analysis status filter.
const All = "all"

// ForEvidence returns the comparisons that involve any of the given evidence IDs.
func ForEvidence(comparisons []models.AudioComparison, ids []string) []models.AudioComparison {
	var matched []models.AudioComparison
	for _, c := range comparisons {
		if slices.Contains(ids, c.MediaID1) || slices.Contains(ids, c.MediaID2) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Witnesses returns the witnesses of all comparisons in order.
func Witnesses(comparisons []models.AudioComparison) []models.Witness {
	var witnesses []models.Witness
	for _, c := range comparisons {
		witnesses = append(witnesses, c.Witnesses...)
	}
	return witnesses
}

// Analysis returns the analysis rows of all comparisons in order.
func Analysis(comparisons []models.AudioComparison) []models.AnalysisItem {
	var items []models.AnalysisItem
	for _, c := range comparisons {
		items = append(items, c.DetailedAnalysis...)
	}
	return items
}

// FilterAnalysis keeps the rows with the given status.
func FilterAnalysis(items []models.AnalysisItem, status string) []models.AnalysisItem {
	if status == "" || status == All {
		return items
	}
	filtered := make([]models.AnalysisItem, 0, len(items))
	for _, item := range items {
		if string(item.Status) == status {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Counts is the number of analysis rows per status.
type Counts struct {
	Total          int
	Similarities   int
	Contradictions int
	GrayAreas      int
}

func Count(items []models.AnalysisItem) Counts {
	counts := Counts{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case models.AnalysisStatusSimilarity:
			counts.Similarities++
		case models.AnalysisStatusContradiction:
			counts.Contradictions++
		case models.AnalysisStatusGrayArea:
			counts.GrayAreas++
		}
	}
	return counts
}

// ComparedMedia resolves the requested IDs to audio evidence. IDs of other evidence types and unknown IDs are
// skipped.
func ComparedMedia(evidence []models.Evidence, ids []string) []models.Evidence {
	var media []models.Evidence
	for _, id := range ids {
		i := slices.IndexFunc(evidence, func(e models.Evidence) bool { return e.ID == id })
		if i >= 0 && evidence[i].IsAudio() {
			media = append(media, evidence[i])
		}
	}
	return media
}

// StatusClass returns the colour class of an analysis status badge.
func StatusClass(status models.AnalysisStatus) string {
	switch status {
	case models.AnalysisStatusSimilarity:
		return "badge-green"
	case models.AnalysisStatusContradiction:
		return "badge-red"
	case models.AnalysisStatusGrayArea:
		return "badge-amber"
	default:
		return "badge-gray"
	}
}

// StatusLabel returns the heading of an analysis status.
func StatusLabel(status models.AnalysisStatus) string {
	switch status {
	case models.AnalysisStatusSimilarity:
		return "Similarity"
	case models.AnalysisStatusContradiction:
		return "Contradiction"
	case models.AnalysisStatusGrayArea:
		return "Gray Area"
	default:
		return string(status)
	}
}
