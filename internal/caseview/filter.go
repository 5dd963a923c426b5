// Package caseview holds the dashboard and case detail view state: filtering, evidence selection and case
// registration.
package caseview

import (
	"strings"

	"github.com/evidenx/evidenx/internal/models"
)

// All disables a status or visibility filter.
const All = "all"

// CaseFilter is the dashboard filter bar state.
type CaseFilter struct {
	Search     string
	Status     string
	Visibility string
}

// FilterCases returns the cases matching the filter in their original order.
//
// The search matches case-insensitively against the title, FIR number and petitioner.
func FilterCases(cases []models.Case, f CaseFilter) []models.Case {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	filtered := make([]models.Case, 0, len(cases))
	for _, c := range cases {
		if search != "" &&
			!containsFold(c.Title, search) &&
			!containsFold(c.FIRNumber, search) &&
			!containsFold(c.Petitioner, search) {
			continue
		}
		if isActive(f.Status) && string(c.Status) != f.Status {
			continue
		}
		if isActive(f.Visibility) && string(c.Visibility) != f.Visibility {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// FilterEvidence returns the evidence whose name, description or any tag contains the search.
func FilterEvidence(evidence []models.Evidence, search string) []models.Evidence {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return evidence
	}
	filtered := make([]models.Evidence, 0, len(evidence))
	for _, e := range evidence {
		if containsFold(e.Name, search) || containsFold(e.Description, search) || anyContainsFold(e.Tags, search) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func isActive(filter string) bool {
	return filter != "" && filter != All
}

// containsFold reports whether s contains the already lower-cased substr ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func anyContainsFold(values []string, substr string) bool {
	for _, v := range values {
		if containsFold(v, substr) {
			return true
		}
	}
	return false
}
