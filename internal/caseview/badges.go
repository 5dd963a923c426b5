package caseview

import "github.com/evidenx/evidenx/internal/models"

// StatusClass returns the badge colour class of a case status.
func StatusClass(status models.CaseStatus) string {
	switch status {
	case models.CaseStatusOpen:
		return "badge-blue"
	case models.CaseStatusInProgress:
		return "badge-amber"
	case models.CaseStatusClosed:
		return "badge-green"
	default:
		return "badge-gray"
	}
}

// VisibilityClass returns the badge colour class of a case visibility.
func VisibilityClass(visibility models.Visibility) string {
	switch visibility {
	case models.VisibilityPrivate:
		return "badge-red"
	case models.VisibilityPublic:
		return "badge-purple"
	default:
		return "badge-gray"
	}
}
