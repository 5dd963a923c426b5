package models

import "time"

type CaseStatus string

const (
	CaseStatusOpen       CaseStatus = "Open"
	CaseStatusInProgress CaseStatus = "In-Progress"
	CaseStatusClosed     CaseStatus = "Closed"
)

// CaseStatuses lists the statuses in the order they are offered in forms and filters.
var CaseStatuses = []CaseStatus{CaseStatusOpen, CaseStatusInProgress, CaseStatusClosed} //nolint:gochecknoglobals // constant list

type Visibility string

const (
	VisibilityPublic  Visibility = "Public"
	VisibilityPrivate Visibility = "Private"
)

var Visibilities = []Visibility{VisibilityPublic, VisibilityPrivate} //nolint:gochecknoglobals // constant list

// Case is a registered First Information Report and the investigation that follows it.
type Case struct {
	ID                   string     `db:"id"                    json:"id"`
	FIRNumber            string     `db:"fir_number"            json:"firNumber"`
	Title                string     `db:"title"                 json:"title"`
	Summary              string     `db:"summary"               json:"summary"`
	Petitioner           string     `db:"petitioner"            json:"petitioner"`
	Accused              string     `db:"accused"               json:"accused"`
	InvestigatingOfficer string     `db:"investigating_officer" json:"investigatingOfficer"`
	RegisteredDate       time.Time  `db:"registered_date"       json:"registeredDate"`
	Status               CaseStatus `db:"status"                json:"status"`
	Visibility           Visibility `db:"visibility"            json:"visibility"`
	Location             string     `db:"location"              json:"location"`
	Description          string     `db:"description"           json:"description,omitempty"`
}

// IsPrivate reports whether the case is only visible to signed-in investigators.
func (c Case) IsPrivate() bool {
	return c.Visibility != VisibilityPublic
}
