package models

import "time"

type TimelineSource string

const (
	TimelineSourceCaseDiary TimelineSource = "case_diary"
	TimelineSourceVideo     TimelineSource = "video"
	TimelineSourceAudio     TimelineSource = "audio"
	TimelineSourceDocument  TimelineSource = "document"
)

var TimelineSources = []TimelineSource{ //nolint:gochecknoglobals // constant list
	TimelineSourceCaseDiary,
	TimelineSourceVideo,
	TimelineSourceAudio,
	TimelineSourceDocument,
}

// TimelineEvent is an entry in the investigation diary of a case, optionally linked to evidence.
type TimelineEvent struct {
	ID           string         `db:"id"            json:"id"`
	CaseID       string         `db:"case_id"       json:"caseId"`
	Timestamp    time.Time      `db:"timestamp"     json:"timestamp"`
	Title        string         `db:"title"         json:"title"`
	Description  string         `db:"description"   json:"description"`
	EvidenceID   string         `db:"evidence_id"   json:"evidenceId,omitempty"`
	EvidenceType EvidenceType   `db:"evidence_type" json:"evidenceType,omitempty"`
	Source       TimelineSource `db:"source"        json:"source"`
}
