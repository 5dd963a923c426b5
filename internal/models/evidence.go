package models

import "time"

type EvidenceType string

const (
	EvidenceTypeDocument EvidenceType = "document"
	EvidenceTypeImage    EvidenceType = "image"
	EvidenceTypeVideo    EvidenceType = "video"
	EvidenceTypeAudio    EvidenceType = "audio"
	EvidenceTypeDigital  EvidenceType = "digital"
)

type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "Pending"
	ProcessingStatusProcessing ProcessingStatus = "Processing"
	ProcessingStatusProcessed  ProcessingStatus = "Processed"
	ProcessingStatusFailed     ProcessingStatus = "Failed"
)

// Evidence is a file attached to a case.
//
// Duration is kept in the clock format it was catalogued with, e.g. "02:34:15" or "08:45".
type Evidence struct {
	ID               string           `db:"id"                json:"id"`
	CaseID           string           `db:"case_id"           json:"caseId"`
	Type             EvidenceType     `db:"type"              json:"type"`
	Name             string           `db:"name"              json:"name"`
	URL              string           `db:"url"               json:"url,omitempty"`
	Description      string           `db:"description"       json:"description"`
	UploadDate       time.Time        `db:"upload_date"       json:"uploadDate"`
	FileSize         string           `db:"file_size"         json:"fileSize"`
	Tags             StringList       `db:"tags"              json:"tags"`
	Thumbnail        string           `db:"thumbnail"         json:"thumbnail,omitempty"`
	Duration         string           `db:"duration"          json:"duration,omitempty"`
	ProcessingStatus ProcessingStatus `db:"processing_status" json:"processingStatus,omitempty"`
	Transcript       string           `db:"transcript"        json:"transcript,omitempty"`
}

func (e Evidence) IsAudio() bool {
	return e.Type == EvidenceTypeAudio
}

func (e Evidence) IsVideo() bool {
	return e.Type == EvidenceTypeVideo
}
