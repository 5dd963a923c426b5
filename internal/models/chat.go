package models

import "time"

// ChatMessage is a question asked from the case assistant and the answer it gave.
//
// Timestamps are offsets in seconds into the video evidence that the answer refers to.
type ChatMessage struct {
	ID         string    `db:"id"         json:"id"`
	CaseID     string    `db:"case_id"    json:"caseId"`
	Order      int       `db:"order"      json:"-"`
	Query      string    `db:"query"      json:"query"`
	Response   string    `db:"response"   json:"response"`
	Timestamps Seconds   `db:"timestamps" json:"timestamps,omitempty"`
	Failed     bool      `db:"failed"     json:"failed,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Pending reports whether the assistant is still working on the answer.
func (m ChatMessage) Pending() bool {
	return m.Response == "" && !m.Failed
}

// Detection is a scripted person detection answer for video evidence.
type Detection struct {
	ID         int     `db:"id"`
	EvidenceID string  `db:"evidence_id"`
	Query      string  `db:"query"`
	Response   string  `db:"response"`
	Timestamps Seconds `db:"timestamps"`
}

// DetectionBox is where a person was detected in a frame of video evidence. The position and size are in percent
// of the frame.
type DetectionBox struct {
	ID         int     `db:"id"`
	EvidenceID string  `db:"evidence_id"`
	Time       float64 `db:"time"`
	X          float64 `db:"x"`
	Y          float64 `db:"y"`
	Width      float64 `db:"width"`
	Height     float64 `db:"height"`
	ShowFor    float64 `db:"show_for"`
}

// FollowUpQuestion is a question suggested for a follow-up interview of an audio witness.
type FollowUpQuestion struct {
	ID         int    `db:"id"`
	EvidenceID string `db:"evidence_id"`
	Question   string `db:"question"`
}
