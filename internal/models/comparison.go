package models

import "time"

type AnalysisStatus string

const (
	AnalysisStatusSimilarity    AnalysisStatus = "similarity"
	AnalysisStatusContradiction AnalysisStatus = "contradiction"
	AnalysisStatusGrayArea      AnalysisStatus = "gray_area"
)

var AnalysisStatuses = []AnalysisStatus{ //nolint:gochecknoglobals // constant list
	AnalysisStatusSimilarity,
	AnalysisStatusContradiction,
	AnalysisStatusGrayArea,
}

type Importance string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// Witness is the processed testimony of one witness recording.
type Witness struct {
	ID             string     `db:"id"             json:"id"`
	ComparisonID   string     `db:"comparison_id"  json:"-"`
	Order          int        `db:"order"          json:"-"`
	Name           string     `db:"witness_name"   json:"witnessName"`
	Image          string     `db:"witness_image"  json:"witnessImage"`
	AudioID        string     `db:"audio_id"       json:"audioId"`
	Summary        string     `db:"summary"        json:"summary"`
	Transcript     string     `db:"transcript"     json:"transcript"`
	Contradictions StringList `db:"contradictions" json:"contradictions"`
	Similarities   StringList `db:"similarities"   json:"similarities"`
	GrayAreas      StringList `db:"gray_areas"     json:"grayAreas"`
}

// AnalysisItem compares the witnesses' statements on a single topic.
type AnalysisItem struct {
	ComparisonID string         `db:"comparison_id" json:"-"`
	Order        int            `db:"order"         json:"-"`
	Topic        string         `db:"topic"         json:"topic"`
	Witness1     string         `db:"witness1"      json:"witness1,omitempty"`
	Witness2     string         `db:"witness2"      json:"witness2,omitempty"`
	Witness3     string         `db:"witness3"      json:"witness3,omitempty"`
	Status       AnalysisStatus `db:"status"        json:"status"`
	Details      string         `db:"details"       json:"details"`
	Confidence   int            `db:"confidence"    json:"confidence,omitempty"`
	Importance   Importance     `db:"importance"    json:"importance,omitempty"`
}

// Statements returns the non-empty witness statements in order.
func (a AnalysisItem) Statements() []string {
	var statements []string
	for _, s := range []string{a.Witness1, a.Witness2, a.Witness3} {
		if s != "" {
			statements = append(statements, s)
		}
	}
	return statements
}

// AudioComparison is the result of comparing two witness recordings of a case.
type AudioComparison struct {
	ID               string         `db:"id"         json:"id"`
	CaseID           string         `db:"case_id"    json:"caseId"`
	MediaID1         string         `db:"media_id1"  json:"mediaId1"`
	MediaID2         string         `db:"media_id2"  json:"mediaId2"`
	Witnesses        []Witness      `db:"-"          json:"witnesses"`
	DetailedAnalysis []AnalysisItem `db:"-"          json:"detailedAnalysis"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}
