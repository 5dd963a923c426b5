package models

type ActorType string

const (
	ActorTypeSuspect  ActorType = "suspect"
	ActorTypeVictim   ActorType = "victim"
	ActorTypeWitness  ActorType = "witness"
	ActorTypeLocation ActorType = "location"
)

// Actor is a person or place that has its own lane in the incident reconstruction.
type Actor struct {
	ID     string    `db:"id"      json:"id"`
	CaseID string    `db:"case_id" json:"-"`
	Order  int       `db:"order"   json:"-"`
	Name   string    `db:"name"    json:"name"`
	Color  string    `db:"color"   json:"color"`
	Type   ActorType `db:"type"    json:"type"`
}

type IncidentEventType string

const (
	IncidentEventTypeVideo    IncidentEventType = "video"
	IncidentEventTypeAudio    IncidentEventType = "audio"
	IncidentEventTypeWitness  IncidentEventType = "witness"
	IncidentEventTypeLocation IncidentEventType = "location"
)

// DayOfMonth identifies a calendar day without a year, months are 1-based.
type DayOfMonth struct {
	Day   int `db:"day"   json:"day"`
	Month int `db:"month" json:"month"`
}

// IncidentEvent is an observation of an actor during the incident.
//
// Time and Duration are in fractional hours, e.g. 11.5 is 11:30.
type IncidentEvent struct {
	ID          int               `db:"id"          json:"id"`
	CaseID      string            `db:"case_id"     json:"-"`
	Time        float64           `db:"time"        json:"time"`
	Duration    float64           `db:"duration"    json:"duration"`
	Actor       string            `db:"actor_id"    json:"actor"`
	Date        DayOfMonth        `db:"date"        json:"date"`
	Title       string            `db:"title"       json:"title"`
	Type        IncidentEventType `db:"type"        json:"type"`
	Confidence  int               `db:"confidence"  json:"confidence"`
	Evidence    string            `db:"evidence"    json:"evidence"`
	Description string            `db:"description" json:"description"`
}

// End returns the time the event ends in fractional hours.
func (e IncidentEvent) End() float64 {
	return e.Time + e.Duration
}
