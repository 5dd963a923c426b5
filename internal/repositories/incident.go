package repositories

import (
	"context"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/sqlite"
)

type IncidentRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewIncidentRepository(db *sqlite.Database, logger *slog.Logger) *IncidentRepository {
	return &IncidentRepository{
		db:     db,
		logger: logger.With("source", "IncidentRepository"),
	}
}

// Actors returns the lanes of the incident reconstruction in display order.
func (r *IncidentRepository) Actors(ctx context.Context, caseID string) ([]models.Actor, error) {
	actors := []models.Actor{}
	stmt := `SELECT id, case_id, "order", name, color, type FROM actors WHERE case_id = ? ORDER BY "order"`
	if err := r.db.ReadOnly.SelectContext(ctx, &actors, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select actors", slog.String("case_id", caseID))
	}
	return actors, nil
}

// Events returns the observations of the incident ordered by date and time.
func (r *IncidentRepository) Events(ctx context.Context, caseID string) ([]models.IncidentEvent, error) {
	events := []models.IncidentEvent{}
	stmt := `SELECT id, case_id, time, duration, actor_id, day AS "date.day", month AS "date.month", title, type,
       confidence, evidence, description
FROM incident_events
WHERE case_id = ?
ORDER BY month, day, time, id`
	if err := r.db.ReadOnly.SelectContext(ctx, &events, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select incident events", slog.String("case_id", caseID))
	}
	return events, nil
}
