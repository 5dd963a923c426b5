package repositories

import (
	"context"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/sqlite"
)

type TimelineRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewTimelineRepository(db *sqlite.Database, logger *slog.Logger) *TimelineRepository {
	return &TimelineRepository{
		db:     db,
		logger: logger.With("source", "TimelineRepository"),
	}
}

// ListByCase returns the timeline events of a case in chronological order.
func (r *TimelineRepository) ListByCase(ctx context.Context, caseID string) ([]models.TimelineEvent, error) {
	events := []models.TimelineEvent{}
	stmt := `SELECT id, case_id, timestamp, title, description, evidence_id, evidence_type, source
FROM timeline_events
WHERE case_id = ?
ORDER BY timestamp, id`
	if err := r.db.ReadOnly.SelectContext(ctx, &events, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select timeline events", slog.String("case_id", caseID))
	}
	return events, nil
}

// Add appends an event to the case timeline.
func (r *TimelineRepository) Add(ctx context.Context, event models.TimelineEvent) error {
	stmt := `INSERT INTO timeline_events (id, case_id, timestamp, title, description, evidence_id, evidence_type, source)
VALUES (:id, :case_id, :timestamp, :title, :description, :evidence_id, :evidence_type, :source)`
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, event); err != nil {
		return errors.Wrap(translate(err), "insert timeline event", slog.String("case_id", event.CaseID))
	}
	return nil
}
