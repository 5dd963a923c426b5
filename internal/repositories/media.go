package repositories

import (
	"context"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/sqlite"
)

// MediaRepository holds the scripted assistant data attached to video and audio evidence.
type MediaRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewMediaRepository(db *sqlite.Database, logger *slog.Logger) *MediaRepository {
	return &MediaRepository{
		db:     db,
		logger: logger.With("source", "MediaRepository"),
	}
}

func (r *MediaRepository) Detections(ctx context.Context, evidenceID string) ([]models.Detection, error) {
	detections := []models.Detection{}
	stmt := `SELECT id, evidence_id, query, response, timestamps FROM detections WHERE evidence_id = ? ORDER BY id`
	if err := r.db.ReadOnly.SelectContext(ctx, &detections, stmt, evidenceID); err != nil {
		return nil, errors.Wrap(err, "select detections", slog.String("evidence_id", evidenceID))
	}
	return detections, nil
}

func (r *MediaRepository) DetectionBoxes(ctx context.Context, evidenceID string) ([]models.DetectionBox, error) {
	boxes := []models.DetectionBox{}
	stmt := `SELECT id, evidence_id, time, x, y, width, height, show_for
FROM detection_boxes
WHERE evidence_id = ?
ORDER BY time, id`
	if err := r.db.ReadOnly.SelectContext(ctx, &boxes, stmt, evidenceID); err != nil {
		return nil, errors.Wrap(err, "select detection boxes", slog.String("evidence_id", evidenceID))
	}
	return boxes, nil
}

func (r *MediaRepository) FollowUpQuestions(ctx context.Context, evidenceID string) ([]models.FollowUpQuestion, error) {
	questions := []models.FollowUpQuestion{}
	stmt := `SELECT id, evidence_id, question FROM follow_up_questions WHERE evidence_id = ? ORDER BY id`
	if err := r.db.ReadOnly.SelectContext(ctx, &questions, stmt, evidenceID); err != nil {
		return nil, errors.Wrap(err, "select follow-up questions", slog.String("evidence_id", evidenceID))
	}
	return questions, nil
}

func (r *MediaRepository) AddFollowUpQuestion(ctx context.Context, evidenceID string, question string) error {
	stmt := `INSERT INTO follow_up_questions (evidence_id, question) VALUES (?, ?)`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt, evidenceID, question); err != nil {
		return errors.Wrap(translate(err), "insert follow-up question", slog.String("evidence_id", evidenceID))
	}
	return nil
}

func (r *MediaRepository) RemoveFollowUpQuestion(ctx context.Context, evidenceID string, id int) error {
	stmt := `DELETE FROM follow_up_questions WHERE evidence_id = ? AND id = ?`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt, evidenceID, id); err != nil {
		return errors.Wrap(err, "delete follow-up question",
			slog.String("evidence_id", evidenceID), slog.Int("question_id", id))
	}
	return nil
}
