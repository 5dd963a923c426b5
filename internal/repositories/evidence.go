package repositories

import (
	"context"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/sqlite"
)

const evidenceColumns = `id, case_id, type, name, url, description, upload_date, file_size, tags, thumbnail, duration,
       processing_status, transcript`

type EvidenceRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewEvidenceRepository(db *sqlite.Database, logger *slog.Logger) *EvidenceRepository {
	return &EvidenceRepository{
		db:     db,
		logger: logger.With("source", "EvidenceRepository"),
	}
}

// ListByCase returns the evidence of a case in upload order.
func (r *EvidenceRepository) ListByCase(ctx context.Context, caseID string) ([]models.Evidence, error) {
	evidence := []models.Evidence{}
	stmt := `SELECT ` + evidenceColumns + ` FROM evidence WHERE case_id = ? ORDER BY upload_date, rowid`
	if err := r.db.ReadOnly.SelectContext(ctx, &evidence, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select evidence", slog.String("case_id", caseID))
	}
	return evidence, nil
}

// Get returns the evidence of the given case or ErrNotFound.
func (r *EvidenceRepository) Get(ctx context.Context, caseID string, evidenceID string) (models.Evidence, error) {
	var e models.Evidence
	stmt := `SELECT ` + evidenceColumns + ` FROM evidence WHERE case_id = ? AND id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &e, stmt, caseID, evidenceID); err != nil {
		return models.Evidence{}, errors.Wrap(translate(err), "get evidence",
			slog.String("case_id", caseID), slog.String("evidence_id", evidenceID))
	}
	return e, nil
}

// Create attaches new evidence to a case.
func (r *EvidenceRepository) Create(ctx context.Context, e models.Evidence) error {
	stmt := `INSERT INTO evidence (` + evidenceColumns + `)
VALUES (:id, :case_id, :type, :name, :url, :description, :upload_date, :file_size, :tags, :thumbnail, :duration,
        :processing_status, :transcript)`
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, e); err != nil {
		return errors.Wrap(translate(err), "insert evidence", slog.String("evidence_id", e.ID))
	}
	return nil
}
