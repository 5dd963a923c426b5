package repositories

import (
	"context"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/sqlite"
)

const caseColumns = `id, fir_number, title, summary, petitioner, accused, investigating_officer, registered_date,
       status, visibility, location, description`

type CaseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(db *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger.With("source", "CaseRepository"),
	}
}

// List returns all cases, most recently registered first.
func (r *CaseRepository) List(ctx context.Context) ([]models.Case, error) {
	cases := []models.Case{}
	stmt := `SELECT ` + caseColumns + ` FROM cases ORDER BY registered_date DESC, id`
	if err := r.db.ReadOnly.SelectContext(ctx, &cases, stmt); err != nil {
		return nil, errors.Wrap(err, "select cases")
	}
	return cases, nil
}

// Get returns the case or ErrNotFound.
func (r *CaseRepository) Get(ctx context.Context, id string) (models.Case, error) {
	var c models.Case
	stmt := `SELECT ` + caseColumns + ` FROM cases WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &c, stmt, id); err != nil {
		return models.Case{}, errors.Wrap(translate(err), "get case", slog.String("case_id", id))
	}
	return c, nil
}

// Create registers a new case. A second case with the same FIR number fails with ErrDuplicate.
func (r *CaseRepository) Create(ctx context.Context, c models.Case) error {
	stmt := `INSERT INTO cases (` + caseColumns + `)
VALUES (:id, :fir_number, :title, :summary, :petitioner, :accused, :investigating_officer, :registered_date,
        :status, :visibility, :location, :description)`
	if _, err := r.db.ReadWrite.NamedExecContext(ctx, stmt, c); err != nil {
		return errors.Wrap(translate(err), "insert case", slog.String("fir_number", c.FIRNumber))
	}
	return nil
}
