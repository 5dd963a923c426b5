package repositories

import (
	"context"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/sqlite"
)

type ComparisonRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewComparisonRepository(db *sqlite.Database, logger *slog.Logger) *ComparisonRepository {
	return &ComparisonRepository{
		db:     db,
		logger: logger.With("source", "ComparisonRepository"),
	}
}

// ListByCase returns the audio comparisons of a case with their witnesses and analysis rows.
func (r *ComparisonRepository) ListByCase(ctx context.Context, caseID string) ([]models.AudioComparison, error) {
	var (
		comparisons []models.AudioComparison
		witnesses   []models.Witness
		items       []models.AnalysisItem
		err         error
	)
	stmt := `SELECT id, case_id, media_id1, media_id2, created_at, updated_at
FROM audio_comparisons
WHERE case_id = ?
ORDER BY created_at, id`
	if err = r.db.ReadOnly.SelectContext(ctx, &comparisons, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select comparisons", slog.String("case_id", caseID))
	}

	stmt = `SELECT w.id, w.comparison_id, w."order", w.witness_name, w.witness_image, w.audio_id, w.summary,
       w.transcript, w.contradictions, w.similarities, w.gray_areas
FROM witnesses w
JOIN audio_comparisons c ON c.id = w.comparison_id
WHERE c.case_id = ?
ORDER BY w.comparison_id, w."order"`
	if err = r.db.ReadOnly.SelectContext(ctx, &witnesses, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select witnesses", slog.String("case_id", caseID))
	}

	stmt = `SELECT a.comparison_id, a."order", a.topic, a.witness1, a.witness2, a.witness3, a.status, a.details,
       a.confidence, a.importance
FROM analysis_items a
JOIN audio_comparisons c ON c.id = a.comparison_id
WHERE c.case_id = ?
ORDER BY a.comparison_id, a."order"`
	if err = r.db.ReadOnly.SelectContext(ctx, &items, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select analysis items", slog.String("case_id", caseID))
	}

	byID := make(map[string]*models.AudioComparison, len(comparisons))
	for i := range comparisons {
		comparisons[i].Witnesses = []models.Witness{}
		comparisons[i].DetailedAnalysis = []models.AnalysisItem{}
		byID[comparisons[i].ID] = &comparisons[i]
	}
	for _, w := range witnesses {
		if c, ok := byID[w.ComparisonID]; ok {
			c.Witnesses = append(c.Witnesses, w)
		}
	}
	for _, item := range items {
		if c, ok := byID[item.ComparisonID]; ok {
			c.DetailedAnalysis = append(c.DetailedAnalysis, item)
		}
	}

	if comparisons == nil {
		comparisons = []models.AudioComparison{}
	}
	return comparisons, nil
}
