package knowledge

import (
	"context"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"golang.org/x/sync/errgroup"
)

// CaseFile is everything the assistant knows about a case.
type CaseFile struct {
	Case     models.Case
	Evidence []models.Evidence
	Timeline []models.TimelineEvent
}

type CaseFileLoader interface {
	LoadCaseFile(ctx context.Context, caseID string) (CaseFile, error)
}

type caseGetter interface {
	Get(ctx context.Context, id string) (models.Case, error)
}

type evidenceLister interface {
	ListByCase(ctx context.Context, caseID string) ([]models.Evidence, error)
}

type timelineLister interface {
	ListByCase(ctx context.Context, caseID string) ([]models.TimelineEvent, error)
}

// RepositoryLoader loads the case file from the local repositories concurrently.
type RepositoryLoader struct {
	Cases    caseGetter
	Evidence evidenceLister
	Timeline timelineLister
}

func (l RepositoryLoader) LoadCaseFile(ctx context.Context, caseID string) (CaseFile, error) {
	var file CaseFile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		file.Case, err = l.Cases.Get(gctx, caseID)
		return err //nolint:wrapcheck // wrapped below
	})
	g.Go(func() error {
		var err error
		file.Evidence, err = l.Evidence.ListByCase(gctx, caseID)
		return err //nolint:wrapcheck // wrapped below
	})
	g.Go(func() error {
		var err error
		file.Timeline, err = l.Timeline.ListByCase(gctx, caseID)
		return err //nolint:wrapcheck // wrapped below
	})
	if err := g.Wait(); err != nil {
		return CaseFile{}, errors.Wrap(err, "load case file", slog.String("case_id", caseID))
	}
	return file, nil
}
