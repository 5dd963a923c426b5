package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/sqlite"
	"github.com/evidenx/evidenx/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("EVIDENX_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "EVIDENX_SQLITE_URL not set")
		os.Exit(1)
	}

	// Fixtures only go into an empty database so a copy of production keeps its own cases.
	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, true, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	var cases, evidence int
	if err = db.ReadOnly.GetContext(ctx, &cases, `SELECT COUNT(*) FROM cases`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching case count", errors.SlogError(err))
		os.Exit(1)
	}
	if cases == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no cases found, something is likely wrong")
		os.Exit(1)
	}
	if err = db.ReadOnly.GetContext(ctx, &evidence, `SELECT COUNT(*) FROM evidence`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching evidence count", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "case count", slog.Int("cases", cases), slog.Int("evidence", evidence))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
