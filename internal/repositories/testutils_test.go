package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/evidenx/evidenx/internal/sqlite"
	"github.com/evidenx/evidenx/internal/testhelpers"
)

// newTestDB creates a new in-memory database seeded with the demo fixtures.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	db, err := sqlite.NewDatabase(ctx, ":memory:", true, testhelpers.NewLogger(io.Discard))
	if err != nil {
		cancel()
		t.Fatal(err)
	}

	t.Cleanup(func() {
		cancel()
		if err = db.Close(); err != nil {
			t.Error(err)
		}
	})

	return db
}
