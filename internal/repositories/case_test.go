package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/repositories"
	"github.com/evidenx/evidenx/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestCaseRepository_List(t *testing.T) {
	t.Parallel()
	repo := repositories.NewCaseRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	cases, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 3)
	// Most recently registered first.
	require.Equal(t, "FIR/2024/003", cases[0].FIRNumber)
	require.Equal(t, "FIR/2024/001", cases[2].FIRNumber)
}

func TestCaseRepository_Get(t *testing.T) {
	t.Parallel()
	repo := repositories.NewCaseRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr error
	}{
		{name: "existing", id: "1", want: "Lady Missing from Kochi Office"},
		{name: "missing", id: "does-not-exist", wantErr: repositories.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := repo.Get(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, c.Title)
			require.Equal(t, models.CaseStatusInProgress, c.Status)
			require.Equal(t, models.VisibilityPrivate, c.Visibility)
			require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), c.RegisteredDate.UTC())
		})
	}
}

func TestCaseRepository_Create(t *testing.T) {
	t.Parallel()
	repo := repositories.NewCaseRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	c := models.Case{
		ID:                   "new-case",
		FIRNumber:            "FIR/2024/100",
		Title:                "Chain Snatching Near Market",
		Summary:              "Gold chain snatched by two men on a motorcycle.",
		Petitioner:           "Ms. Lakshmi Nair",
		Accused:              "Unknown",
		InvestigatingOfficer: "Sub-Inspector Anil",
		RegisteredDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:               models.CaseStatusOpen,
		Visibility:           models.VisibilityPublic,
		Location:             "Ernakulam",
		Description:          "",
	}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, "new-case")
	require.NoError(t, err)
	require.Equal(t, c.FIRNumber, got.FIRNumber)
	require.Equal(t, c.RegisteredDate, got.RegisteredDate.UTC())

	c.ID = "another-case"
	require.ErrorIs(t, repo.Create(ctx, c), repositories.ErrDuplicate)
}
