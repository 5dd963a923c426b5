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

func TestChatRepository(t *testing.T) {
	t.Parallel()
	repo := repositories.NewChatRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	history, err := repo.ListByCase(ctx, "1")
	require.NoError(t, err)
	require.Empty(t, history)

	first, err := repo.Append(ctx, models.ChatMessage{
		ID:        "m1",
		CaseID:    "1",
		Query:     "Who was last seen with Ananya?",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, 0, first.Order)

	second, err := repo.Append(ctx, models.ChatMessage{
		ID:        "m2",
		CaseID:    "1",
		Query:     "When did she leave?",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Order)

	first.Response = "Sameer and Anuj."
	first.Timestamps = models.Seconds{398, 613}
	require.NoError(t, repo.Complete(ctx, first))

	history, err = repo.ListByCase(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "Sameer and Anuj.", history[0].Response)
	require.Equal(t, models.Seconds{398, 613}, history[0].Timestamps)
	require.Equal(t, "m2", history[1].ID)

	got, err := repo.Get(ctx, "1", "m2")
	require.NoError(t, err)
	require.Empty(t, got.Response)
	require.False(t, got.Failed)

	// Chat histories are per case.
	other, err := repo.Append(ctx, models.ChatMessage{ID: "m3", CaseID: "2", Query: "Any plates?", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, 0, other.Order)

	require.ErrorIs(t, repo.Complete(ctx, models.ChatMessage{ID: "missing", CaseID: "1"}), repositories.ErrNotFound)
}
