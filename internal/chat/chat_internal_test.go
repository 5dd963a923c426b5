package chat

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/evidenx/evidenx/internal/broker"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/knowledge"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/repositories"
	"github.com/evidenx/evidenx/internal/sqlite"
	"github.com/evidenx/evidenx/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	answer knowledge.Answer
	err    error
}

func (q fakeQuerier) Query(context.Context, string, string) (knowledge.Answer, error) {
	return q.answer, q.err
}

type fakeStreamer struct {
	fakeQuerier
}

func (q fakeStreamer) QueryStream(
	_ context.Context,
	_ string,
	_ string,
	onDelta func(string),
) (knowledge.Answer, error) {
	if q.err != nil {
		return knowledge.Answer{}, q.err
	}
	for _, word := range strings.SplitAfter(q.answer.Answer, " ") {
		onDelta(word)
	}
	return q.answer, nil
}

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

func newTestAssistant(t *testing.T, querier knowledge.Querier) (*Assistant, *repositories.ChatRepository) {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	messages := repositories.NewChatRepository(newTestDB(t), logger)
	b := broker.NewChannelBroker[string, string]()
	go b.Start()
	t.Cleanup(b.Stop)
	a := NewAssistant(querier, messages, b, logger)
	a.sendTimeout = 200 * time.Millisecond
	return a, messages
}

func collect(t *testing.T, a *Assistant, message models.ChatMessage) (string, models.ChatMessage) {
	t.Helper()
	var sb strings.Builder
	final, err := a.Stream(context.Background(), message.CaseID, message.ID, func(delta string) error {
		sb.WriteString(delta)
		return nil
	})
	require.NoError(t, err)
	return sb.String(), final
}

func TestAssistant_streamsAnswer(t *testing.T) {
	a, _ := newTestAssistant(t, fakeStreamer{fakeQuerier{answer: knowledge.Answer{
		Answer:     "The car leaves at [06:38].",
		Timestamps: []float64{398},
	}}})

	message, err := a.Ask(context.Background(), "1", "  When does the car leave? ")
	require.NoError(t, err)
	assert.Equal(t, "When does the car leave?", message.Query)
	assert.True(t, message.Pending())

	streamed, final := collect(t, a, message)
	assert.Equal(t, "The car leaves at [06:38].", streamed)
	assert.Equal(t, "The car leaves at [06:38].", final.Response)
	assert.Equal(t, models.Seconds{398}, final.Timestamps)
	assert.False(t, final.Failed)

	// A late consumer gets the stored answer in one piece.
	streamed, _ = collect(t, a, message)
	assert.Equal(t, "The car leaves at [06:38].", streamed)
}

func TestAssistant_nonStreamingQuerier(t *testing.T) {
	a, _ := newTestAssistant(t, fakeQuerier{answer: knowledge.Answer{Answer: "Nobody."}})

	message, err := a.Ask(context.Background(), "1", "Who?")
	require.NoError(t, err)
	streamed, final := collect(t, a, message)
	assert.Equal(t, "Nobody.", streamed)
	assert.Equal(t, "Nobody.", final.Response)
}

func TestAssistant_failure(t *testing.T) {
	a, messages := newTestAssistant(t, fakeStreamer{fakeQuerier{err: errors.NewSentinel("backend down")}})

	message, err := a.Ask(context.Background(), "1", "Who?")
	require.NoError(t, err)
	streamed, final := collect(t, a, message)
	assert.Equal(t, FailureMessage, streamed)
	assert.True(t, final.Failed)

	history, err := messages.ListByCase(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, FailureMessage, history[0].Response)
}

func TestAssistant_emptyAnswerIsFailure(t *testing.T) {
	a, _ := newTestAssistant(t, fakeQuerier{answer: knowledge.Answer{Answer: "  "}})

	message, err := a.Ask(context.Background(), "1", "Who?")
	require.NoError(t, err)
	_, final := collect(t, a, message)
	assert.Equal(t, FailureMessage, final.Response)
}

func TestAssistant_emptyQuestion(t *testing.T) {
	a, _ := newTestAssistant(t, fakeQuerier{})

	_, err := a.Ask(context.Background(), "1", "   ")
	require.ErrorIs(t, err, ErrEmptyQuestion)

	history, err := a.History(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAssistant_answersWithoutConsumer(t *testing.T) {
	a, messages := newTestAssistant(t, fakeStreamer{fakeQuerier{answer: knowledge.Answer{Answer: "Two people."}}})
	ctx := context.Background()

	message, err := a.Ask(ctx, "1", "Who?")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		stored, getErr := messages.Get(ctx, "1", message.ID)
		return getErr == nil && !stored.Pending()
	}, 5*time.Second, 20*time.Millisecond)

	streamed, _ := collect(t, a, message)
	assert.Equal(t, "Two people.", streamed)
}

type blockingQuerier struct {
	release chan struct{}
}

func (q blockingQuerier) Query(ctx context.Context, _ string, _ string) (knowledge.Answer, error) {
	select {
	case <-q.release:
		return knowledge.Answer{Answer: "Late."}, nil
	case <-ctx.Done():
		return knowledge.Answer{}, ctx.Err()
	}
}

func TestAssistant_waitingConsumerLeaves(t *testing.T) {
	release := make(chan struct{})
	a, _ := newTestAssistant(t, blockingQuerier{release: release})
	t.Cleanup(func() { close(release) })

	message, err := a.Ask(context.Background(), "1", "Who was at the gate?")
	require.NoError(t, err)

	// The first consumer takes the live answer.
	_, ok := <-a.broker.Subscribe(context.Background(), message.ID)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, streamErr := a.Stream(ctx, message.CaseID, message.ID, func(string) error { return nil })
		done <- streamErr
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err = <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("stream kept waiting after its request was cancelled")
	}
}

func TestAssistant_historyOrder(t *testing.T) {
	a, _ := newTestAssistant(t, fakeQuerier{answer: knowledge.Answer{Answer: "Yes."}})
	ctx := context.Background()

	first, err := a.Ask(ctx, "1", "First?")
	require.NoError(t, err)
	collect(t, a, first)
	second, err := a.Ask(ctx, "1", "Second?")
	require.NoError(t, err)
	collect(t, a, second)

	history, err := a.History(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "First?", history[0].Query)
	assert.Equal(t, "Second?", history[1].Query)
}

func TestAnswerVideo(t *testing.T) {
	detections := []models.Detection{
		{Query: "person in pink top", Response: "Found person in pink top at following timestamps:", Timestamps: models.Seconds{398, 613}},
		{Query: "leave the room", Response: "Seems like she left at 11:14:15", Timestamps: models.Seconds{812}},
	}
	tests := []struct {
		name           string
		query          string
		wantResponse   string
		wantTimestamps []float64
	}{
		{name: "exact", query: "person in pink top", wantResponse: detections[0].Response, wantTimestamps: []float64{398, 613}},
		{name: "case-insensitive part", query: "Pink Top", wantResponse: detections[0].Response, wantTimestamps: []float64{398, 613}},
		{name: "question containing query", query: "When did she leave the room?", wantResponse: detections[1].Response, wantTimestamps: []float64{812}},
		{name: "unknown", query: "red car", wantResponse: NoDetections},
		{name: "blank", query: "  ", wantResponse: NoDetections},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnswerVideo(detections, tt.query)
			assert.Equal(t, tt.wantResponse, got.Response)
			assert.Equal(t, tt.wantTimestamps, got.Timestamps)
		})
	}
}

func TestVideoFlags(t *testing.T) {
	flags := VideoFlags([]VideoExchange{
		{Query: "pink", Timestamps: []float64{613, 398}},
		{Query: "unknown", Response: NoDetections},
		{Query: "leave", Timestamps: []float64{812}},
	}, 1000)
	require.Len(t, flags, 3)
	assert.InDelta(t, 39.8, flags[0].Percent, 0.001)
	assert.Equal(t, "Result 1", flags[0].Label)
	assert.Equal(t, "Result 2", flags[2].Label)
}

func TestFollowUps(t *testing.T) {
	ctx := context.Background()
	f := NewFollowUps(repositories.NewMediaRepository(newTestDB(t), testhelpers.NewLogger(io.Discard)))
	evidenceID := "22c99559-efca-4e6b-a0df-75a2a3d15ba9"

	questions, err := f.List(ctx, evidenceID)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	require.NoError(t, f.Add(ctx, evidenceID, "   "))
	require.NoError(t, f.Add(ctx, evidenceID, " Where was the guard? "))
	questions, err = f.List(ctx, evidenceID)
	require.NoError(t, err)
	require.Len(t, questions, 4)
	assert.Equal(t, "Where was the guard?", questions[3].Question)

	require.NoError(t, f.Remove(ctx, evidenceID, questions[0].ID))
	questions, err = f.List(ctx, evidenceID)
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}
