// Package chat implements the assistant panels of the case desk.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evidenx/evidenx/internal/broker"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/knowledge"
	"github.com/evidenx/evidenx/internal/logging"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/google/uuid"
)

// FailureMessage replaces the answer when the knowledge base could not be reached.
const FailureMessage = "Sorry, I couldn't fetch an answer right now. Please try again."

var ErrEmptyQuestion = errors.NewSentinel("empty question")

const (
	defaultAnswerTimeout = 2 * time.Minute
	// defaultSendTimeout is how long the producer waits for the SSE consumer before it stops streaming.
	defaultSendTimeout = 10 * time.Second
)

type messageStore interface {
	ListByCase(ctx context.Context, caseID string) ([]models.ChatMessage, error)
	Get(ctx context.Context, caseID string, id string) (models.ChatMessage, error)
	Append(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)
	Complete(ctx context.Context, message models.ChatMessage) error
}

// Assistant answers case questions in the background and streams the answers through the broker.
type Assistant struct {
	querier       knowledge.Querier
	messages      messageStore
	broker        *broker.ChannelBroker[string, string]
	logger        *slog.Logger
	answerTimeout time.Duration
	sendTimeout   time.Duration
	now           func() time.Time
}

func NewAssistant(
	querier knowledge.Querier,
	messages messageStore,
	b *broker.ChannelBroker[string, string],
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		querier:       querier,
		messages:      messages,
		broker:        b,
		logger:        logger.With("source", "Assistant"),
		answerTimeout: defaultAnswerTimeout,
		sendTimeout:   defaultSendTimeout,
		now:           time.Now,
	}
}

// History returns the chat history of the case, oldest first.
func (a *Assistant) History(ctx context.Context, caseID string) ([]models.ChatMessage, error) {
	messages, err := a.messages.ListByCase(ctx, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "list chat history")
	}
	return messages, nil
}

// Ask stores the question and starts answering it. The returned message is pending until the answer is
// complete; use Stream to follow it.
func (a *Assistant) Ask(ctx context.Context, caseID string, question string) (models.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.ChatMessage{}, ErrEmptyQuestion
	}
	message, err := a.messages.Append(ctx, models.ChatMessage{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Query:     question,
		CreatedAt: a.now().UTC(),
	})
	if err != nil {
		return models.ChatMessage{}, errors.Wrap(err, "append question")
	}

	deltas := make(chan string)
	a.broker.Publish(ctx, message.ID, deltas)
	// The answer outlives the request that asked the question.
	go a.answer(logging.WithAttrs(context.WithoutCancel(ctx), slog.String("message_id", message.ID)), message, deltas)
	return message, nil
}

func (a *Assistant) answer(ctx context.Context, message models.ChatMessage, deltas chan string) {
	defer a.broker.Unpublish(message.ID)
	defer close(deltas)
	defer func() {
		if r := recover(); r != nil {
			a.logger.LogAttrs(ctx, slog.LevelError, "panic while answering",
				slog.String("panic", fmt.Sprint(r)))
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, a.answerTimeout)
	defer cancel()

	consumerGone := false
	send := func(delta string) {
		if consumerGone {
			return
		}
		timer := time.NewTimer(a.sendTimeout)
		defer timer.Stop()
		select {
		case deltas <- delta:
		case <-timer.C:
			consumerGone = true
		case <-queryCtx.Done():
			consumerGone = true
		}
	}

	var (
		answer knowledge.Answer
		err    error
	)
	if streamer, ok := a.querier.(knowledge.StreamingQuerier); ok {
		answer, err = streamer.QueryStream(queryCtx, message.CaseID, message.Query, send)
	} else if answer, err = a.querier.Query(queryCtx, message.CaseID, message.Query); err == nil {
		send(answer.Answer)
	}

	if err != nil || strings.TrimSpace(answer.Answer) == "" {
		if err == nil {
			err = errors.New("empty answer")
		}
		a.logger.LogAttrs(ctx, slog.LevelError, "could not answer question",
			slog.String("case_id", message.CaseID), errors.SlogError(err))
		message.Response = FailureMessage
		message.Timestamps = nil
		message.Failed = true
		send(FailureMessage)
	} else {
		message.Response = answer.Answer
		message.Timestamps = answer.Timestamps
	}

	if err = a.messages.Complete(ctx, message); err != nil {
		a.logger.LogAttrs(ctx, slog.LevelError, "could not store answer", errors.SlogError(err))
	}
}

// Stream calls emit with the answer fragments of a pending message. A message that is already complete, or
// that another consumer is streaming, is emitted in one piece once its producer is done. The final state of the
// message is returned.
func (a *Assistant) Stream(
	ctx context.Context,
	caseID string,
	messageID string,
	emit func(delta string) error,
) (models.ChatMessage, error) {
	message, err := a.messages.Get(ctx, caseID, messageID)
	if err != nil {
		return models.ChatMessage{}, errors.Wrap(err, "get chat message")
	}
	if !message.Pending() {
		return message, errors.Wrap(emit(message.Response), "emit stored answer")
	}

	var (
		deltas chan string
		ok     bool
	)
	// A consumer that is not first waits for the producer to finish, which may take until the answer timeout.
	select {
	case deltas, ok = <-a.broker.Subscribe(ctx, messageID):
	case <-ctx.Done():
		return models.ChatMessage{}, errors.Wrap(ctx.Err(), "wait for answer")
	}
	if ok {
		received := false
		for delta := range deltas {
			received = true
			if err = emit(delta); err != nil {
				// Drain so that the producer is not left waiting on a gone consumer.
				go func() {
					for range deltas { //nolint:revive // draining
					}
				}()
				return models.ChatMessage{}, errors.Wrap(err, "emit answer delta")
			}
		}
		if message, err = a.messages.Get(ctx, caseID, messageID); err != nil {
			return models.ChatMessage{}, errors.Wrap(err, "get answered chat message")
		}
		if received || message.Pending() {
			return message, nil
		}
		// The producer gave up streaming before this consumer arrived.
		return message, errors.Wrap(emit(message.Response), "emit stored answer")
	}

	if message, err = a.messages.Get(ctx, caseID, messageID); err != nil {
		return models.ChatMessage{}, errors.Wrap(err, "get answered chat message")
	}
	if message.Pending() {
		// The producer is gone without completing the message, e.g. after a restart.
		return message, nil
	}
	return message, errors.Wrap(emit(message.Response), "emit stored answer")
}
