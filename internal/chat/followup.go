package chat

import (
	"context"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
)

type followUpStore interface {
	FollowUpQuestions(ctx context.Context, evidenceID string) ([]models.FollowUpQuestion, error)
	AddFollowUpQuestion(ctx context.Context, evidenceID string, question string) error
	RemoveFollowUpQuestion(ctx context.Context, evidenceID string, id int) error
}

// FollowUps keeps the suggested follow-up interview questions of audio evidence.
type FollowUps struct {
	store followUpStore
}

func NewFollowUps(store followUpStore) *FollowUps {
	return &FollowUps{store: store}
}

func (f *FollowUps) List(ctx context.Context, evidenceID string) ([]models.FollowUpQuestion, error) {
	questions, err := f.store.FollowUpQuestions(ctx, evidenceID)
	if err != nil {
		return nil, errors.Wrap(err, "list follow-up questions")
	}
	return questions, nil
}

// Add appends a question. Blank questions are ignored.
func (f *FollowUps) Add(ctx context.Context, evidenceID string, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}
	return errors.Wrap(f.store.AddFollowUpQuestion(ctx, evidenceID, question), "add follow-up question")
}

func (f *FollowUps) Remove(ctx context.Context, evidenceID string, id int) error {
	return errors.Wrap(f.store.RemoveFollowUpQuestion(ctx, evidenceID, id), "remove follow-up question")
}
