package knowledge

import (
	"context"

	"github.com/evidenx/evidenx/internal/caseapi"
	"github.com/evidenx/evidenx/internal/errors"
)

type KnowledgeBase interface {
	QueryKnowledgeBase(ctx context.Context, caseID string, query string) (caseapi.KnowledgeAnswer, error)
}

// RemoteQuerier asks the knowledge base of the case backend.
type RemoteQuerier struct {
	api KnowledgeBase
}

func NewRemoteQuerier(api KnowledgeBase) *RemoteQuerier {
	return &RemoteQuerier{api: api}
}

func (q *RemoteQuerier) Query(ctx context.Context, caseID string, question string) (Answer, error) {
	reply, err := q.api.QueryKnowledgeBase(ctx, caseID, question)
	if err != nil {
		return Answer{}, errors.Wrap(err, "query remote knowledge base")
	}
	return Answer{
		Query:      question,
		Answer:     reply.Text(),
		Timestamps: reply.Seconds(),
	}, nil
}
