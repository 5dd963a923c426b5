package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/timeline"
	"github.com/sashabaranov/go-openai"
)

type completer interface {
	SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
	StreamCompletion(
		ctx context.Context,
		messages []openai.ChatCompletionMessage,
		onDelta func(delta string),
	) (string, error)
}

const systemPrompt = `You are an assistant to a police investigator. Answer only from the case file below.
Be brief and factual. When you refer to a moment in a video or audio recording, cite it as [mm:ss].
If the case file does not contain the answer, say that it does not.`

// AIQuerier answers from a language model grounded on the case file.
type AIQuerier struct {
	client completer
	loader CaseFileLoader
	logger *slog.Logger
}

func NewAIQuerier(client completer, loader CaseFileLoader, logger *slog.Logger) *AIQuerier {
	return &AIQuerier{
		client: client,
		loader: loader,
		logger: logger,
	}
}

func (q *AIQuerier) Query(ctx context.Context, caseID string, question string) (Answer, error) {
	return q.QueryStream(ctx, caseID, question, nil)
}

func (q *AIQuerier) QueryStream(
	ctx context.Context,
	caseID string,
	question string,
	onDelta func(delta string),
) (Answer, error) {
	messages, err := q.messages(ctx, caseID, question)
	if err != nil {
		return Answer{}, err
	}
	var content string
	if onDelta == nil {
		content, err = q.client.SyncCompletion(ctx, messages)
	} else {
		content, err = q.client.StreamCompletion(ctx, messages, onDelta)
	}
	if err != nil {
		return Answer{}, errors.Wrap(err, "complete answer", slog.String("case_id", caseID))
	}
	q.logger.LogAttrs(ctx, slog.LevelDebug, "answered question",
		slog.String("case_id", caseID), slog.Int("answer_length", len(content)))
	return Answer{
		Query:      question,
		Answer:     content,
		Timestamps: timestampsIn(content),
	}, nil
}

func (q *AIQuerier) messages(ctx context.Context, caseID string, question string) ([]openai.ChatCompletionMessage, error) {
	file, err := q.loader.LoadCaseFile(ctx, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "load case file for prompt")
	}
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleSystem, Content: Brief(file)},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}, nil
}

// Brief renders the case file as plain text for the prompt.
func Brief(file CaseFile) string {
	var sb strings.Builder
	c := file.Case
	fmt.Fprintf(&sb, "Case %s: %s\n", c.FIRNumber, c.Title)
	fmt.Fprintf(&sb, "Status: %s. Location: %s. Registered: %s.\n",
		c.Status, c.Location, c.RegisteredDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Petitioner: %s. Accused: %s. Investigating officer: %s.\n",
		c.Petitioner, c.Accused, c.InvestigatingOfficer)
	fmt.Fprintf(&sb, "Summary: %s\n", c.Summary)
	if c.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", c.Description)
	}

	if len(file.Evidence) > 0 {
		sb.WriteString("\nEvidence:\n")
	}
	for _, e := range file.Evidence {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", e.Name, e.Type, e.Description)
		if e.Transcript != "" {
			fmt.Fprintf(&sb, "  Transcript: %s\n", e.Transcript)
		}
	}

	events := timeline.Sort(file.Timeline)
	if len(events) > 0 {
		sb.WriteString("\nTimeline:\n")
	}
	for _, e := range events {
		fmt.Fprintf(&sb, "- %s %s: %s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Title, e.Description)
	}
	return sb.String()
}
