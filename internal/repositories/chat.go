package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/sqlite"
)

type ChatRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewChatRepository(db *sqlite.Database, logger *slog.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger.With("source", "ChatRepository"),
	}
}

// ListByCase returns the chat history of a case, oldest first.
func (r *ChatRepository) ListByCase(ctx context.Context, caseID string) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	stmt := `SELECT id, case_id, "order", query, response, timestamps, failed, created_at
FROM chat_messages
WHERE case_id = ?
ORDER BY "order"`
	if err := r.db.ReadOnly.SelectContext(ctx, &messages, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select chat messages", slog.String("case_id", caseID))
	}
	return messages, nil
}

// Get returns a single chat message or ErrNotFound.
func (r *ChatRepository) Get(ctx context.Context, caseID string, id string) (models.ChatMessage, error) {
	var message models.ChatMessage
	stmt := `SELECT id, case_id, "order", query, response, timestamps, failed, created_at
FROM chat_messages
WHERE case_id = ? AND id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &message, stmt, caseID, id); err != nil {
		return models.ChatMessage{}, errors.Wrap(translate(err), "get chat message", slog.String("message_id", id))
	}
	return message, nil
}

// Append adds the message to the end of the chat history of its case and returns it with its order.
func (r *ChatRepository) Append(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	stmt := `INSERT INTO chat_messages (id, case_id, "order", query, response, timestamps, failed, created_at)
VALUES (@id, @case_id,
        (SELECT COALESCE(MAX("order"), -1) + 1 FROM chat_messages WHERE case_id = @case_id),
        @query, @response, @timestamps, @failed, @created_at)
RETURNING "order"`
	params := []any{
		sql.Named("id", message.ID),
		sql.Named("case_id", message.CaseID),
		sql.Named("query", message.Query),
		sql.Named("response", message.Response),
		sql.Named("timestamps", message.Timestamps),
		sql.Named("failed", message.Failed),
		sql.Named("created_at", message.CreatedAt),
	}
	if err := r.db.ReadWrite.QueryRowContext(ctx, stmt, params...).Scan(&message.Order); err != nil {
		return models.ChatMessage{}, errors.Wrap(translate(err), "insert chat message",
			slog.String("case_id", message.CaseID))
	}
	return message, nil
}

// Complete stores the answer of a pending chat message.
func (r *ChatRepository) Complete(ctx context.Context, message models.ChatMessage) error {
	stmt := `UPDATE chat_messages
SET response = @response, timestamps = @timestamps, failed = @failed
WHERE case_id = @case_id AND id = @id`
	res, err := r.db.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("response", message.Response),
		sql.Named("timestamps", message.Timestamps),
		sql.Named("failed", message.Failed),
		sql.Named("case_id", message.CaseID),
		sql.Named("id", message.ID),
	)
	if err != nil {
		return errors.Wrap(err, "update chat message", slog.String("message_id", message.ID))
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrNotFound, "update chat message", slog.String("message_id", message.ID))
	}
	return nil
}
