package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evidenx/evidenx/internal/chat"
	"github.com/evidenx/evidenx/internal/contexthelpers"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/logging"
	"github.com/evidenx/evidenx/internal/repositories"
)

// streamWriteTimeout bounds a single SSE write so that a stalled client doesn't hold the stream forever.
const streamWriteTimeout = 30 * time.Second

func (app *application) askAssistant(w http.ResponseWriter, r *http.Request) {
	c, r, ok := app.loadCase(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	h := app.htmx.NewHandler(w, r)
	app.sessionManager.Put(ctx, assistantSessionKey.scoped(c.ID), true)

	message, err := app.assistant.Ask(ctx, c.ID, r.PostForm.Get("question"))
	if errors.Is(err, chat.ErrEmptyQuestion) {
		if h.Request().HxRequest {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, "/cases/"+c.ID+"#assistant", http.StatusSeeOther)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "ask assistant"))
		return
	}

	if !h.Request().HxRequest {
		http.Redirect(w, r, "/cases/"+c.ID+"#assistant", http.StatusSeeOther)
		return
	}
	evidence, err := app.evidence.ListByCase(ctx, c.ID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list evidence"))
		return
	}
	view := chatMessageView{ChatMessage: message, CaseID: c.ID, VideoID: firstVideoID(evidence)}
	app.renderFragment(w, r, http.StatusOK, "case", "chat-message", view)
}

// streamAnswer streams the answer of a chat message as server-sent events.
//
// Each answer fragment is sent as a "delta" event. The stream ends with a "done" event carrying the final message
// as JSON, which tells the client whether the answer failed.
func (app *application) streamAnswer(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	messageID := r.PathValue("messageID")
	ctx := logging.WithAttrs(r.Context(), slog.String("case_id", caseID), slog.String("message_id", messageID))
	r = r.WithContext(ctx)

	c, err := app.cases.Get(ctx, caseID)
	if errors.Is(err, repositories.ErrNotFound) ||
		(err == nil && c.IsPrivate() && !contexthelpers.IsAuthenticated(ctx)) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get case"))
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(event string, data string) error {
		if err := rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			return errors.Wrap(err, "set write deadline")
		}
		var b strings.Builder
		fmt.Fprintf(&b, "event: %s\n", event)
		for _, line := range strings.Split(data, "\n") {
			fmt.Fprintf(&b, "data: %s\n", line)
		}
		b.WriteString("\n")
		if _, err := w.Write([]byte(b.String())); err != nil {
			return errors.Wrap(err, "write event", slog.String("event", event))
		}
		return errors.Wrap(rc.Flush(), "flush event")
	}

	message, err := app.assistant.Stream(ctx, c.ID, messageID, func(delta string) error {
		return send("delta", delta)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "stream answer", errors.SlogError(err))
		return
	}

	final, err := json.Marshal(message)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "marshal chat message", errors.SlogError(err))
		return
	}
	if err = send("done", string(final)); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "send done event", errors.SlogError(err))
	}
}
