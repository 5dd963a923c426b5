package ai_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evidenx/evidenx/internal/ai"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return ai.NewClient(ai.Config{APIKey: "test", BaseURL: server.URL + "/v1"})
}

func TestClient_SyncCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test", r.Header.Get("Authorization"))
		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ai.DefaultModel, req.Model)
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ //nolint:exhaustruct // test
			Choices: []openai.ChatCompletionChoice{{ //nolint:exhaustruct // test
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "The gate."},
			}},
		}))
	})

	content, err := client.SyncCompletion(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "Where?"},
	})
	require.NoError(t, err)
	require.Equal(t, "The gate.", content)
}

func TestClient_StreamCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"The ", "red ", "car."} {
			_, err := fmt.Fprintf(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", delta)
			assert.NoError(t, err)
		}
		_, err := fmt.Fprint(w, "data: [DONE]\n\n")
		assert.NoError(t, err)
	})

	var deltas []string
	content, err := client.StreamCompletion(context.Background(), nil, func(delta string) {
		deltas = append(deltas, delta)
	})
	require.NoError(t, err)
	require.Equal(t, "The red car.", content)
	require.Equal(t, []string{"The ", "red ", "car."}, deltas)
}

func TestClient_SyncCompletion_error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	})
	_, err := client.SyncCompletion(context.Background(), nil)
	require.Error(t, err)
}
