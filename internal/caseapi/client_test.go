package caseapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evidenx/evidenx/internal/caseapi"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"github.com/evidenx/evidenx/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.Handler) *caseapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := caseapi.New(caseapi.Config{
		BaseURL: server.URL,
		Token:   "secret",
	}, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_headers(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cases/", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "true", r.Header.Get("Ngrok-Skip-Browser-Warning"))
		writeJSON(t, w, []models.Case{{ID: "1", Title: "Kochi burglary"}})
	}))

	cases, err := client.ListCases(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "Kochi burglary", cases[0].Title)
}

func TestClient_GetCase(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cases/1" {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, models.Case{ID: "1", FIRNumber: "FIR-001"})
	}))
	ctx := context.Background()

	kase, err := client.GetCase(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "FIR-001", kase.FIRNumber)

	_, err = client.GetCase(ctx, "missing")
	require.ErrorIs(t, err, caseapi.ErrNotFound)
}

func TestClient_GetTimeline(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/timeline/case/1", r.URL.Path)
		writeJSON(t, w, []models.TimelineEvent{{ID: "te1", CaseID: "1", Source: models.TimelineSourceVideo}})
	}))

	events, err := client.GetTimeline(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.TimelineSourceVideo, events[0].Source)
}

func TestClient_QueryKnowledgeBase(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantText       string
		wantTimestamps []float64
	}{
		{
			name:           "answer with timestamps",
			body:           `{"answer":"A red car at the gate.","timestamps":[12,40]}`,
			wantText:       "A red car at the gate.",
			wantTimestamps: []float64{12, 40},
		},
		{
			name:           "response with single timestamp",
			body:           `{"response":"Two people enter.","videoTimestamp":398}`,
			wantText:       "Two people enter.",
			wantTimestamps: []float64{398},
		},
		{
			name:     "no timestamps",
			body:     `{"answer":"Nothing found."}`,
			wantText: "Nothing found.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/video/search/1/query-knowledge-base", r.URL.Path)
				assert.Equal(t, "who entered the gate?", r.URL.Query().Get("query"))
				_, err := io.WriteString(w, tt.body)
				assert.NoError(t, err)
			}))

			answer, err := client.QueryKnowledgeBase(context.Background(), "1", "who entered the gate?")
			require.NoError(t, err)
			assert.Equal(t, "who entered the gate?", answer.Query)
			assert.Equal(t, tt.wantText, answer.Text())
			assert.Equal(t, tt.wantTimestamps, answer.Seconds())
		})
	}
}

func TestClient_CreateCase(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, models.Case{ID: "4", Title: body["title"]})
	}))

	kase, err := client.CreateCase(context.Background(), map[string]string{"title": "Harbour theft"})
	require.NoError(t, err)
	assert.Equal(t, "4", kase.ID)
	assert.Equal(t, "Harbour theft", kase.Title)
}

func TestClient_errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: caseapi.ErrUnauthorized},
		{name: "server error", status: http.StatusInternalServerError, want: caseapi.ErrStatus},
		{name: "bad gateway", status: http.StatusBadGateway, want: caseapi.ErrStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", tt.status)
			}))
			_, err := client.ListCases(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, caseapi.ErrNotFound)
		})
	}
}

func TestClient_malformedBody(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>tunnel warning</html>")
	}))
	_, err := client.ListCases(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, caseapi.ErrNotFound))
}

func TestClient_cancelledContext(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []models.Case{})
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ListCases(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_invalidBaseURL(t *testing.T) {
	_, err := caseapi.New(caseapi.Config{BaseURL: "ftp://example.com"}, testhelpers.NewLogger(io.Discard))
	require.Error(t, err)
}
