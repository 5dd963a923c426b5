package main

import (
	"context"
	"io"
	"testing"

	"github.com/evidenx/evidenx/internal/e2etest"
	"github.com/stretchr/testify/require"
)

const (
	testInvestigator = "inspector"
	testToken        = "test-token"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "EVIDENX_ADDR":
		return "localhost:0", true
	case "EVIDENX_SQLITE_URL":
		return ":memory:", true
	case "EVIDENX_API_TOKENS":
		return testInvestigator + ":" + testToken, true
	default:
		return "", false
	}
}

// startTestServer starts the web server with the demo fixtures in an in-memory database. The server is stopped when
// the test finishes.
func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	return server
}

// startSignedInClient starts a test server and signs in the test investigator.
func startSignedInClient(t *testing.T) (*e2etest.Server, *e2etest.Client) {
	t.Helper()
	server := startTestServer(t)
	client := server.Client()
	_, err := client.Login(context.Background(), testToken)
	require.NoError(t, err)
	return server, client
}
