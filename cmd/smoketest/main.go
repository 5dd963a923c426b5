package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/evidenx/evidenx/internal/e2etest"
	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/logging"
)

// TestDashboard signs in with the smoke test token and checks that the dashboard lists the cases.
func TestDashboard(client *e2etest.Client, token string) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for healthy")
	}
	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get dashboard")
	}
	if doc.Find("[data-testid=case-count]").Length() != 1 {
		return errors.New("case count missing from dashboard")
	}
	if token == "" {
		return nil
	}

	if doc, err = client.Login(ctx, token); err != nil {
		return errors.Wrap(err, "sign in")
	}
	if strings.TrimSpace(doc.Find(".investigator").Text()) == "" {
		return errors.New("sign in did not stick")
	}
	var cases []any
	status, err := client.API(ctx, http.MethodGet, "/api/v1/cases/", token, nil, &cases)
	if err != nil {
		return errors.Wrap(err, "list cases over the API")
	}
	if status != http.StatusOK {
		return errors.New("unexpected API status", slog.Int("status", status))
	}
	if _, err = client.Logout(ctx); err != nil {
		return errors.Wrap(err, "sign out")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	// The token is optional, without it only the public dashboard is checked.
	if err = TestDashboard(client, os.Getenv("EVIDENX_SMOKETEST_TOKEN")); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing dashboard", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
