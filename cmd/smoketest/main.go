package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/opencrew/pitchboard/internal/e2etest"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/logging"
	"github.com/opencrew/pitchboard/internal/models"
)

// TestBoard checks that a deployed instance answers its health check and
// serves the investor list.
func TestBoard(client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "health check")
	}

	resp, err := client.Get(ctx, "/api/investors")
	if err != nil {
		return errors.Wrap(err, "list investors")
	}
	var investors []models.Investor
	if err = e2etest.DecodeJSON(resp, &investors); err != nil {
		return errors.Wrap(err, "decode investors")
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

	if len(os.Args) != 2 { //nolint:mnd // we expect only the base URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <base-url>")
		os.Exit(1)
	}

	var (
		url    = os.Args[1]
		client *e2etest.Client
		err    error
	)
	ctx = logging.WithAttrs(ctx, slog.String("url", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestBoard(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing board", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
