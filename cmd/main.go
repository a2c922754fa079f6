package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/tunedeck/internal/app"
	"github.com/desertthunder/tunedeck/internal/session"
	"github.com/desertthunder/tunedeck/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Credential: session.NewCredential(session.NewMemoryStore()),
		Logger:     logger,
		Open:       shared.OpenBrowser,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.command().Run(ctx, os.Args); err != nil {
		logger.Debug("command failed", "error", err)
		logger.Error(app.Describe(err))
		stop()
		os.Exit(1)
	}
}
