package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunedeck/internal/app"
	"github.com/desertthunder/tunedeck/internal/bridge"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/repositories"
	"github.com/desertthunder/tunedeck/internal/server"
	"github.com/desertthunder/tunedeck/internal/session"
	"github.com/desertthunder/tunedeck/internal/shared"
	"github.com/desertthunder/tunedeck/internal/ui"
	"github.com/urfave/cli/v3"
)

// Play launches the interactive player.
//
// The local server hosts the login callback and the player page; the page is opened in the browser
// and drives playback over a websocket while the terminal renders the UI.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel().String())
	r.SetLogger(fileLogger)

	db, err := shared.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	hub := bridge.NewHub(shared.WithLogger(r.logger, "component", "bridge"))
	defer hub.Close()

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(server.NewCallbackHandler(r.credential, state))
	router.Handler(hub)

	srv := server.New(cfg.Server, router, r.logger)
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("failed to stop local server", "error", err)
		}
	}()
	go func() {
		select {
		case err := <-srv.Errors():
			r.logger.Error("local server stopped", "error", err)
		case <-ctx.Done():
		}
	}()

	coordinator := playback.NewCoordinator(hub.NewPlayer, r.credential, playback.Options{
		Name:   cfg.Player.Name,
		Volume: cfg.Player.Volume,
	}, shared.WithLogger(r.logger, "component", "playback"))

	history := repositories.NewPlayHistoryRepository(db)
	controller := app.New(r.client(), coordinator, r.credential, history, r.logger)
	if err := controller.Start(ctx); err != nil {
		r.logger.Warn("player did not start", "error", err)
	}
	defer controller.Close()

	if !cmd.Bool("no-browser") {
		if err := r.open(cfg.Server.BaseURL() + bridge.PagePath); err != nil {
			r.logger.Warn("failed to open player page", "error", err)
		}
	}

	model := ui.NewModel(ctx, controller, ui.Options{
		LoginURL:       session.LoginURL(cfg.Credentials.Spotify, state),
		Open:           r.open,
		SeekStep:       time.Duration(cfg.Player.SeekStep) * time.Second,
		SeeksPerSecond: cfg.Player.SeeksPerSecond,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
