package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tunedeck/internal/server"
	"github.com/desertthunder/tunedeck/internal/session"
	"github.com/desertthunder/tunedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// AuthLogin runs the implicit grant login through the local callback server and prints the captured token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	callback := server.NewCallbackHandler(r.credential, state)
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(callback)

	srv := server.New(r.config.Server, router, r.logger)
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("failed to stop callback server", "error", err)
		}
	}()

	authURL := session.LoginURL(r.config.Credentials.Spotify, state)
	r.logger.Info("opening browser for authentication")
	if err := r.open(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL to log in:\n%s\n", authURL)
	}

	timeout := time.NewTimer(cmd.Duration("timeout"))
	defer timeout.Stop()

	select {
	case result := <-callback.Result():
		if err := result.Error(); err != nil {
			return err
		}
	case err := <-srv.Errors():
		return err
	case <-timeout.C:
		return fmt.Errorf("%w: no login within %s", shared.ErrTimeout, cmd.Duration("timeout"))
	case <-ctx.Done():
		return ctx.Err()
	}

	token, _ := r.credential.Current()
	r.logger.Info("authentication successful")
	r.writePlain("✓ Logged in\n")
	return r.writePlain("export %s=%s\n", shared.EnvToken, token)
}

// AuthURL prints the authorization URL without starting the callback server.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", session.LoginURL(r.config.Credentials.Spotify, state))
}

// AuthStatus reports the account behind the current token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if _, ok := r.credential.Current(); !ok {
		return r.writePlain("Authentication: ✗ Not logged in\n")
	}

	profile, err := r.client().CurrentUser(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Authentication: ✓ Logged in\n")
	r.writePlain("User: %s (%s)\n", profile.DisplayName, profile.ID)
	if profile.Email != "" {
		r.writePlain("Email: %s\n", profile.Email)
	}
	if profile.Premium() {
		return r.writePlain("Plan: premium\n")
	}
	return r.writePlain("Plan: %s (Premium is required for playback)\n", profile.Product)
}
