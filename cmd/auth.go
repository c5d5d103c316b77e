package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login signs in against the configured server and saves the session for later commands.
//
// With --signup the account is created first.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	client, err := r.apiClient()
	if err != nil {
		return err
	}

	email := cmd.String("email")
	password := cmd.String("password")

	var session *models.Session
	if cmd.Bool("signup") {
		r.logger.Info("creating account", "email", email)
		session, err = client.SignUp(ctx, auth.SignUpInput{Email: email, Password: password, FullName: cmd.String("name")})
	} else {
		r.logger.Info("signing in", "email", email)
		session, err = client.SignIn(ctx, email, password)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.writePlain("✓ Signed in as %s\n", session.Email)
}

// Logout ends the saved session. Being signed out already is not an error.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	client, err := r.apiClient()
	if err != nil {
		return err
	}

	if err := client.SignOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// Whoami checks the saved session with the server and shows the account and display name.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	client, err := r.apiClient()
	if err != nil {
		return err
	}

	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	name, err := client.FullName(ctx, session.UserID)
	if err != nil && !errors.Is(err, shared.ErrProfileNotFound) {
		r.logger.Debug("profile lookup failed", "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Email     string `json:"email"`
			UserID    string `json:"user_id"`
			FullName  string `json:"full_name,omitempty"`
			ExpiresAt string `json:"expires_at"`
		}{session.Email, session.UserID, name, session.ExpiresAt.Format(time.RFC3339)}, true)
	}

	if name != "" {
		r.writePlain("%s <%s>\n", name, session.Email)
	} else {
		r.writePlain("%s\n", session.Email)
	}
	return r.writePlain("Session expires: %s\n", session.ExpiresAt.Local().Format("2006-01-02 15:04"))
}

// requireSession returns the live session or a hint to run login.
func (r *Runner) requireSession(ctx context.Context) (*models.Session, error) {
	client, err := r.apiClient()
	if err != nil {
		return nil, err
	}

	session, err := client.Session(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return nil, fmt.Errorf("%w: run 'rolodex login' first", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return session, nil
}
