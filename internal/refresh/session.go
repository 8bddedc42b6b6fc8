package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"tabrefresh/lib/tableau"
)

// API is the part of *tableau.Client a run uses.
type API interface {
	SignIn(ctx context.Context, creds tableau.Credentials) (tableau.Session, error)
	SignOut(ctx context.Context, session tableau.Session) error
	QueryAllProjects(ctx context.Context, session tableau.Session) ([]tableau.Project, error)
	QueryProjects(ctx context.Context, session tableau.Session) ([]byte, error)
	RefreshDataSource(ctx context.Context, session tableau.Session, name, projectID string) (tableau.Job, error)
}

// WithSession signs in, calls `fn` with the session and signs out again
// whatever `fn` returns, panics and a cancelled `ctx` included. A failed
// sign out is joined to the error `fn` returned.
//
// Sign-in errors are returned as they are, no further call is made.
func WithSession(
	ctx context.Context,
	api API,
	cfg Config,
	fn func(ctx context.Context, session tableau.Session) error,
) (err error) {
	session, err := api.SignIn(ctx, cfg.Credentials())
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "connected to tableau server", "server", cfg.ServerUrl, "site", cfg.SiteName)
	if len(cfg.EnvOverrides) > 0 {
		slog.InfoContext(ctx, "using environment variables", "keys", cfg.EnvOverrides)
	}

	defer func() {
		signOutErr := api.SignOut(context.WithoutCancel(ctx), session)
		if signOutErr != nil {
			err = errors.Join(err, fmt.Errorf("sign out: %w", signOutErr))
			return
		}
		slog.InfoContext(ctx, "signed out from tableau api")
	}()

	return fn(ctx, session)
}
