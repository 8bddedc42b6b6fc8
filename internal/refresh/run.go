package refresh

import (
	"context"
	"log/slog"
	"tabrefresh/lib/restyutil"
	"tabrefresh/lib/tableau"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("internal/refresh")

// NewAPI builds the client a run talks to. `dump` can be nil.
func NewAPI(cfg Config, dump restyutil.InstrumentOutput) (*tableau.Client, error) {
	return tableau.NewClient(tableau.ClientOptions{
		BaseUrl:    cfg.ServerUrl,
		ApiVersion: cfg.ApiVersion,
		DumpOutput: dump,
	})
}

// Run signs in, resolves the configured project, refreshes the configured
// data source in it and signs out. `cfg` must come from Resolve.
func Run(ctx context.Context, cfg Config, api API) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	runID := uuid.NewString()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.String("project", cfg.ProjectName),
		attribute.String("data_source", cfg.DataSourceName),
	)
	slog.InfoContext(
		ctx, "starting refresh run",
		"run_id", runID,
		"project", cfg.ProjectName,
		"data_source", cfg.DataSourceName,
	)

	err := WithSession(ctx, api, cfg, func(ctx context.Context, session tableau.Session) error {
		projectID, err := ResolveProjectID(ctx, api, session, cfg.ProjectName)
		if err != nil {
			return err
		}
		_, err = RefreshDataSource(ctx, api, session, cfg.DataSourceName, projectID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh run failed")
	}
	return err
}

// Projects signs in, lists every project on the site and signs out.
func Projects(ctx context.Context, cfg Config, api API) ([]tableau.Project, error) {
	ctx, span := tracer.Start(ctx, "Projects")
	defer span.End()

	var projects []tableau.Project
	err := WithSession(ctx, api, cfg, func(ctx context.Context, session tableau.Session) error {
		var err error
		projects, err = ListProjects(ctx, api, session)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing projects failed")
		return nil, err
	}
	return projects, nil
}
