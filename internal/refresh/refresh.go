package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"tabrefresh/lib/tableau"
	"tabrefresh/lib/telemetry"
)

// RefreshError is a failed refresh. Detail is the server's raw response
// body when there was one, and the cause's message otherwise.
type RefreshError struct {
	Detail string
	Cause  error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh data source: %s", e.Detail)
}

func (e *RefreshError) Unwrap() error {
	return e.Cause
}

func newRefreshError(cause error) *RefreshError {
	detail := cause.Error()
	var resErr *tableau.ResponseError
	if errors.As(cause, &resErr) {
		detail = resErr.Body
	}
	return &RefreshError{Detail: detail, Cause: cause}
}

// RefreshDataSource queues a refresh of the data source `name` in the
// project `projectID`.
func RefreshDataSource(ctx context.Context, api API, session tableau.Session, name, projectID string) (tableau.Job, error) {
	job, err := api.RefreshDataSource(ctx, session, name, projectID)
	telemetry.RecordRefresh(ctx, name, err)
	if err != nil {
		return tableau.Job{}, newRefreshError(err)
	}
	slog.InfoContext(ctx, "data source refreshed", "data_source", name, "job", job.ID)
	return job, nil
}
