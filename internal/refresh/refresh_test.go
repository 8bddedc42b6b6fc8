package refresh

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"tabrefresh/lib/tableau"

	"github.com/stretchr/testify/require"
)

func TestRefreshDataSource(t *testing.T) {
	api := &fakeAPI{job: tableau.Job{ID: "job-9"}}

	job, err := RefreshDataSource(context.Background(), api, fakeSession, "orders", "42")
	require.NoError(t, err)
	require.Equal(t, "job-9", job.ID)
	require.Equal(t, []string{"RefreshDataSource:orders:42"}, api.calls)
}

func TestRefreshErrorDetailFromResponse(t *testing.T) {
	resErr := &tableau.ResponseError{
		Method:     "POST",
		Url:        "/api/3.26/sites/site/datasources/ds/refresh",
		StatusCode: 409,
		Status:     "409 Conflict",
		Body:       "<error>quota exceeded</error>",
	}
	api := &fakeAPI{refreshErr: fmt.Errorf("wrapped: %w", resErr)}

	_, err := RefreshDataSource(context.Background(), api, fakeSession, "orders", "42")

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	require.Equal(t, "<error>quota exceeded</error>", refreshErr.Detail)
	require.Equal(t, "failed to refresh data source: <error>quota exceeded</error>", err.Error())
	// the cause stays reachable
	require.ErrorIs(t, err, resErr)
}

func TestRefreshErrorDetailWithoutResponse(t *testing.T) {
	cause := &tableau.DataSourceNotFoundError{Name: "orders", ProjectID: "42"}
	api := &fakeAPI{refreshErr: cause}

	_, err := RefreshDataSource(context.Background(), api, fakeSession, "orders", "42")

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	require.Equal(t, cause.Error(), refreshErr.Detail)
	require.True(t, errors.Is(err, cause))
	require.Same(t, cause, errors.Unwrap(err))
}
