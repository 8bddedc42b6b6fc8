package refresh

import (
	"context"
	"errors"
	"strings"
	"testing"
	"tabrefresh/lib/tableau"

	"github.com/stretchr/testify/require"
)

var knownProjects = []tableau.Project{
	{ID: "1", Name: "Default"},
	{ID: "2", Name: "sales"},
	{ID: "3", Name: "Banking Insights Dashboard"},
	{ID: "4", Name: "Sales"},
	{ID: "5", Name: "Sales"},
}

func TestFindProject(t *testing.T) {
	project, err := FindProject(knownProjects, "Sales")
	require.NoError(t, err)
	// exact match, first in order among duplicates
	require.Equal(t, "4", project.ID)

	project, err = FindProject(knownProjects, "sales")
	require.NoError(t, err)
	require.Equal(t, "2", project.ID)
}

func TestFindProjectCaseSensitive(t *testing.T) {
	_, err := FindProject([]tableau.Project{{ID: "2", Name: "sales"}}, "Sales")

	var notFound *ProjectNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Sales", notFound.Name)
}

func TestFindProjectNotFoundListsNames(t *testing.T) {
	_, err := FindProject(knownProjects, "Marketing")

	var notFound *ProjectNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"Default", "sales", "Banking Insights Dashboard", "Sales", "Sales"}, notFound.Known)
	for _, p := range knownProjects {
		require.Contains(t, err.Error(), p.Name)
	}
	require.Empty(t, notFound.Suggestion)
}

func TestFindProjectSuggestion(t *testing.T) {
	_, err := FindProject(knownProjects, "Banking Insight Dashboard")

	var notFound *ProjectNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Banking Insights Dashboard", notFound.Suggestion)
	require.True(t, strings.HasSuffix(err.Error(), "(did you mean 'Banking Insights Dashboard'?)"))
}

func TestFindProjectEmptyListing(t *testing.T) {
	_, err := FindProject(nil, "Sales")

	var notFound *ProjectNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Empty(t, notFound.Known)
}

func TestListProjectsPrimary(t *testing.T) {
	api := &fakeAPI{projects: knownProjects}

	projects, err := ListProjects(context.Background(), api, fakeSession)
	require.NoError(t, err)
	require.Equal(t, knownProjects, projects)
	require.Equal(t, []string{"QueryAllProjects"}, api.calls)
}

func TestListProjectsFallbackStructured(t *testing.T) {
	api := &fakeAPI{
		projectsErr: &tableau.PaginationError{Reason: "response has no pagination block"},
		rawBody:     []byte(`{"projects": {"project": [{"id": "7", "name": "Sales"}, {"id": "8", "name": "Ops"}]}}`),
	}

	projects, err := ListProjects(context.Background(), api, fakeSession)
	require.NoError(t, err)
	require.Equal(t, []tableau.Project{{ID: "7", Name: "Sales"}, {ID: "8", Name: "Ops"}}, projects)
	require.Equal(t, []string{"QueryAllProjects", "QueryProjects"}, api.calls)
}

func TestListProjectsFallbackMarkup(t *testing.T) {
	api := &fakeAPI{
		projectsErr: &tableau.PaginationError{Reason: "response is not a json object"},
		rawBody:     []byte(`<tsResponse><projects><project id="7" name="Attr"><name>Sales</name></project></projects></tsResponse>`),
	}

	projects, err := ListProjects(context.Background(), api, fakeSession)
	require.NoError(t, err)
	require.Equal(t, []tableau.Project{{ID: "7", Name: "Sales"}}, projects)
}

func TestListProjectsFallbackUnparseable(t *testing.T) {
	body := "<<<" + strings.Repeat("z", 2000)
	api := &fakeAPI{
		projectsErr: &tableau.PaginationError{Reason: "response is not a json object"},
		rawBody:     []byte(body),
	}

	_, err := ListProjects(context.Background(), api, fakeSession)

	var parseErr *tableau.ListingParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, body[:1000], parseErr.Snippet)
}

func TestListProjectsOtherErrorsSkipFallback(t *testing.T) {
	boom := errors.New("connection reset")
	api := &fakeAPI{projectsErr: boom}

	_, err := ListProjects(context.Background(), api, fakeSession)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"QueryAllProjects"}, api.calls)
}

func TestListProjectsFallbackRequestFails(t *testing.T) {
	resErr := &tableau.ResponseError{StatusCode: 500, Status: "500 Internal Server Error", Body: "oops"}
	api := &fakeAPI{
		projectsErr: &tableau.PaginationError{Reason: "response has no pagination block"},
		rawErr:      resErr,
	}

	_, err := ListProjects(context.Background(), api, fakeSession)
	require.ErrorIs(t, err, resErr)
}
