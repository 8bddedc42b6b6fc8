package tableau

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type DataSource struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
}

type Job struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
	Type string `json:"type"`
}

// characters that separate clauses and terms in a filter expression
const filterReserved = ",:"

type dataSourcesPage struct {
	Pagination  *pagination `json:"pagination"`
	DataSources struct {
		DataSource []DataSource `json:"datasource"`
	} `json:"datasources"`
}

type refreshResponse struct {
	Job Job `json:"job"`
}

// QueryDataSourcesByName returns every data source on the session's site
// called exactly `name`, across all projects.
func (c *Client) QueryDataSourcesByName(ctx context.Context, session Session, name string) ([]DataSource, error) {
	ctx, span := tracer.Start(ctx, "client:QueryDataSourcesByName")
	defer span.End()

	// the filter grammar has no escaping for these, such names are matched
	// on the unfiltered listing
	filtered := !strings.ContainsAny(name, filterReserved)
	span.SetAttributes(attribute.Bool("filtered", filtered))

	var out []DataSource
	seen := 0
	for pageNumber := 1; ; pageNumber++ {
		req := c.request(ctx, session)
		if filtered {
			req.SetQueryParam("filter", fmt.Sprintf("name:eq:%s", name))
		}
		res, err := req.
			SetQueryParam("pageSize", strconv.Itoa(pageSize)).
			SetQueryParam("pageNumber", strconv.Itoa(pageNumber)).
			Get(c.apiPath("/sites/%s/datasources", session.SiteID))
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch data sources")
			return nil, err
		}
		if res.IsError() {
			span.SetStatus(codes.Error, "failed to fetch data sources")
			return nil, newResponseError(res)
		}

		var page dataSourcesPage
		err = decodePage(res.Body(), &page, func() *pagination { return page.Pagination })
		if err != nil {
			span.SetStatus(codes.Error, "failed to page through data sources")
			return nil, err
		}

		seen += len(page.DataSources.DataSource)
		for _, ds := range page.DataSources.DataSource {
			// only exact, case sensitive matches count
			if ds.Name == name {
				out = append(out, ds)
			}
		}
		if page.Pagination.done(pageNumber, len(page.DataSources.DataSource), seen) {
			break
		}
	}

	span.SetAttributes(attribute.Int("data_sources", len(out)))
	return out, nil
}

// RefreshDataSource queues an extract refresh of the data source called
// `name` inside the project `projectID`.
func (c *Client) RefreshDataSource(ctx context.Context, session Session, name, projectID string) (Job, error) {
	ctx, span := tracer.Start(ctx, "client:RefreshDataSource")
	defer span.End()
	span.SetAttributes(
		attribute.String("data_source", name),
		attribute.String("project_id", projectID),
	)

	candidates, err := c.QueryDataSourcesByName(ctx, session, name)
	if err != nil {
		span.SetStatus(codes.Error, "failed to find data source")
		return Job{}, err
	}

	var target *DataSource
	var elsewhere []string
	for i, ds := range candidates {
		if ds.Project.ID == projectID {
			target = &candidates[i]
			break
		}
		elsewhere = append(elsewhere, ds.Project.ID)
	}
	if target == nil {
		span.SetStatus(codes.Error, "data source not found")
		return Job{}, &DataSourceNotFoundError{
			Name:      name,
			ProjectID: projectID,
			Projects:  elsewhere,
		}
	}

	var out refreshResponse
	res, err := c.request(ctx, session).
		SetBody(map[string]any{}).
		SetResult(&out).
		Post(c.apiPath("/sites/%s/datasources/%s/refresh", session.SiteID, target.ID))
	if err != nil {
		span.SetStatus(codes.Error, "failed to post refresh request")
		return Job{}, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "refresh failed")
		return Job{}, newResponseError(res)
	}

	span.SetAttributes(attribute.String("job_id", out.Job.ID))
	return out.Job, nil
}
