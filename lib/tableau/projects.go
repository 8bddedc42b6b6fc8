package tableau

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Project struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	ParentProjectID string `json:"parentProjectId,omitempty"`
}

// count is a number the api sends either as a json string or a json number.
type count int

func (n *count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*n = count(v)
	return nil
}

type pagination struct {
	PageNumber     count `json:"pageNumber"`
	PageSize       count `json:"pageSize"`
	TotalAvailable count `json:"totalAvailable"`
}

// done reports whether paging can stop after page `pageNumber`, which
// held `got` items, with `collected` items gathered so far. The page
// number the server echoes is not trusted, it may be missing.
func (p pagination) done(pageNumber, got, collected int) bool {
	if got == 0 {
		return true
	}
	total := int(p.TotalAvailable)
	if collected >= total {
		return true
	}
	size := int(p.PageSize)
	if size <= 0 {
		size = got
	}
	return pageNumber*size >= total
}

type projectsPage struct {
	Pagination *pagination `json:"pagination"`
	Projects   struct {
		Project []Project `json:"project"`
	} `json:"projects"`
}

// decodePage decodes a paginated json body into `out`, which must have a
// `pagination` field. Shapes that cannot be paged through are reported as
// *PaginationError.
func decodePage(body []byte, out any, pag func() *pagination) error {
	err := json.Unmarshal(body, out)
	if err != nil {
		return &PaginationError{Reason: fmt.Sprintf("response is not a json object: %s", err.Error())}
	}
	if pag() == nil {
		return &PaginationError{Reason: "response has no pagination block"}
	}
	return nil
}

// QueryAllProjects pages through every project on the session's site.
//
// An error matching ErrPagination means the server answered in a shape
// that could not be paged through, QueryProjects and ParseProjectListing
// can still read such responses.
func (c *Client) QueryAllProjects(ctx context.Context, session Session) ([]Project, error) {
	ctx, span := tracer.Start(ctx, "client:QueryAllProjects")
	defer span.End()

	var projects []Project
	for pageNumber := 1; ; pageNumber++ {
		res, err := c.request(ctx, session).
			SetQueryParam("pageSize", strconv.Itoa(pageSize)).
			SetQueryParam("pageNumber", strconv.Itoa(pageNumber)).
			Get(c.apiPath("/sites/%s/projects", session.SiteID))
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch projects")
			return nil, err
		}
		if res.IsError() {
			span.SetStatus(codes.Error, "failed to fetch projects")
			return nil, newResponseError(res)
		}

		var page projectsPage
		err = decodePage(res.Body(), &page, func() *pagination { return page.Pagination })
		if err != nil {
			span.SetStatus(codes.Error, "failed to page through projects")
			return nil, err
		}

		projects = append(projects, page.Projects.Project...)
		if page.Pagination.done(pageNumber, len(page.Projects.Project), len(projects)) {
			break
		}
	}

	span.SetAttributes(attribute.Int("projects", len(projects)))
	return projects, nil
}

// QueryProjects returns the raw body of a single, non-paginated project
// listing request.
func (c *Client) QueryProjects(ctx context.Context, session Session) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:QueryProjects")
	defer span.End()

	res, err := c.request(ctx, session).
		Get(c.apiPath("/sites/%s/projects", session.SiteID))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch projects")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "failed to fetch projects")
		return nil, newResponseError(res)
	}
	return res.Body(), nil
}
