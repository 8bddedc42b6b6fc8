package tableau

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

var InvalidCredentials = errors.New("tableau rejected the sign-in credentials")

// ErrPagination means a listing could not be paged through because the
// response did not have the expected paginated shape.
var ErrPagination = errors.New("unexpected pagination shape")

// ResponseError is a non-2xx response from the server, Body is the raw
// response text.
type ResponseError struct {
	Method     string
	Url        string
	StatusCode int
	Status     string
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Url, e.Status, snippet(e.Body, 300))
}

func newResponseError(res *resty.Response) *ResponseError {
	return &ResponseError{
		Method:     res.Request.Method,
		Url:        res.Request.URL,
		StatusCode: res.StatusCode(),
		Status:     res.Status(),
		Body:       string(res.Body()),
	}
}

type PaginationError struct {
	Reason string
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPagination.Error(), e.Reason)
}

func (e *PaginationError) Is(target error) bool {
	return target == ErrPagination
}

// ListingParseError means a raw project listing could be read neither as
// json nor as xml.
type ListingParseError struct {
	Snippet string
}

func (e *ListingParseError) Error() string {
	return fmt.Sprintf(
		"could not parse projects from tableau response; check connection and permissions. response snippet:\n%s",
		e.Snippet,
	)
}

type DataSourceNotFoundError struct {
	Name      string
	ProjectID string
	// Projects holds the ids of the projects that do have a data source with this name.
	Projects []string
}

func (e *DataSourceNotFoundError) Error() string {
	if len(e.Projects) == 0 {
		return fmt.Sprintf("data source named '%s' not found on the server", e.Name)
	}
	return fmt.Sprintf(
		"data source named '%s' not found in project %s (found in projects %v)",
		e.Name, e.ProjectID, e.Projects,
	)
}

const SnippetLength = 1000

// snippet returns at most the first `n` characters of `s`.
func snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
