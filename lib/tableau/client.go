// Package tableau is a small client for the Tableau Server REST API,
// covering what a scheduled data source refresh needs: sign in, list
// projects, find and refresh a data source, sign out.
package tableau

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"tabrefresh/lib/restyutil"
	"tabrefresh/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/tableau")

const (
	DefaultApiVersion = "3.26"
	authHeader        = "X-Tableau-Auth"
	pageSize          = 100
)

type Client struct {
	BaseUrl    *url.URL
	ApiVersion string
	Http       *resty.Client
}

type ClientOptions struct {
	BaseUrl    string
	ApiVersion string
	// DumpOutput receives every request/response pair with credentials
	// redacted, it can be nil.
	DumpOutput restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", opts.BaseUrl)
	}
	apiVersion := opts.ApiVersion
	if apiVersion == "" {
		apiVersion = DefaultApiVersion
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseUrl.String(), "/"))
	client.SetHeader("Accept", "application/json")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))

	telemetry.InstrumentResty(client, "lib/tableau/http")
	restyutil.DumpMessages(client, opts.DumpOutput)

	return &Client{
		BaseUrl:    baseUrl,
		ApiVersion: apiVersion,
		Http:       client,
	}, nil
}

func (c *Client) apiPath(format string, args ...any) string {
	return fmt.Sprintf("/api/%s", c.ApiVersion) + fmt.Sprintf(format, args...)
}

func (c *Client) request(ctx context.Context, session Session) *resty.Request {
	req := c.Http.R().SetContext(ctx)
	if session.Token != "" {
		req.SetHeader(authHeader, session.Token)
	}
	return req
}
