package tableau

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Credentials struct {
	Username string
	Password string
	// Site is the site's content url, the empty string is the default site.
	Site string
}

// Session is the authenticated handle returned by SignIn. It is required
// by every other call and invalid once SignOut returns.
type Session struct {
	Token  string
	SiteID string
	UserID string
}

type signInSite struct {
	ContentUrl string `json:"contentUrl"`
}

type signInCredentials struct {
	Name     string     `json:"name"`
	Password string     `json:"password"`
	Site     signInSite `json:"site"`
}

type signInRequest struct {
	Credentials signInCredentials `json:"credentials"`
}

type signInResponse struct {
	Credentials struct {
		Token string `json:"token"`
		Site  struct {
			ID         string `json:"id"`
			ContentUrl string `json:"contentUrl"`
		} `json:"site"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"credentials"`
}

func (c *Client) SignIn(ctx context.Context, creds Credentials) (Session, error) {
	ctx, span := tracer.Start(ctx, "client:SignIn")
	defer span.End()
	span.SetAttributes(attribute.String("site", creds.Site))

	var out signInResponse
	res, err := c.request(ctx, Session{}).
		SetBody(signInRequest{
			Credentials: signInCredentials{
				Name:     creds.Username,
				Password: creds.Password,
				Site:     signInSite{ContentUrl: creds.Site},
			},
		}).
		SetResult(&out).
		Post(c.apiPath("/auth/signin"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to post sign in request")
		return Session{}, err
	}
	if res.StatusCode() == http.StatusUnauthorized {
		span.SetStatus(codes.Error, InvalidCredentials.Error())
		return Session{}, fmt.Errorf("%w: %w", InvalidCredentials, newResponseError(res))
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "sign in failed")
		return Session{}, newResponseError(res)
	}
	if out.Credentials.Token == "" {
		span.SetStatus(codes.Error, "no token in sign in response")
		return Session{}, errors.New("sign in response did not contain a token")
	}

	return Session{
		Token:  out.Credentials.Token,
		SiteID: out.Credentials.Site.ID,
		UserID: out.Credentials.User.ID,
	}, nil
}

func (c *Client) SignOut(ctx context.Context, session Session) error {
	ctx, span := tracer.Start(ctx, "client:SignOut")
	defer span.End()

	res, err := c.request(ctx, session).
		Post(c.apiPath("/auth/signout"))
	if err != nil {
		span.SetStatus(codes.Error, "failed to post sign out request")
		return err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "sign out failed")
		return newResponseError(res)
	}
	return nil
}
