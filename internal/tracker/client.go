package tracker

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// OAuthClient builds an HTTP client that attaches the given bearer token
// to every request. All provider adapters share it.
func OAuthClient(ctx context.Context, token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	c := oauth2.NewClient(ctx, src)
	c.Timeout = 15 * time.Second
	return c
}
