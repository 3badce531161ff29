package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/boredapes/ctaplanner/internal/config"
	"github.com/boredapes/ctaplanner/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// OAuthAuthenticator checks credentials with an OAuth2 resource owner password grant.
// A token grant means the credentials are valid; the token itself is not kept.
type OAuthAuthenticator struct {
	config     *oauth2.Config
	httpClient *http.Client
}

func NewOAuthAuthenticator(cfg config.OAuth, httpClient *http.Client) *OAuthAuthenticator {
	return &OAuthAuthenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientId,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenUrl},
			Scopes:       cfg.Scopes,
		},
		httpClient: httpClient,
	}
}

func (a *OAuthAuthenticator) Authenticate(ctx context.Context, email string, password string) (string, error) {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	_, err := a.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode >= 400 && retrieveErr.Response.StatusCode < 500 {
			if retrieveErr.ErrorDescription != "" {
				return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, retrieveErr.ErrorDescription)
			}
			return "", ErrInvalidCredentials
		}
		log.Errorf("token endpoint failed: %v", err)
		return "", fmt.Errorf("token endpoint failed: %w", err)
	}
	return user.NormalizeEmail(email), nil
}
