package remote

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/shared"
	"golang.org/x/oauth2"
)

const (
	authURL  = "https://accounts.spotify.com/authorize"
	tokenURL = "https://accounts.spotify.com/api/token"
)

// NewOAuthConfig builds the oauth2.Config the catalog-sync token exchange
// runs against, grounded on the teacher's SpotifyService construction.
func NewOAuthConfig(cfg shared.RemoteConfig) (*oauth2.Config, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: remote client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-private",
			"playlist-modify-public",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}, nil
}

// TokenFromConfig builds an oauth2.Token from stored access/refresh tokens,
// the non-interactive path used when credentials are already on disk.
func TokenFromConfig(cfg shared.RemoteConfig) (*oauth2.Token, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: no stored access token", shared.ErrNotAuthenticated)
	}
	return &oauth2.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
	}, nil
}

// ExchangeCode performs the authorization-code exchange, the interactive
// path used by the CLI's auth helper.
func ExchangeCode(ctx context.Context, oauthConfig *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return tok, nil
}
