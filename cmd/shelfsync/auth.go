package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/shelfsync/internal/remote"
	"github.com/desertthunder/shelfsync/internal/shared"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage remote catalog authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Run the OAuth2 authorization flow and save tokens to config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.toml", Usage: "Path to configuration file"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Report whether a stored access token is present",
				Action: r.AuthStatus,
			},
		},
	}
}

// AuthLogin runs the authorization-code OAuth2 flow: it opens the
// authorize URL in the user's browser, captures the redirect on a local
// HTTP server, exchanges the code for a token, and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	oauthConfig, err := remote.NewOAuthConfig(r.config.Remote)
	if err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	type callbackResult struct {
		code string
		err  error
	}
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("state") != state {
			results <- callbackResult{err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)}
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if errParam := req.URL.Query().Get("error"); errParam != "" {
			results <- callbackResult{err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, errParam)}
			http.Error(w, errParam, http.StatusBadRequest)
			return
		}
		results <- callbackResult{code: req.URL.Query().Get("code")}
		fmt.Fprintln(w, "Authorization complete, you may close this tab.")
	})

	redirect, err := url.Parse(oauthConfig.RedirectURL)
	if err != nil {
		return fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	httpServer := &http.Server{Addr: redirect.Host, Handler: mux}
	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	time.Sleep(100 * time.Millisecond)

	authURL := oauthConfig.AuthCodeURL(state)
	r.writePlain("→ Opening browser for authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlain("Open this URL in your browser:\n%s\n", authURL)
	}

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result callbackResult
	select {
	case result = <-results:
	case err := <-serverErrors:
		return fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: authorization cancelled", shared.ErrCancelled)
	}
	if result.err != nil {
		return result.err
	}

	token, err := remote.ExchangeCode(ctx, oauthConfig, result.code)
	if err != nil {
		return err
	}

	config := r.config
	config.Remote.AccessToken = token.AccessToken
	config.Remote.RefreshToken = token.RefreshToken

	if err := shared.SaveConfig(cmd.String("config"), config); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	return r.writePlain("✓ Authentication successful, tokens saved to %s\n", cmd.String("config"))
}

// AuthStatus reports whether the current configuration carries a stored
// access token, without making a remote call.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.config.Remote.AccessToken == "" {
		return r.writePlain("✗ Not authenticated\n")
	}
	return r.writePlain("✓ Access token present\n")
}
