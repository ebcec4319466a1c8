package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrCancelled        = fmt.Errorf("operation cancelled")

	// Catalog and remote errors, one per orchestrator error kind
	ErrNotFound           = fmt.Errorf("resource not found")
	ErrConflict           = fmt.Errorf("conflicting state")
	ErrRemoteUnavailable  = fmt.Errorf("remote catalog unavailable")
	ErrRemoteRateLimited  = fmt.Errorf("remote catalog rate limited")
	ErrRemoteAuthFailed   = fmt.Errorf("remote catalog authentication failed")
	ErrIntegrityFailed    = fmt.Errorf("integrity check failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidRequest  = fmt.Errorf("invalid request")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Unexpected is the catch-all kind for errors that don't fit any of the
	// above — surfaced to callers as "unexpected" rather than leaking
	// internal detail.
	ErrUnexpected = fmt.Errorf("unexpected error")
)
