package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrSessionExpired     = fmt.Errorf("session expired")
	ErrEmailTaken         = fmt.Errorf("email already in use")
	ErrOAuthDisabled      = fmt.Errorf("oauth sign-in is not configured")
	ErrRateLimited        = fmt.Errorf("too many requests")

	// Store errors
	ErrContactNotFound = fmt.Errorf("contact not found")
	ErrProfileNotFound = fmt.Errorf("profile not found")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrAPIRequest      = fmt.Errorf("API request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// errorCodes maps sentinel errors to the stable codes carried in API error bodies.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrSessionExpired, "session_expired"},
	{ErrNotAuthenticated, "not_authenticated"},
	{ErrEmailTaken, "email_taken"},
	{ErrContactNotFound, "contact_not_found"},
	{ErrProfileNotFound, "profile_not_found"},
	{ErrUserNotFound, "user_not_found"},
	{ErrOAuthDisabled, "oauth_disabled"},
	{ErrRateLimited, "rate_limited"},
	{ErrInvalidInput, "invalid_input"},
}

// ErrorCode returns the API code for err, or "internal" when err matches no sentinel.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}

// ErrorFromCode returns the sentinel for an API code, or [ErrAPIRequest] for unknown codes.
func ErrorFromCode(code string) error {
	for _, ec := range errorCodes {
		if ec.code == code {
			return ec.err
		}
	}
	return ErrAPIRequest
}
