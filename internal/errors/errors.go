package errors

import (
	"errors"
	"fmt"
)

// Common error types for the login flow, token exchange and token store
var (
	// Login flow errors
	ErrUserCancelled   = errors.New("user cancelled authorization")
	ErrInvalidCode     = errors.New("invalid authorization code")
	ErrLoginInProgress = errors.New("login already in progress")

	// Transport errors
	ErrNetwork  = errors.New("network error")
	ErrProtocol = errors.New("protocol error")
	ErrParse    = errors.New("unexpected response body")

	// Token errors
	ErrNotLoggedIn    = errors.New("no selected token")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrNoRefreshToken = errors.New("record has no refresh token")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
