package exchange

import (
	"fmt"

	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/oauthmodel"
	"golang.org/x/oauth2"
)

// NetworkError is a failure to reach the token endpoint or to read its reply,
// including per-call timeouts.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{apperrors.ErrNetwork, e.Err}
}

// ProtocolError is a non-2xx reply from the token endpoint. Code is the OAuth error
// code from the structured body and is empty when the body was not one.
type ProtocolError struct {
	Op          string
	StatusCode  int
	Code        string
	Description string
	Retrieve    *oauth2.RetrieveError
}

func (e *ProtocolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: token endpoint returned %d %s: %s", e.Op, e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: token endpoint returned %d", e.Op, e.StatusCode)
}

func (e *ProtocolError) Unwrap() []error {
	if e.Retrieve == nil {
		return []error{apperrors.ErrProtocol}
	}
	return []error{apperrors.ErrProtocol, e.Retrieve}
}

// Rejected reports whether the provider refused the grant itself, as opposed to
// failing for an unrelated reason.
func (e *ProtocolError) Rejected() bool {
	return e.StatusCode == 400 && e.Code != ""
}

// InvalidGrant reports whether the provider no longer accepts the code or refresh
// token that was presented.
func (e *ProtocolError) InvalidGrant() bool {
	return e.Code == oauthmodel.ErrorInvalidGrant
}

// ParseError is a 2xx reply whose body does not match the token response schema.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{apperrors.ErrParse, e.Err}
}
