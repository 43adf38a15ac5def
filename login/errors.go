package login

import (
	"fmt"

	"github.com/jrsteele09/sgo-connect/exchange"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
)

type ErrorKind int

const (
	KindUserCancelled ErrorKind = iota
	KindNetwork
	KindInvalidCode
)

func (k ErrorKind) String() string {
	switch k {
	case KindUserCancelled:
		return "user_cancelled"
	case KindNetwork:
		return "network"
	case KindInvalidCode:
		return "invalid_code"
	}
	return "unknown"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUserCancelled:
		return apperrors.ErrUserCancelled
	case KindInvalidCode:
		return apperrors.ErrInvalidCode
	}
	return apperrors.ErrNetwork
}

func (k ErrorKind) state() State {
	switch k {
	case KindUserCancelled:
		return CancelledByUser
	case KindInvalidCode:
		return InvalidCode
	}
	return NetworkFailed
}

// AuthError is returned by Authorize for every failure other than context
// cancellation. It matches the sentinel for its Kind and the underlying cause.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("authorize: %v", e.Kind.sentinel())
	}
	return fmt.Sprintf("authorize: %v: %v", e.Kind.sentinel(), e.Err)
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// classifyExchange maps a token endpoint failure: a grant the provider refused is an
// invalid code, anything else is reported as a network failure.
func classifyExchange(err error) *AuthError {
	var perr *exchange.ProtocolError
	if apperrors.As(err, &perr) && perr.Rejected() {
		return &AuthError{Kind: KindInvalidCode, Err: err}
	}
	return &AuthError{Kind: KindNetwork, Err: err}
}
