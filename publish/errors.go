package publish

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("token rejected by backend validation")
	ErrServer     = errors.New("backend server error")
	ErrAPI        = errors.New("backend request failed")
)

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 422:
		return ErrValidation
	case e.StatusCode >= 500:
		return ErrServer
	}
	return ErrAPI
}
