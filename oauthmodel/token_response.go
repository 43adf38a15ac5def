package oauthmodel

// TokenResponse represents the response from the provider's token endpoint
// for both the device code and the refresh token grants.
type TokenResponse struct {
	// AccessToken authorizes API requests.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken *string `json:"access_token,omitempty"`

	// TokenType indicates how to use the access token (expected "Bearer").
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 3600
	// Note: when absent the access token's "exp" claim is used instead
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Some refresh responses omit it; the caller then keeps the previous one.
	RefreshToken *string `json:"refresh_token,omitempty"`

	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the structured error body returned with non-2xx token responses (RFC 6749 §5.2).
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ErrorInvalidGrant is returned when a pin code or refresh token is expired, already
// used or unknown to the provider.
const ErrorInvalidGrant = "invalid_grant"
