package oauthmodel

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// DeviceCodeGrant exchanges the numeric pin code delivered by the provider's
	// custom-scheme redirect for tokens.
	// Token request includes: grant_type, device_code, client_id (if configured)
	// Returns: access_token, refresh_token, expires_in
	DeviceCodeGrant GrantType = "urn:ietf:params:oauth:grant-type:device_code"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Used in: Token refresh flow (get new access token without re-running the browser login)
	// Token request includes: refresh_token, client_id (if configured)
	// Returns: new access_token and, when the provider rotates them, a new refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// TokenType is the only token type this client accepts from the provider.
const TokenType = "Bearer"
