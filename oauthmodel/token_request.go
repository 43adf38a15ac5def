package oauthmodel

import (
	"net/url"
	"strconv"
)

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the form body sent to the provider's token endpoint.
type TokenRequest struct {
	GrantType GrantType

	// ClientID identifies this application. Optional; omitted from the form when empty.
	ClientID string

	// DeviceCode is the numeric pin code taken from the callback redirect.
	// Required: Yes (only for the device code grant)
	// Example: 123456
	DeviceCode int

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token grant)
	RefreshToken string
}

// Values encodes the request as application/x-www-form-urlencoded fields.
func (r TokenRequest) Values() url.Values {
	v := url.Values{}
	v.Set("grant_type", string(r.GrantType))
	if r.ClientID != "" {
		v.Set("client_id", r.ClientID)
	}
	switch r.GrantType {
	case DeviceCodeGrant:
		v.Set("device_code", strconv.Itoa(r.DeviceCode))
	case RefreshTokenGrant:
		v.Set("refresh_token", r.RefreshToken)
	}
	return v
}
