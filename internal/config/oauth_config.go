package config

import (
	"strings"
	"time"
)

type OAuthConfig interface {
	GetIdentityURL() string
	GetOIDCDiscovery() bool
	GetTokenURL() string
	GetClientID() string
	GetCallbackScheme() string
	GetPinCodeParam() string
	GetExchangeTimeout() time.Duration
	GetProfileTimeout() time.Duration
	GetRefreshSkew() time.Duration
}

type OAuth struct {
	IdentityURL     string        `env:"SGO_IDENTITY_URL" envDefault:"https://identity.ir-tech.ru/"`
	OIDCDiscovery   bool          `env:"SGO_OIDC_DISCOVERY" envDefault:"false"`
	TokenURL        string        `env:"SGO_TOKEN_URL"`
	ClientID        string        `env:"SGO_CLIENT_ID"`
	CallbackScheme  string        `env:"SGO_CALLBACK_SCHEME" envDefault:"irtech"`
	PinCodeParam    string        `env:"SGO_PINCODE_PARAM" envDefault:"pincode"`
	ExchangeTimeout time.Duration `env:"SGO_EXCHANGE_TIMEOUT" envDefault:"10s"`
	ProfileTimeout  time.Duration `env:"SGO_PROFILE_TIMEOUT" envDefault:"10s"`
	RefreshSkew     time.Duration `env:"SGO_REFRESH_SKEW" envDefault:"1m"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetIdentityURL() string {
	return o.IdentityURL
}

// GetOIDCDiscovery reports whether the token endpoint should be discovered from the
// identity issuer's /.well-known/openid-configuration instead of GetTokenURL.
func (o OAuth) GetOIDCDiscovery() bool {
	return o.OIDCDiscovery
}

// GetTokenURL returns the explicit token endpoint, defaulting to <identity>/connect/token.
func (o OAuth) GetTokenURL() string {
	if o.TokenURL != "" {
		return o.TokenURL
	}
	return strings.TrimRight(o.IdentityURL, "/") + "/connect/token"
}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetCallbackScheme() string {
	return o.CallbackScheme
}

func (o OAuth) GetPinCodeParam() string {
	return o.PinCodeParam
}

func (o OAuth) GetExchangeTimeout() time.Duration {
	return o.ExchangeTimeout
}

func (o OAuth) GetProfileTimeout() time.Duration {
	return o.ProfileTimeout
}

func (o OAuth) GetRefreshSkew() time.Duration {
	return o.RefreshSkew
}
