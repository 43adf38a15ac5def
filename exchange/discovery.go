package exchange

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"golang.org/x/oauth2"
)

// DiscoverEndpoint reads the issuer's OpenID configuration and returns its endpoints.
// The provider publishes an issuer that differs from its configuration URL in
// trailing slashes, so the issuer check is relaxed.
func DiscoverEndpoint(ctx context.Context, issuer string, httpClient *http.Client) (oauth2.Endpoint, error) {
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	ctx = oidc.InsecureIssuerURLContext(ctx, issuer)

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return oauth2.Endpoint{}, fmt.Errorf("[DiscoverEndpoint] %w: %w", apperrors.ErrNetwork, err)
	}
	endpoint := provider.Endpoint()
	if endpoint.TokenURL == "" {
		return oauth2.Endpoint{}, fmt.Errorf("[DiscoverEndpoint] %w: issuer %s has no token_endpoint", apperrors.ErrProtocol, issuer)
	}
	return endpoint, nil
}
