package exchange_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/sgo-connect/exchange"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestDiscoverEndpoint(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/connect/authorize",
			"token_endpoint":         srv.URL + "/connect/token",
			"jwks_uri":               srv.URL + "/.well-known/jwks",
		})
	}))
	t.Cleanup(srv.Close)

	endpoint, err := exchange.DiscoverEndpoint(context.Background(), srv.URL+"/", srv.Client())
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/connect/token", endpoint.TokenURL)
	require.Equal(t, srv.URL+"/connect/authorize", endpoint.AuthURL)
}

func TestDiscoverEndpoint_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := exchange.DiscoverEndpoint(context.Background(), srv.URL, nil)
	require.ErrorIs(t, err, apperrors.ErrNetwork)
}
