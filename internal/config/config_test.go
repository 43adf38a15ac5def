package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/sgo-connect/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewFromMap_Defaults(t *testing.T) {
	c, err := config.NewFromMap(map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "SGO Connect", c.GetAppName())
	require.Equal(t, "irtech", c.GetCallbackScheme())
	require.Equal(t, "pincode", c.GetPinCodeParam())
	require.Equal(t, "https://identity.ir-tech.ru/connect/token", c.GetTokenURL())
	require.Equal(t, time.Minute, c.GetRefreshSkew())
	require.Equal(t, config.StoreBackendFile, c.GetStoreBackend())
	require.Equal(t, uint(5), c.GetPublishMaxAttempts())
}

func TestNewFromMap_Overrides(t *testing.T) {
	c, err := config.NewFromMap(map[string]string{
		"SGO_TOKEN_URL":        "http://localhost:9000/token",
		"SGO_REFRESH_SKEW":     "30s",
		"SGO_STORE_BACKEND":    "sqlite",
		"SGO_REDIS_DB":         "3",
		"SGO_REGION_URL":       "https://sgo.example.ru",
		"SGO_EXCHANGE_TIMEOUT": "2s",
	})
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9000/token", c.GetTokenURL())
	require.Equal(t, 30*time.Second, c.GetRefreshSkew())
	require.Equal(t, config.StoreBackendSQLite, c.GetStoreBackend())
	require.Equal(t, 3, c.GetRedisDB())
	require.Equal(t, "https://sgo.example.ru", c.GetRegionURL())
	require.Equal(t, 2*time.Second, c.GetExchangeTimeout())
}

func TestNewFromMap_InvalidDuration(t *testing.T) {
	_, err := config.NewFromMap(map[string]string{"SGO_REFRESH_SKEW": "soon"})
	require.Error(t, err)
}

func TestGetTokenURL_TrimsIdentitySlash(t *testing.T) {
	o := config.OAuth{IdentityURL: "https://id.example.com//"}
	require.Equal(t, "https://id.example.com/connect/token", o.GetTokenURL())
}
