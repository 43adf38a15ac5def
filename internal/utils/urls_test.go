package utils_test

import (
	"testing"

	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://sgo.example.ru", "authorize/login?mobile", "https://sgo.example.ru/authorize/login?mobile"},
		{"https://sgo.example.ru/", "authorize/login?mobile", "https://sgo.example.ru/authorize/login?mobile"},
		{"https://sgo.example.ru//", "/api/mobile/users?v=2", "https://sgo.example.ru/api/mobile/users?v=2"},
		{"http://localhost:8080/region", "v1/tokens/", "http://localhost:8080/region/v1/tokens/"},
	}
	for _, tc := range tests {
		t.Run(tc.base, func(t *testing.T) {
			require.Equal(t, tc.want, utils.JoinURL(tc.base, tc.path))
		})
	}
}
