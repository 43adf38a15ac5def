package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/jrsteele09/sgo-connect/internal/config"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg, err := config.NewFromMap(map[string]string{"SGO_STORE_BACKEND": "memory"})
	require.NoError(t, err)

	root := &cli{config: cfg}
	t.Cleanup(root.close)
	cmd := newRootCmd(root)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatus_NotSignedIn(t *testing.T) {
	out, err := execute(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in.")
}

func TestToken_NotSignedIn(t *testing.T) {
	_, err := execute(t, "--fresh-start", "token")
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}

func TestSelectUser_RequiresNumber(t *testing.T) {
	_, err := execute(t, "select-user", "anna")
	require.Error(t, err)

	_, err = execute(t, "select-user")
	require.Error(t, err)
}

func TestLogout(t *testing.T) {
	_, err := execute(t, "logout")
	require.NoError(t, err)
}
