package utils_test

import (
	"testing"

	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 7, utils.Value(utils.Ptr(7)))
}

func TestClonePtr(t *testing.T) {
	require.Nil(t, utils.ClonePtr[int](nil))

	orig := utils.Ptr("token-1")
	c := utils.ClonePtr(orig)
	require.Equal(t, "token-1", *c)
	*c = "changed"
	require.Equal(t, "token-1", *orig)
}

func TestEqual(t *testing.T) {
	require.True(t, utils.Equal[int](nil, nil))
	require.False(t, utils.Equal(nil, utils.Ptr(1)))
	require.True(t, utils.Equal(utils.Ptr(1), utils.Ptr(1)))
	require.False(t, utils.Equal(utils.Ptr(1), utils.Ptr(2)))
}
