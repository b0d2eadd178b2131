package simerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/crowd-sfm/internal/simerr"
)

func TestErrorMessageIncludesKindAndMessage(t *testing.T) {
	err := simerr.New(simerr.ConfigurationInvalid, "no crowds")
	require.Contains(t, err.Error(), "ConfigurationInvalid")
	require.Contains(t, err.Error(), "no crowds")
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := simerr.Wrap(simerr.GeometryInvalid, "bad geometry", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "boom")
}

func TestIsMatchesKind(t *testing.T) {
	err := simerr.New(simerr.AlreadyRunning, "already running")
	require.True(t, simerr.Is(err, simerr.AlreadyRunning))
	require.False(t, simerr.Is(err, simerr.NotRunning))
	require.False(t, simerr.Is(errors.New("plain"), simerr.NotRunning))
}
