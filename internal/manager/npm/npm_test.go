package npm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/any-hub/setup-vp/internal/manager"
	"github.com/any-hub/setup-vp/internal/process/processtest"
)

func TestRegisteredProbe(t *testing.T) {
	meta, ok := manager.Resolve(manager.NPM)
	require.True(t, ok)

	fake := processtest.NewFake().On("npm config get cache", processtest.Response{Stdout: "/home/runner/.npm\n"})
	dirs, err := meta.CacheDirs(context.Background(), manager.ProbeEnv{Exec: fake})
	require.NoError(t, err)
	require.Equal(t, []string{"/home/runner/.npm"}, dirs)
}

func TestProbeFailsOnNonZeroExit(t *testing.T) {
	fake := processtest.NewFake().On("npm config get cache", processtest.Response{ExitCode: 1})
	_, err := cacheDirs(context.Background(), manager.ProbeEnv{Exec: fake})
	require.Error(t, err)
}
