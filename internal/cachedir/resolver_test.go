package cachedir

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/manager"
	"github.com/any-hub/setup-vp/internal/process/processtest"
)

func newResolver(fake *processtest.Fake) (*Resolver, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return &Resolver{
		Env:       manager.ProbeEnv{Exec: fake, Fs: afero.NewMemMapFs(), HomeDir: "/home/runner"},
		Workspace: "/ws",
		Logger:    logger,
	}, hook
}

func TestResolveDispatchesByManager(t *testing.T) {
	fake := processtest.NewFake().
		On("npm config get cache", processtest.Response{Stdout: "/home/runner/.npm"}).
		On("pnpm store path --silent", processtest.Response{Stdout: "/home/runner/.pnpm-store"})
	r, _ := newResolver(fake)

	require.Equal(t, []string{"/home/runner/.npm"}, r.Resolve(context.Background(), manager.NPM))
	require.Equal(t, []string{"/home/runner/.pnpm-store"}, r.Resolve(context.Background(), manager.PNPM))
}

func TestResolveProbeFailureIsEmptyWithWarning(t *testing.T) {
	fake := processtest.NewFake().On("npm config get cache", processtest.Response{ExitCode: 127})
	r, hook := newResolver(fake)

	dirs := r.Resolve(context.Background(), manager.NPM)
	require.Empty(t, dirs)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	require.True(t, warned, "探测失败应记录警告")
}

func TestResolveUnknownTypeIsEmpty(t *testing.T) {
	r, _ := newResolver(processtest.NewFake())
	require.Empty(t, r.Resolve(context.Background(), manager.Type("deno")))
}

func TestResolveUnifiedIgnoresManagerType(t *testing.T) {
	fake := processtest.NewFake().On("vp pm cache dir", processtest.Response{Stdout: "/home/runner/.cache/vite-plus\n"})
	r, _ := newResolver(fake)
	r.Strategy = config.CacheDirStrategyUnified

	require.Equal(t, []string{"/home/runner/.cache/vite-plus"}, r.Resolve(context.Background(), manager.Yarn))
	require.Equal(t, []string{"vp pm cache dir"}, fake.Commands())
}

func TestResolveUnifiedCustomCommandNormalizes(t *testing.T) {
	fake := processtest.NewFake().On("vp cache where --all", processtest.Response{Stdout: "/a\n.cache/b\n/a\n\n"})
	r, _ := newResolver(fake)
	r.Strategy = config.CacheDirStrategyUnified
	r.Command = " vp cache where --all "

	require.Equal(t, []string{"/a", "/ws/.cache/b"}, r.Resolve(context.Background(), manager.NPM))
}
