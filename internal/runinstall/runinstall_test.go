package runinstall

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/process/processtest"
)

func newRunner(fake *processtest.Fake) (*Runner, *test.Hook, *[]string) {
	logger, hook := test.NewNullLogger()
	var groups []string
	return &Runner{
		Exec:      fake,
		Workspace: "/ws",
		Logger:    logger,
		Group: func(title string) func() {
			groups = append(groups, "start:"+title)
			return func() { groups = append(groups, "end") }
		},
	}, hook, &groups
}

func TestRunContinuesAfterFailure(t *testing.T) {
	fake := processtest.NewFake().
		On("vp install", processtest.Response{ExitCode: 1}).
		On("vp install --frozen-lockfile", processtest.Response{})
	runner, hook, groups := newRunner(fake)

	results, err := runner.Run(context.Background(), []config.RunInstall{
		{Cwd: "./packages/app"},
		{Cwd: "/abs/lib", Args: []string{"--frozen-lockfile"}},
	})
	require.ErrorIs(t, err, ErrInstallFailed)
	require.Len(t, results, 2)
	require.Equal(t, 1, results[0].ExitCode)
	require.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)

	calls := fake.Calls()
	require.Equal(t, "/ws/packages/app", calls[0].Options.Dir)
	require.Equal(t, "/abs/lib", calls[1].Options.Dir)
	require.True(t, calls[0].Options.IgnoreReturnCode)

	require.Equal(t, []string{
		"start:Running vp install in /ws/packages/app...", "end",
		"start:Running vp install --frozen-lockfile in /abs/lib...", "end",
	}, *groups)
	require.Equal(t, logrus.ErrorLevel, hook.Entries[0].Level)
	require.Equal(t, `command "vp install" (cwd: /ws/packages/app) exited with code 1`, hook.Entries[0].Message)
	require.Equal(t, "Successfully ran vp install --frozen-lockfile", hook.LastEntry().Message)
}

func TestRunDefaultsToWorkspace(t *testing.T) {
	fake := processtest.NewFake().On("vp install", processtest.Response{})
	runner, _, _ := newRunner(fake)

	_, err := runner.Run(context.Background(), []config.RunInstall{{}})
	require.NoError(t, err)
	require.Equal(t, "/ws", fake.Calls()[0].Options.Dir)
}

func TestRunLaunchFailureIsRecorded(t *testing.T) {
	runner, _, _ := newRunner(processtest.NewFake())

	results, err := runner.Run(context.Background(), []config.RunInstall{{}, {}})
	require.ErrorIs(t, err, ErrInstallFailed)
	require.Len(t, results, 2, "启动失败也不应中断后续条目")
	require.Contains(t, results[0].Err.Error(), "failed to run vp install")
}

func TestRunEmptyListIsNoop(t *testing.T) {
	fake := processtest.NewFake()
	runner, _, _ := newRunner(fake)

	results, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, results)
	require.Empty(t, fake.Calls())
	require.False(t, errors.Is(err, ErrInstallFailed))
}
