package nonfatal

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestValueReturnsFallbackOnError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	got := Value(logger, "probe cache dir", []string{"/fallback"}, func() ([]string, error) {
		return nil, errors.New("exit 1")
	})

	require.Equal(t, []string{"/fallback"}, got)
	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, "probe cache dir: exit 1", hook.LastEntry().Message)
}

func TestValuePassesThroughSuccess(t *testing.T) {
	logger, hook := test.NewNullLogger()

	got := Value(logger, "probe", "", func() (string, error) { return "/cache", nil })

	require.Equal(t, "/cache", got)
	require.Empty(t, hook.Entries)
}

func TestDoReportsOutcome(t *testing.T) {
	logger, hook := test.NewNullLogger()

	require.True(t, Do(logger, "add path", func() error { return nil }))
	require.False(t, Do(logger, "add path", func() error { return errors.New("denied") }))
	require.Len(t, hook.Entries, 1)
	require.Equal(t, "nonfatal", hook.LastEntry().Data["action"])
}

func TestNilLoggerIsTolerated(t *testing.T) {
	require.False(t, Do(nil, "x", func() error { return errors.New("boom") }))
}
