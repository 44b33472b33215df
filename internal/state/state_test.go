package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateRoundTripsThroughMemoryStore(t *testing.T) {
	st := New(NewMemoryStore())

	require.False(t, st.IsPost())
	require.NoError(t, st.MarkPost())
	require.True(t, st.IsPost())

	require.NoError(t, st.SetPrimaryKey("vite-plus-Linux-x64-pnpm-abc"))
	require.NoError(t, st.SetMatchedKey("vite-plus-Linux-x64-pnpm-"))
	require.Equal(t, "vite-plus-Linux-x64-pnpm-abc", st.PrimaryKey())
	require.Equal(t, "vite-plus-Linux-x64-pnpm-", st.MatchedKey())

	require.NoError(t, st.SetCachePaths([]string{"/b", "/a"}))
	paths, ok, err := st.CachePaths()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"/b", "/a"}, paths)
}

func TestCachePathsMissingAndMalformed(t *testing.T) {
	store := NewMemoryStore()
	st := New(store)

	_, ok, err := st.CachePaths()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save(KeyCachePaths, "{not-json"))
	_, ok, err = st.CachePaths()
	require.True(t, ok)
	require.Error(t, err)
}

func TestInstalledVersionDefaultsToUnknown(t *testing.T) {
	st := New(NewMemoryStore())
	require.Equal(t, UnknownVersion, st.InstalledVersion())

	require.NoError(t, st.SetInstalledVersion(""))
	require.Equal(t, UnknownVersion, st.InstalledVersion())

	require.NoError(t, st.SetInstalledVersion("0.1.12"))
	require.Equal(t, "0.1.12", st.InstalledVersion())
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, New(NewFileStore(path)).SetPrimaryKey("k1"))
	require.NoError(t, NewFileStore(path).Save(KeyIsPost, "true"))

	st := New(NewFileStore(path))
	require.Equal(t, "k1", st.PrimaryKey())
	require.True(t, st.IsPost())
}

func TestEnvStoreWritesStateFileAndReadsEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	t.Setenv("GITHUB_STATE", path)
	t.Setenv("STATE_CACHE_PRIMARY_KEY", "from-runner")

	store := NewEnvStore(nil)
	require.NoError(t, store.Save(KeyCachePrimaryKey, "written"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "CACHE_PRIMARY_KEY<<ghadelimiter_"))
	require.Contains(t, string(data), "\nwritten\n")
	require.Equal(t, "from-runner", store.Get(KeyCachePrimaryKey))
}

func TestEnvStoreFallsBackToWorkflowCommand(t *testing.T) {
	t.Setenv("GITHUB_STATE", "")
	var buf strings.Builder

	require.NoError(t, NewEnvStore(&buf).Save(KeyIsPost, "true"))
	require.Equal(t, "::save-state name=IS_POST::true\n", buf.String())
}

func TestFileStoreResetRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := New(NewFileStore(path))

	require.NoError(t, st.Reset(), "文件不存在时 Reset 也应成功")
	require.NoError(t, st.MarkPost())
	require.NoError(t, st.SetPrimaryKey("k1"))

	require.NoError(t, st.Reset())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.False(t, st.IsPost())
	require.Empty(t, st.PrimaryKey())
}

func TestMemoryStoreReset(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(KeyIsPost, "true"))
	require.NoError(t, store.Reset())
	require.False(t, store.Has(KeyIsPost))
}
