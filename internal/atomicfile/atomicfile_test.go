package atomicfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, WriteFile(path, []byte("first"), 0o600))
	require.NoError(t, WriteFile(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestWriteFromCountsBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entry.tar.zst")

	n, err := WriteFrom(path, strings.NewReader("archive-bytes"), 0o644)
	require.NoError(t, err)
	require.EqualValues(t, len("archive-bytes"), n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "临时文件不应残留")
}
