package lockfile

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/setup-vp/internal/manager"
)

const workspace = "/ws"

func newDetector(t *testing.T, files ...string) (*Detector, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(workspace, 0o755))
	for _, f := range files {
		full := f
		if !filepath.IsAbs(full) {
			full = filepath.Join(workspace, f)
		}
		require.NoError(t, afero.WriteFile(fs, full, []byte("lock:"+f), 0o644))
	}
	logger, _ := test.NewNullLogger()
	return &Detector{Fs: fs, Workspace: workspace, Logger: logger}, fs
}

func TestDetectKnownFilenames(t *testing.T) {
	for _, tc := range []struct {
		filename string
		want     manager.Type
	}{
		{"pnpm-lock.yaml", manager.PNPM},
		{"package-lock.json", manager.NPM},
		{"npm-shrinkwrap.json", manager.NPM},
		{"yarn.lock", manager.Yarn},
		{"bun.lockb", manager.Bun},
		{"bun.lock", manager.Bun},
	} {
		t.Run(tc.filename, func(t *testing.T) {
			d, _ := newDetector(t, tc.filename)
			got, err := d.Detect("")
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, LockFile{Type: tc.want, Path: filepath.Join(workspace, tc.filename), Filename: tc.filename}, *got)
		})
	}
}

func TestDetectPriorityPrefersPnpm(t *testing.T) {
	d, _ := newDetector(t, "yarn.lock", "pnpm-lock.yaml", "package-lock.json")
	got, err := d.Detect("")
	require.NoError(t, err)
	require.Equal(t, manager.PNPM, got.Type)
}

func TestDetectAutoAbsent(t *testing.T) {
	d, fs := newDetector(t, "package.json")
	require.NoError(t, fs.MkdirAll(filepath.Join(workspace, "yarn.lock"), 0o755))

	got, err := d.Detect("")
	require.NoError(t, err)
	require.Nil(t, got, "目录同名项不应被识别为 lock 文件")
}

func TestDetectMissingWorkspace(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := &Detector{Fs: afero.NewMemMapFs(), Workspace: "/missing", Logger: logger}

	got, err := d.Detect("")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Len(t, hook.Entries, 1)
}

func TestDetectExplicitMissingIgnoresWorkspace(t *testing.T) {
	d, _ := newDetector(t, "pnpm-lock.yaml")
	got, err := d.Detect("sub/pnpm-lock.yaml")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDetectExplicitRelativeAndAbsolute(t *testing.T) {
	d, _ := newDetector(t, "packages/app/yarn.lock", "/elsewhere/package-lock.json")

	got, err := d.Detect("packages/app/yarn.lock")
	require.NoError(t, err)
	require.Equal(t, LockFile{Type: manager.Yarn, Path: "/ws/packages/app/yarn.lock", Filename: "yarn.lock"}, *got)

	got, err = d.Detect("/elsewhere/package-lock.json")
	require.NoError(t, err)
	require.Equal(t, manager.NPM, got.Type)
	require.Equal(t, "/elsewhere/package-lock.json", got.Path)
}

func TestDetectExplicitInfersUnknownNames(t *testing.T) {
	d, _ := newDetector(t, "custom-pnpm.lock", "my-yarn-lock.txt", "deps.bun", "deps.lock")
	for name, want := range map[string]manager.Type{
		"custom-pnpm.lock": manager.PNPM,
		"my-yarn-lock.txt": manager.Yarn,
		"deps.bun":         manager.Bun,
		"deps.lock":        manager.NPM,
	} {
		got, err := d.Detect(name)
		require.NoError(t, err)
		require.Equal(t, want, got.Type, name)
		require.Equal(t, name, got.Filename)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	d, _ := newDetector(t, "yarn.lock", "bun.lockb")
	first, err := d.Detect("")
	require.NoError(t, err)
	second, err := d.Detect("")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
