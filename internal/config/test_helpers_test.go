package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// clearInputs 清空宿主环境中可能存在的 INPUT_* 变量，避免干扰断言。
func clearInputs(t *testing.T) {
	t.Helper()
	for _, key := range inputKeys {
		t.Setenv(inputEnvName(key), "")
	}
	t.Setenv("RUNNER_DEBUG", "")
}
