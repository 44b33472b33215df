package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearRunnerEnv 清空可能影响断言的 runner 环境变量。
func clearRunnerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INPUT_VERSION", "INPUT_CACHE", "INPUT_RUN-INSTALL", "INPUT_CACHE-DEPENDENCY-PATH",
		"INPUT_REGISTRY", "INPUT_INSTALL-METHOD", "INPUT_CACHE-BACKEND", "INPUT_LOG-FILE",
		"INPUT_LOG-FORMAT", "INPUT_LOG-LEVEL", "INPUT_CACHE-LOCAL-DIR",
		"GITHUB_STATE", "GITHUB_OUTPUT", "GITHUB_PATH", "ACTIONS_CACHE_URL", "ACTIONS_CACHE_SERVICE_V2",
		"ACTIONS_RUNTIME_TOKEN", "RUNNER_DEBUG", "SETUP_VP_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(file, []byte(strings.TrimSpace(content)), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return file
}

func writeStateFile(t *testing.T, values map[string]string) string {
	t.Helper()
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("序列化状态失败: %v", err)
	}
	file := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(file, data, 0o600); err != nil {
		t.Fatalf("写入状态失败: %v", err)
	}
	return file
}
