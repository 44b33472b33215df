package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/config"
)

func TestConfigureDefaultsToStdout(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"}, buf)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != buf {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
	if _, ok := logger.Formatter.(*ActionsFormatter); !ok {
		t.Fatalf("默认应使用 actions 格式，得到 %T", logger.Formatter)
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(config.GlobalConfig{LogLevel: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("未知日志级别应返回错误")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root 不受目录权限限制")
	}
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	buf := &bytes.Buffer{}
	cfg := config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "setup-vp.log"),
	}
	logger, err := InitLogger(cfg, buf)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != buf {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestConfigureCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setup-vp.log")
	cfg := config.GlobalConfig{LogLevel: "debug", LogFormat: "json", LogFilePath: path}
	logger, err := InitLogger(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestActionsFormatterLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&ActionsFormatter{})

	logger.Debug("probing")
	logger.WithField("action", "cache_save").Warn("Cache save failed or was skipped.")
	logger.WithError(errors.New("boom")).Error("restore failed")
	logger.WithField("primary_key", "k").Info("Cache not found")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"::debug::probing",
		"::warning::Cache save failed or was skipped.",
		"::error::restore failed error=boom",
		"Cache not found",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected output %q", buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: want %q got %q", i, want[i], lines[i])
		}
	}
}

func TestGroupWritesWorkflowCommands(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&ActionsFormatter{})

	end := Group(logger, "Running vp install in /ws...")
	logger.Info("inside")
	end()

	if buf.String() != "::group::Running vp install in /ws...\ninside\n::endgroup::\n" {
		t.Fatalf("unexpected group output %q", buf.String())
	}
}
