package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/manager"
	"github.com/any-hub/setup-vp/internal/process"
)

// npmStrategy 通过 npm install -g 安装。
type npmStrategy struct {
	exec   process.Executor
	goos   string
	logger logrus.FieldLogger
}

func (s *npmStrategy) Name() string { return "npm" }

func (s *npmStrategy) Install(ctx context.Context, req Request) error {
	if req.Registry == config.RegistryGitHub && req.GitHubToken == "" {
		return ErrTokenRequired
	}

	pkg := PackageName
	if req.Version != "" && req.Version != "latest" {
		pkg = PackageName + "@" + req.Version
	}
	registryURL := NPMRegistry
	if req.Registry == config.RegistryGitHub {
		registryURL = GitHubRegistry
	}
	args := []string{"install", "-g", pkg, "--registry=" + registryURL}
	s.logger.WithField("action", "install").Debugf("Running: %s", process.CommandLine("npm", args))

	opts := process.Options{}
	if req.Registry == config.RegistryGitHub {
		opts.Env = append(os.Environ(), "NODE_AUTH_TOKEN="+req.GitHubToken)
	}
	if _, err := s.exec.Run(ctx, "npm", args, opts); err != nil {
		return fmt.Errorf("failed to install %s: %w", PackageName, err)
	}
	return nil
}

// BinDir 以 npm prefix -g 推导全局 bin 目录（npm 9 起已移除 npm bin -g）。
func (s *npmStrategy) BinDir(ctx context.Context) (string, error) {
	prefix, err := manager.CommandOutput(ctx, manager.ProbeEnv{Exec: s.exec}, "npm", "prefix", "-g")
	if err != nil {
		return "", err
	}
	if s.goos == "windows" {
		return prefix, nil
	}
	return filepath.Join(prefix, "bin"), nil
}

// scriptStrategy 运行官方安装脚本。
type scriptStrategy struct {
	exec    process.Executor
	goos    string
	homeDir string
}

const (
	unixInstallScript    = "curl -fsSL https://vite.plus | bash"
	windowsInstallScript = "irm https://vite.plus/ps1 | iex"
)

func (s *scriptStrategy) Name() string { return "script" }

func (s *scriptStrategy) Install(ctx context.Context, req Request) error {
	env := os.Environ()
	if req.Version != "" && req.Version != "latest" {
		env = append(env, "VP_VERSION="+req.Version)
	}

	name, args := "bash", []string{"-c", unixInstallScript}
	if s.goos == "windows" {
		name, args = "pwsh", []string{"-NoProfile", "-Command", windowsInstallScript}
	}
	if _, err := s.exec.Run(ctx, name, args, process.Options{Env: env}); err != nil {
		return fmt.Errorf("failed to install %s via script: %w", PackageName, err)
	}
	return nil
}

func (s *scriptStrategy) BinDir(context.Context) (string, error) {
	if s.homeDir == "" {
		return "", fmt.Errorf("home directory unknown")
	}
	return filepath.Join(s.homeDir, ".vite-plus", "bin"), nil
}
