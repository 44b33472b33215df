// Package install 安装 vite-plus-cli 工具链，探测已安装版本并确保其 bin 目录在 PATH 中。
package install

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/nonfatal"
	"github.com/any-hub/setup-vp/internal/process"
	"github.com/any-hub/setup-vp/internal/state"
	"github.com/any-hub/setup-vp/internal/workflow"
)

const (
	PackageName    = "vite-plus-cli"
	BinaryName     = "vp"
	NPMRegistry    = "https://registry.npmjs.org"
	GitHubRegistry = "https://npm.pkg.github.com"
)

// ErrTokenRequired 表示使用 GitHub Package Registry 却未提供 token。
var ErrTokenRequired = errors.New("GitHub token is required when using GitHub Package Registry. Please set the github-token input")

// Request 描述一次安装请求。
type Request struct {
	Version     string
	Registry    config.Registry
	GitHubToken string
	Method      config.InstallMethod
}

// RequestFromInputs 从输入构造安装请求。
func RequestFromInputs(in config.Inputs) Request {
	return Request{
		Version:     strings.TrimSpace(in.Version),
		Registry:    in.RegistryValue(),
		GitHubToken: in.GitHubToken,
		Method:      in.InstallMethodValue(),
	}
}

// Strategy 是一种工具链安装方式。
type Strategy interface {
	Name() string
	Install(ctx context.Context, req Request) error
	// BinDir 返回安装后需要加入 PATH 的目录。
	BinDir(ctx context.Context) (string, error)
}

// Toolchain 组合安装策略、版本探测与 PATH 维护。
type Toolchain struct {
	Exec    process.Executor
	Path    workflow.PathEditor
	State   *state.State
	Outputs workflow.Outputs
	Logger  logrus.FieldLogger
	// GOOS 与 HomeDir 决定脚本安装的命令与目录，测试中可替换。
	GOOS    string
	HomeDir string
}

// Install 执行安装，返回探测到的版本；安装失败是致命错误。
func (t *Toolchain) Install(ctx context.Context, req Request) (string, error) {
	logger := t.Logger.WithField("action", "install")
	strategy, err := t.strategyFor(req.Method)
	if err != nil {
		return "", err
	}

	version := req.Version
	if version == "" {
		version = "latest"
	}
	logger.Infof("Installing %s@%s (%s)...", PackageName, version, strategy.Name())
	if err := strategy.Install(ctx, req); err != nil {
		return "", err
	}

	// bin 目录需要先于版本探测加入 PATH，否则 vp 可能无法找到
	nonfatal.Do(logger, "Could not determine global bin path", func() error {
		return t.ensurePath(ctx, strategy)
	})

	installed := t.probeVersion(ctx)
	logger.Infof("Successfully installed %s@%s", PackageName, installed)

	if err := t.State.SetInstalledVersion(installed); err != nil {
		return installed, fmt.Errorf("save installed version: %w", err)
	}
	if err := t.Outputs.SetOutput(workflow.OutputVersion, installed); err != nil {
		return installed, fmt.Errorf("set version output: %w", err)
	}
	return installed, nil
}

func (t *Toolchain) strategyFor(method config.InstallMethod) (Strategy, error) {
	switch method {
	case "", config.InstallMethodNPM:
		return &npmStrategy{exec: t.Exec, goos: t.GOOS, logger: t.Logger}, nil
	case config.InstallMethodScript:
		return &scriptStrategy{exec: t.Exec, goos: t.GOOS, homeDir: t.HomeDir}, nil
	default:
		return nil, fmt.Errorf("unsupported install method %q", method)
	}
}

func (t *Toolchain) ensurePath(ctx context.Context, strategy Strategy) error {
	dir, err := strategy.BinDir(ctx)
	if err != nil {
		return err
	}
	if dir == "" || t.Path.HasPath(dir) {
		return nil
	}
	if err := t.Path.AddPath(dir); err != nil {
		return err
	}
	t.Logger.WithField("action", "install").Debugf("Added %s to PATH", dir)
	return nil
}

// probeVersion 优先询问 vp 自身，失败时查询 npm 全局包列表，最后返回 unknown。
func (t *Toolchain) probeVersion(ctx context.Context) string {
	res, err := t.Exec.Output(ctx, BinaryName, []string{"--version"}, process.Options{Silent: true})
	if err == nil {
		if v := strings.TrimSpace(res.Stdout); v != "" {
			return v
		}
	}

	res, err = t.Exec.Output(ctx, "npm", []string{"list", "-g", PackageName, "--depth=0", "--json"}, process.Options{Silent: true, IgnoreReturnCode: true})
	if err != nil {
		return state.UnknownVersion
	}
	var listing struct {
		Dependencies map[string]struct {
			Version string `json:"version"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &listing); err != nil {
		return state.UnknownVersion
	}
	if dep, ok := listing.Dependencies[PackageName]; ok && dep.Version != "" {
		return dep.Version
	}
	return state.UnknownVersion
}
