package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/any-hub/setup-vp/internal/cache"
	"github.com/any-hub/setup-vp/internal/cache/actions"
	"github.com/any-hub/setup-vp/internal/cache/local"
	"github.com/any-hub/setup-vp/internal/cachedir"
	"github.com/any-hub/setup-vp/internal/cachekey"
	"github.com/any-hub/setup-vp/internal/cacheflow"
	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/hashfiles"
	"github.com/any-hub/setup-vp/internal/install"
	"github.com/any-hub/setup-vp/internal/lockfile"
	"github.com/any-hub/setup-vp/internal/logging"
	"github.com/any-hub/setup-vp/internal/manager"
	"github.com/any-hub/setup-vp/internal/phase"
	"github.com/any-hub/setup-vp/internal/process"
	"github.com/any-hub/setup-vp/internal/runinstall"
	"github.com/any-hub/setup-vp/internal/state"
	"github.com/any-hub/setup-vp/internal/workflow"
)

// buildDeps 将配置装配成两个阶段共享的协作者。
func buildDeps(cfg *config.Config, opts cliOptions, logger *logrus.Logger) (phase.Deps, error) {
	var store state.Store = state.NewEnvStore(stdOut)
	if opts.stateFile != "" {
		store = state.NewFileStore(opts.stateFile)
	}
	st := state.New(store)

	exec := process.NewExecutor(stdOut, stdErr)
	outputs := workflow.NewFileOutputs(stdOut)
	workspace := workflow.Workspace()
	home, _ := os.UserHomeDir()

	deps := phase.Deps{
		Inputs: cfg.Inputs,
		State:  st,
		Installer: &install.Toolchain{
			Exec:    exec,
			Path:    workflow.NewPathEditor(stdOut),
			State:   st,
			Outputs: outputs,
			Logger:  logger,
			GOOS:    runtime.GOOS,
			HomeDir: home,
		},
		Runner: &runinstall.Runner{
			Exec:      exec,
			Workspace: workspace,
			Logger:    logger,
			Group: func(title string) func() {
				return logging.Group(logger, title)
			},
		},
		Logger: logger,
	}

	if !cfg.Inputs.Cache {
		return deps, nil
	}

	service, err := newCacheService(cfg.Global, logger)
	if err != nil {
		return phase.Deps{}, err
	}
	deps.Restorer = &cacheflow.Restorer{
		Detector: lockfile.NewDetector(workspace, logger),
		Resolver: &cachedir.Resolver{
			Strategy:  cfg.Inputs.CacheDirStrategyValue(),
			Command:   cfg.Inputs.CacheDirCommand,
			Env:       manager.ProbeEnv{Exec: exec, Fs: afero.NewOsFs(), HomeDir: home},
			Workspace: workspace,
			Logger:    logger,
		},
		Keys:     cachekey.Builder{Namespace: cachekey.DefaultNamespace, Hasher: hashfiles.FileHasher{Root: workspace}},
		Cache:    service,
		State:    st,
		Outputs:  outputs,
		Platform: cachekey.Platform(),
		Arch:     cachekey.Arch(),
		Logger:   logger,
	}
	deps.Saver = &cacheflow.Saver{Cache: service, State: st, Logger: logger}
	return deps, nil
}

// newCacheService 按 cache-backend 选择后端；auto 在 runner 提供缓存服务时使用 actions，否则退回本地目录。
func newCacheService(global config.GlobalConfig, logger *logrus.Logger) (cache.Service, error) {
	actionsOpts := actions.Options{
		HTTPClient:     actions.NewHTTPClient(global.CacheTimeout.DurationValue()),
		MaxRetries:     global.MaxRetries,
		InitialBackoff: global.InitialBackoff.DurationValue(),
		Logger:         logger,
	}

	switch global.CacheBackendValue() {
	case config.CacheBackendActions:
		return actions.FromEnv(actionsOpts)
	case config.CacheBackendLocal:
		return local.New(localCacheDir(global))
	default:
		client, err := actions.FromEnv(actionsOpts)
		if err == nil {
			return client, nil
		}
		if !errors.Is(err, actions.ErrUnavailable) {
			return nil, err
		}
		dir := localCacheDir(global)
		logger.WithFields(logrus.Fields{"action": "cache_backend", "dir": dir, "reason": err.Error()}).Debug("actions cache unavailable, using local directory")
		return local.New(dir)
	}
}

func localCacheDir(global config.GlobalConfig) string {
	if global.CacheLocalDir != "" {
		return global.CacheLocalDir
	}
	if toolCache := os.Getenv("RUNNER_TOOL_CACHE"); toolCache != "" {
		return filepath.Join(toolCache, "setup-vp-cache")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "setup-vp")
	}
	return filepath.Join(os.TempDir(), "setup-vp-cache")
}
