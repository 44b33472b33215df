// Package bun 注册 bun 的全局安装缓存探测，命令无结果时回退到默认目录。
package bun

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/any-hub/setup-vp/internal/manager"
)

func init() {
	manager.MustRegister(manager.Metadata{
		Type:        manager.Bun,
		Description: "bun global install cache",
		CacheDirs:   cacheDirs,
	})
}

func cacheDirs(ctx context.Context, env manager.ProbeEnv) ([]string, error) {
	dir, err := manager.CommandOutput(ctx, env, "bun", "pm", "cache")
	if err == nil {
		return []string{dir}, nil
	}
	if env.Logger != nil {
		env.Logger.WithField("action", "cache_dir_probe").Debugf("bun pm cache failed, trying default location: %v", err)
	}

	if env.HomeDir == "" || env.Fs == nil {
		return nil, err
	}
	fallback := filepath.Join(env.HomeDir, ".bun", "install", "cache")
	ok, statErr := afero.DirExists(env.Fs, fallback)
	if statErr != nil {
		return nil, statErr
	}
	if !ok {
		return nil, nil
	}
	return []string{fallback}, nil
}
