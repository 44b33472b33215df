// Package yarn 注册 yarn 的缓存目录探测，区分 classic (1.x) 与 berry。
package yarn

import (
	"context"
	"strings"

	"github.com/any-hub/setup-vp/internal/manager"
)

func init() {
	manager.MustRegister(manager.Metadata{
		Type:        manager.Yarn,
		Description: "yarn classic cache dir or berry cacheFolder",
		CacheDirs:   cacheDirs,
	})
}

func cacheDirs(ctx context.Context, env manager.ProbeEnv) ([]string, error) {
	version, err := manager.CommandOutput(ctx, env, "yarn", "--version")
	if err != nil {
		return nil, err
	}

	var dir string
	if strings.HasPrefix(version, "1.") {
		dir, err = manager.CommandOutput(ctx, env, "yarn", "cache", "dir")
	} else {
		dir, err = manager.CommandOutput(ctx, env, "yarn", "config", "get", "cacheFolder")
	}
	if err != nil {
		return nil, err
	}
	// berry 在未配置时打印 undefined
	if dir == "undefined" {
		return nil, nil
	}
	return []string{dir}, nil
}
