// Package npm 注册 npm 的缓存目录探测。
package npm

import (
	"context"

	"github.com/any-hub/setup-vp/internal/manager"
)

func init() {
	manager.MustRegister(manager.Metadata{
		Type:        manager.NPM,
		Description: "npm download cache (npm config get cache)",
		CacheDirs:   cacheDirs,
	})
}

func cacheDirs(ctx context.Context, env manager.ProbeEnv) ([]string, error) {
	dir, err := manager.CommandOutput(ctx, env, "npm", "config", "get", "cache")
	if err != nil {
		return nil, err
	}
	return []string{dir}, nil
}
