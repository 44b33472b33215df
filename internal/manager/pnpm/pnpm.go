// Package pnpm 注册 pnpm 内容寻址 store 的探测。
package pnpm

import (
	"context"

	"github.com/any-hub/setup-vp/internal/manager"
)

func init() {
	manager.MustRegister(manager.Metadata{
		Type:        manager.PNPM,
		Description: "pnpm content-addressable store",
		CacheDirs:   cacheDirs,
	})
}

func cacheDirs(ctx context.Context, env manager.ProbeEnv) ([]string, error) {
	dir, err := manager.CommandOutput(ctx, env, "pnpm", "store", "path", "--silent")
	if err != nil {
		return nil, err
	}
	return []string{dir}, nil
}
