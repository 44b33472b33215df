// Package cacheflow 编排缓存的恢复（main 阶段）与保存（post 阶段）。
package cacheflow

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/cache"
	"github.com/any-hub/setup-vp/internal/cachekey"
	"github.com/any-hub/setup-vp/internal/lockfile"
	"github.com/any-hub/setup-vp/internal/logging"
	"github.com/any-hub/setup-vp/internal/manager"
	"github.com/any-hub/setup-vp/internal/state"
	"github.com/any-hub/setup-vp/internal/workflow"
)

// Detector 检测 lock 文件，nil 表示不存在。
type Detector interface {
	Detect(explicitPath string) (*lockfile.LockFile, error)
}

// DirResolver 解析缓存目录，失败时返回空列表。
type DirResolver interface {
	Resolve(ctx context.Context, t manager.Type) []string
}

// KeyBuilder 生成缓存 key。
type KeyBuilder interface {
	Build(platform, arch string, lock lockfile.LockFile) (cachekey.Key, error)
}

// Restorer 依次执行 检测 → 解析目录 → 生成 key → 远端恢复，并把结果写入跨阶段状态。
type Restorer struct {
	Detector Detector
	Resolver DirResolver
	Keys     KeyBuilder
	Cache    cache.Service
	State    *state.State
	Outputs  workflow.Outputs
	Platform string
	Arch     string
	Logger   logrus.FieldLogger
}

// Restore 只在 key 计算失败或远端传输失败时返回错误；找不到 lock 文件、
// 缓存目录或远端条目都属于正常结果，输出 cache-hit=false。
func (r *Restorer) Restore(ctx context.Context, explicitLockPath string) error {
	logger := r.Logger.WithField("action", "cache_restore")

	lock, err := r.Detector.Detect(explicitLockPath)
	if err != nil {
		return fmt.Errorf("detect lock file: %w", err)
	}
	if lock == nil {
		logger.Warn("No lock file found, skipping cache restore")
		return r.setHit(false)
	}
	logger.Infof("Using lock file: %s (%s)", lock.Path, lock.Type)

	paths := r.Resolver.Resolve(ctx, lock.Type)
	if len(paths) == 0 {
		logger.Warnf("No cache directories found for %s, skipping cache restore", lock.Type)
		return r.setHit(false)
	}
	if err := r.State.SetCachePaths(paths); err != nil {
		return fmt.Errorf("save cache paths: %w", err)
	}

	key, err := r.Keys.Build(r.Platform, r.Arch, *lock)
	if err != nil {
		return err
	}
	if err := r.State.SetPrimaryKey(key.Primary); err != nil {
		return fmt.Errorf("save primary key: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"primary_key":  key.Primary,
		"restore_keys": key.RestoreKeys,
		"paths":        paths,
	}).Debug("restoring cache")

	matched, err := r.Cache.Restore(ctx, paths, key.Primary, key.RestoreKeys)
	if err != nil {
		return fmt.Errorf("restore cache: %w", err)
	}
	if matched == "" {
		r.Logger.WithFields(logging.CacheFields("cache_restore", key.Primary, "", false)).Info("Cache not found")
		return r.setHit(false)
	}

	if err := r.State.SetMatchedKey(matched); err != nil {
		return fmt.Errorf("save matched key: %w", err)
	}
	r.Logger.WithFields(logging.CacheFields("cache_restore", key.Primary, matched, true)).
		Infof("Cache restored from key: %s", matched)
	return r.setHit(true)
}

func (r *Restorer) setHit(hit bool) error {
	return r.Outputs.SetOutput(workflow.OutputCacheHit, workflow.BoolString(hit))
}
