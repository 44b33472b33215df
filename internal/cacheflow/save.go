package cacheflow

import (
	"context"
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/cache"
	"github.com/any-hub/setup-vp/internal/state"
)

// Saver 读取 main 阶段写入的状态，必要时上传缓存。
type Saver struct {
	Cache  cache.Service
	State  *state.State
	Logger logrus.FieldLogger
}

// Save 永不返回错误：保存失败只记录警告，不影响任务结果。
func (s *Saver) Save(ctx context.Context) {
	logger := s.Logger.WithField("action", "cache_save")

	primaryKey := s.State.PrimaryKey()
	if primaryKey == "" {
		logger.Info("No cache key found, skipping cache save")
		return
	}
	paths, ok, err := s.State.CachePaths()
	if !ok {
		logger.Info("No cache paths found, skipping cache save")
		return
	}
	if primaryKey == s.State.MatchedKey() {
		logger.Infof("Cache hit occurred on the primary key %s, not saving cache", primaryKey)
		return
	}
	if err != nil {
		logger.Warnf("Invalid cache paths in state, skipping cache save: %v", err)
		return
	}
	if len(paths) == 0 {
		logger.Info("Empty cache paths, skipping cache save")
		return
	}

	res, err := s.Cache.Save(ctx, paths, primaryKey)
	switch {
	case errors.Is(err, cache.ErrCacheExists):
		logger.Warnf("Cache entry %s already exists, not saving cache", primaryKey)
	case errors.Is(err, cache.ErrSaveSkipped):
		logger.Warn("Cache save failed or was skipped.")
	case err != nil:
		logger.Warnf("Failed to save cache: %v", err)
	default:
		logger.WithField("cache_id", res.CacheID).
			Infof("Cache saved with key: %s (%s)", primaryKey, humanize.Bytes(uint64(res.ArchiveSize)))
	}
}
