package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
)

// Service 是远端缓存服务。Restore 未命中时返回空 key 与 nil error，
// 只有传输层错误才返回 error。
type Service interface {
	Restore(ctx context.Context, paths []string, primaryKey string, restoreKeys []string) (string, error)
	Save(ctx context.Context, paths []string, key string) (SaveResult, error)
}

// SaveResult 描述一次成功写入。
type SaveResult struct {
	CacheID     int64
	ArchiveSize int64
}

var (
	// ErrCacheExists 表示相同 key 已存在，写入被拒绝。
	ErrCacheExists = errors.New("cache entry already exists")
	// ErrSaveSkipped 表示没有可归档的路径。
	ErrSaveSkipped = errors.New("cache save skipped")
	// ErrNotFound 表示后端没有任何匹配条目。
	ErrNotFound = errors.New("cache entry not found")
)

const (
	compressionMethod = "zstd-without-long"
	versionSalt       = "1.0"
	// ArchiveExt 是缓存归档的文件扩展名。
	ArchiveExt = ".tar.zst"
)

// Version 根据路径列表与压缩方式生成条目版本，不同版本的条目互不可见。
func Version(paths []string) string {
	parts := make([]string, 0, len(paths)+2)
	parts = append(parts, paths...)
	parts = append(parts, compressionMethod, versionSalt)
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// ExistingPaths 过滤掉磁盘上不存在的路径，保持顺序。
func ExistingPaths(paths []string) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Lstat(p); err == nil {
			result = append(result, p)
		}
	}
	return result
}

// CandidateKeys 返回按匹配顺序排列的 key 列表：主 key 在前，去除空值与重复。
func CandidateKeys(primaryKey string, restoreKeys []string) []string {
	keys := make([]string, 0, len(restoreKeys)+1)
	seen := make(map[string]struct{}, len(restoreKeys)+1)
	for _, k := range append([]string{primaryKey}, restoreKeys...) {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
