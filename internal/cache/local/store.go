// Package local 以本地目录实现 cache.Service，适用于自托管 runner 与本地调试。
// 磁盘布局：
//
//	<root>/<version>/<url-escaped key>.tar.zst
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/any-hub/setup-vp/internal/atomicfile"
	"github.com/any-hub/setup-vp/internal/cache"
)

// Store 是目录后端，同一进程内对同一 key 的写入串行化。
type Store struct {
	root string
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// New 以 root 为根目录构建缓存后端，目录不存在时自动创建。
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("cache directory required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{
		root:  abs,
		now:   time.Now,
		locks: make(map[string]*entryLock),
	}, nil
}

// Root 返回缓存根目录。
func (s *Store) Root() string {
	return s.root
}

type entry struct {
	key     string
	path    string
	modTime time.Time
}

func (s *Store) Restore(ctx context.Context, paths []string, primaryKey string, restoreKeys []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	match, err := s.lookup(cache.Version(paths), cache.CandidateKeys(primaryKey, restoreKeys))
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	f, err := os.Open(match.path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := cache.ExtractArchive(ctx, f, ""); err != nil {
		return "", fmt.Errorf("extract %s: %w", match.key, err)
	}
	return match.key, nil
}

func (s *Store) Save(ctx context.Context, paths []string, key string) (cache.SaveResult, error) {
	if key == "" {
		return cache.SaveResult{}, errors.New("cache key required")
	}
	existing := cache.ExistingPaths(paths)
	if len(existing) == 0 {
		return cache.SaveResult{}, cache.ErrSaveSkipped
	}

	version := cache.Version(paths)
	unlock := s.lockEntry(version + "::" + key)
	defer unlock()

	filePath := s.entryPath(version, key)
	if _, err := os.Stat(filePath); err == nil {
		return cache.SaveResult{}, fmt.Errorf("%w: %s", cache.ErrCacheExists, key)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return cache.SaveResult{}, err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(cache.WriteArchive(ctx, pw, existing))
	}()
	written, err := atomicfile.WriteFrom(filePath, pr, 0o644)
	pr.CloseWithError(err)
	if err != nil {
		return cache.SaveResult{}, err
	}

	modTime := s.now().UTC()
	if err := os.Chtimes(filePath, modTime, modTime); err != nil {
		return cache.SaveResult{}, err
	}
	return cache.SaveResult{CacheID: modTime.UnixNano(), ArchiveSize: written}, nil
}

// lookup 依次尝试候选 key：先精确匹配，再做前缀匹配并取最新条目。
func (s *Store) lookup(version string, keys []string) (entry, error) {
	entries, err := s.list(version)
	if err != nil {
		return entry{}, err
	}

	for _, key := range keys {
		var best *entry
		for i := range entries {
			if entries[i].key == key {
				return entries[i], nil
			}
			if strings.HasPrefix(entries[i].key, key) && (best == nil || entries[i].modTime.After(best.modTime)) {
				best = &entries[i]
			}
		}
		if best != nil {
			return *best, nil
		}
	}
	return entry{}, cache.ErrNotFound
}

func (s *Store) list(version string) ([]entry, error) {
	dir := filepath.Join(s.root, version)
	items, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	result := make([]entry, 0, len(items))
	for _, item := range items {
		name := item.Name()
		if item.IsDir() || !strings.HasSuffix(name, cache.ArchiveExt) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, cache.ArchiveExt))
		if err != nil {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		result = append(result, entry{key: key, path: filepath.Join(dir, name), modTime: info.ModTime()})
	}
	return result, nil
}

func (s *Store) entryPath(version, key string) string {
	return filepath.Join(s.root, version, url.QueryEscape(key)+cache.ArchiveExt)
}

func (s *Store) lockEntry(key string) func() {
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
