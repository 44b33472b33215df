package cacheflow

import (
	"context"
	"sync"

	"github.com/any-hub/setup-vp/internal/cache"
	"github.com/any-hub/setup-vp/internal/lockfile"
	"github.com/any-hub/setup-vp/internal/manager"
)

// fakeService 记录调用并返回预设结果。
type fakeService struct {
	mu           sync.Mutex
	matched      string
	restoreErr   error
	saveErr      error
	restoreCalls []restoreCall
	saveCalls    []saveCall
}

type restoreCall struct {
	Paths       []string
	PrimaryKey  string
	RestoreKeys []string
}

type saveCall struct {
	Paths []string
	Key   string
}

func (f *fakeService) Restore(_ context.Context, paths []string, primaryKey string, restoreKeys []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restoreCalls = append(f.restoreCalls, restoreCall{paths, primaryKey, restoreKeys})
	return f.matched, f.restoreErr
}

func (f *fakeService) Save(_ context.Context, paths []string, key string) (cache.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls = append(f.saveCalls, saveCall{paths, key})
	if f.saveErr != nil {
		return cache.SaveResult{}, f.saveErr
	}
	return cache.SaveResult{CacheID: 7, ArchiveSize: 2048}, nil
}

type staticDetector struct {
	lock *lockfile.LockFile
	err  error
}

func (d staticDetector) Detect(string) (*lockfile.LockFile, error) { return d.lock, d.err }

type staticResolver map[manager.Type][]string

func (r staticResolver) Resolve(_ context.Context, t manager.Type) []string { return r[t] }
