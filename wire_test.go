package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/any-hub/setup-vp/internal/cache/actions"
	"github.com/any-hub/setup-vp/internal/cache/local"
	"github.com/any-hub/setup-vp/internal/config"
)

func backendConfig(backend config.CacheBackend, dir string) config.GlobalConfig {
	return config.GlobalConfig{
		CacheBackend:   string(backend),
		CacheLocalDir:  dir,
		CacheTimeout:   config.Duration(time.Minute),
		MaxRetries:     1,
		InitialBackoff: config.Duration(time.Millisecond),
	}
}

func TestAutoBackendPrefersActionsService(t *testing.T) {
	clearRunnerEnv(t)
	t.Setenv("ACTIONS_CACHE_URL", "https://artifactcache.actions.githubusercontent.com/abc")
	t.Setenv("ACTIONS_RUNTIME_TOKEN", "tok")
	logger, _ := test.NewNullLogger()

	service, err := newCacheService(backendConfig(config.CacheBackendAuto, t.TempDir()), logger)
	if err != nil {
		t.Fatalf("创建缓存后端失败: %v", err)
	}
	if _, ok := service.(*actions.Client); !ok {
		t.Fatalf("存在缓存服务变量时应使用 actions 后端，得到 %T", service)
	}
}

func TestAutoBackendFallsBackOnCacheServiceV2(t *testing.T) {
	clearRunnerEnv(t)
	t.Setenv("ACTIONS_CACHE_URL", "https://results-receiver.actions.githubusercontent.com/")
	t.Setenv("ACTIONS_RUNTIME_TOKEN", "tok")
	t.Setenv("ACTIONS_CACHE_SERVICE_V2", "true")
	logger, _ := test.NewNullLogger()

	dir := t.TempDir()
	service, err := newCacheService(backendConfig(config.CacheBackendAuto, dir), logger)
	if err != nil {
		t.Fatalf("auto 不应因 v2 失败: %v", err)
	}
	store, ok := service.(*local.Store)
	if !ok {
		t.Fatalf("v2 runner 上 auto 应回退到本地目录，得到 %T", service)
	}
	if store.Root() != dir {
		t.Fatalf("本地目录不正确: %s", store.Root())
	}

	if _, err := newCacheService(backendConfig(config.CacheBackendActions, dir), logger); err == nil {
		t.Fatalf("显式 actions 后端在 v2 runner 上应报错")
	}
}
