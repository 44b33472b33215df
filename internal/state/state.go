package state

import (
	"encoding/json"
	"fmt"
)

// 持久化键名。
const (
	KeyIsPost           = "IS_POST"
	KeyCachePrimaryKey  = "CACHE_PRIMARY_KEY"
	KeyCacheMatchedKey  = "CACHE_MATCHED_KEY"
	KeyCachePaths       = "CACHE_PATHS"
	KeyInstalledVersion = "INSTALLED_VERSION"
)

// UnknownVersion 表示无法探测到已安装版本。
const UnknownVersion = "unknown"

// State 是对 Store 的类型化封装，在两个阶段入口之间显式传递。
type State struct {
	store Store
}

// New 基于 store 构造 State。
func New(store Store) *State {
	return &State{store: store}
}

// Reset 丢弃之前运行留下的全部键。
func (s *State) Reset() error {
	return s.store.Reset()
}

// MarkPost 在 main 阶段最先写入，post 阶段据此分派。
func (s *State) MarkPost() error {
	return s.store.Save(KeyIsPost, "true")
}

func (s *State) IsPost() bool {
	return s.store.Get(KeyIsPost) == "true"
}

func (s *State) SetPrimaryKey(key string) error {
	return s.store.Save(KeyCachePrimaryKey, key)
}

func (s *State) PrimaryKey() string {
	return s.store.Get(KeyCachePrimaryKey)
}

func (s *State) SetMatchedKey(key string) error {
	return s.store.Save(KeyCacheMatchedKey, key)
}

func (s *State) MatchedKey() string {
	return s.store.Get(KeyCacheMatchedKey)
}

// SetCachePaths 以 JSON 数组保存缓存目录，保持顺序。
func (s *State) SetCachePaths(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	return s.store.Save(KeyCachePaths, string(data))
}

// CachePaths 返回缓存目录；ok 为 false 表示从未写入。
func (s *State) CachePaths() (paths []string, ok bool, err error) {
	raw := s.store.Get(KeyCachePaths)
	if raw == "" {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, true, fmt.Errorf("解析 %s 失败: %w", KeyCachePaths, err)
	}
	return paths, true, nil
}

func (s *State) SetInstalledVersion(version string) error {
	if version == "" {
		version = UnknownVersion
	}
	return s.store.Save(KeyInstalledVersion, version)
}

// InstalledVersion 未写入时返回 "unknown"。
func (s *State) InstalledVersion() string {
	if v := s.store.Get(KeyInstalledVersion); v != "" {
		return v
	}
	return UnknownVersion
}
