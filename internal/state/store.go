// Package state 管理 main 与 post 两个阶段之间传递的键值状态。
// 业务层只依赖 State，底层持久化通过 Store 接口替换。
package state

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/any-hub/setup-vp/internal/atomicfile"
	"github.com/any-hub/setup-vp/internal/workflow"
)

// Store 是跨阶段状态的持久化后端。Get 对不存在的键返回空字符串。
// Reset 清空上一次运行留下的状态，状态只在单次 job 内有效。
type Store interface {
	Save(key, value string) error
	Get(key string) string
	Reset() error
}

// EnvStore 通过 GITHUB_STATE 写入，post 阶段由 runner 注入为 STATE_<KEY> 环境变量。
type EnvStore struct {
	path     string
	fallback io.Writer
}

// NewEnvStore 读取 GITHUB_STATE；未配置时回退到 `::save-state` 命令。
func NewEnvStore(fallback io.Writer) *EnvStore {
	if fallback == nil {
		fallback = os.Stdout
	}
	return &EnvStore{path: workflow.FileCommandPath(workflow.CommandState), fallback: fallback}
}

func (s *EnvStore) Save(key, value string) error {
	if s.path != "" {
		msg, err := workflow.KeyValueMessage(key, value)
		if err != nil {
			return err
		}
		return workflow.IssueFileCommand(s.path, msg)
	}
	workflow.IssueCommand(s.fallback, "save-state", map[string]string{"name": key}, value)
	return nil
}

func (s *EnvStore) Get(key string) string {
	return os.Getenv("STATE_" + key)
}

// Reset 无需操作：runner 按 job 隔离 GITHUB_STATE。
func (s *EnvStore) Reset() error {
	return nil
}

// FileStore 将状态保存在本地 JSON 文件中，便于脱离 runner 调试两个阶段。
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore 使用 path 作为状态文件，文件可以尚不存在。
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("写入状态文件失败: %w", err)
	}
	return nil
}

func (s *FileStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return ""
	}
	return values[key]
}

// Reset 删除状态文件，文件不存在时视为成功。
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("清理状态文件失败: %w", err)
	}
	return nil
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取状态文件失败: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("解析状态文件失败: %w", err)
	}
	return values, nil
}

// MemoryStore 是测试使用的内存实现。
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}

// Has 判断键是否被写入过。
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}
