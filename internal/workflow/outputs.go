package workflow

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Output 名称。
const (
	OutputCacheHit = "cache-hit"
	OutputVersion  = "version"
)

// Outputs 是流水线可读取的步骤输出。
type Outputs interface {
	SetOutput(name, value string) error
}

// FileOutputs 写入 GITHUB_OUTPUT；未配置时回退到 `::set-output` 命令。
type FileOutputs struct {
	path     string
	fallback io.Writer
}

// NewFileOutputs 读取 GITHUB_OUTPUT 构造输出写入器。
func NewFileOutputs(fallback io.Writer) *FileOutputs {
	if fallback == nil {
		fallback = os.Stdout
	}
	return &FileOutputs{path: FileCommandPath(CommandOutput), fallback: fallback}
}

func (o *FileOutputs) SetOutput(name, value string) error {
	if o.path != "" {
		msg, err := KeyValueMessage(name, value)
		if err != nil {
			return err
		}
		return IssueFileCommand(o.path, msg)
	}
	io.WriteString(o.fallback, "\n")
	IssueCommand(o.fallback, "set-output", map[string]string{"name": name}, value)
	return nil
}

// MemoryOutputs 在内存中记录输出，供测试断言。
type MemoryOutputs struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryOutputs 返回空的内存输出。
func NewMemoryOutputs() *MemoryOutputs {
	return &MemoryOutputs{values: make(map[string]string)}
}

func (o *MemoryOutputs) SetOutput(name, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.values[name] = value
	return nil
}

// Get 返回输出值及是否被设置过。
func (o *MemoryOutputs) Get(name string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.values[name]
	return v, ok
}

// BoolString 按 CI 输出约定渲染布尔值。
func BoolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// containsPathEntry 判断 PATH 是否已包含目录。
func containsPathEntry(pathEnv, dir string) bool {
	for _, entry := range strings.Split(pathEnv, string(os.PathListSeparator)) {
		if entry == dir {
			return true
		}
	}
	return false
}
