package manager

import (
	"fmt"
	"sort"
	"sync"
)

var globalRegistry = newRegistry()

type registry struct {
	mu       sync.RWMutex
	managers map[Type]Metadata
}

func newRegistry() *registry {
	return &registry{managers: make(map[Type]Metadata)}
}

// Register 将包管理器加入全局注册表，重复类型会返回错误。
func Register(meta Metadata) error {
	return globalRegistry.register(meta)
}

// MustRegister 在注册失败时 panic，适合子包 init() 中调用。
func MustRegister(meta Metadata) {
	if err := Register(meta); err != nil {
		panic(err)
	}
}

// Resolve 返回指定类型的元数据。
func Resolve(t Type) (Metadata, bool) {
	return globalRegistry.resolve(t)
}

// List 返回按类型排序的元数据列表。
func List() []Metadata {
	return globalRegistry.list()
}

// Types 返回所有已注册的类型，供诊断日志使用。
func Types() []Type {
	items := List()
	result := make([]Type, len(items))
	for i, meta := range items {
		result[i] = meta.Type
	}
	return result
}

func (r *registry) register(meta Metadata) error {
	t, err := ParseType(string(meta.Type))
	if err != nil {
		return err
	}
	if meta.CacheDirs == nil {
		return fmt.Errorf("manager %s: cache dir probe is required", t)
	}
	meta.Type = t

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.managers[t]; exists {
		return fmt.Errorf("manager %s already registered", t)
	}
	r.managers[t] = meta
	return nil
}

func (r *registry) resolve(t Type) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.managers[t]
	return meta, ok
}

func (r *registry) list() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.managers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.managers))
	for t := range r.managers {
		keys = append(keys, string(t))
	}
	sort.Strings(keys)

	result := make([]Metadata, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.managers[Type(key)])
	}
	return result
}
