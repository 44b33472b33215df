// Package cachekey 生成分层缓存 key：主 key 精确到 lock 文件内容，
// 回退 key 依次去掉内容摘要与包管理器类型，供远端做前缀匹配。
package cachekey

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/any-hub/setup-vp/internal/lockfile"
)

// DefaultNamespace 是所有 key 的前缀。
const DefaultNamespace = "vite-plus"

// ErrHashComputation 可用 errors.Is 匹配 HashComputationError。
var ErrHashComputation = errors.New("cache key hash computation failed")

// HashComputationError 描述 lock 文件摘要无法计算。
type HashComputationError struct {
	Path string
	Err  error
}

func (e *HashComputationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to hash %s: empty result", e.Path)
	}
	return fmt.Sprintf("failed to hash %s: %v", e.Path, e.Err)
}

func (e *HashComputationError) Unwrap() error { return e.Err }

func (e *HashComputationError) Is(target error) bool { return target == ErrHashComputation }

// Hasher 计算单个文件的内容摘要。
type Hasher interface {
	HashFile(path string) (string, error)
}

// Key 是主 key 与按特异性递减排列的回退 key。
type Key struct {
	Primary     string
	RestoreKeys []string
}

// Builder 组合平台、架构、包管理器与内容摘要。
type Builder struct {
	Namespace string
	Hasher    Hasher
}

// Build 生成缓存 key，摘要失败或为空时返回 *HashComputationError。
func (b Builder) Build(platform, arch string, lock lockfile.LockFile) (Key, error) {
	hash, err := b.Hasher.HashFile(lock.Path)
	if err != nil {
		return Key{}, &HashComputationError{Path: lock.Path, Err: err}
	}
	if hash == "" {
		return Key{}, &HashComputationError{Path: lock.Path}
	}

	ns := b.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	archPrefix := strings.Join([]string{ns, platform, arch}, "-") + "-"
	typePrefix := archPrefix + string(lock.Type) + "-"

	return Key{
		Primary:     typePrefix + hash,
		RestoreKeys: []string{typePrefix, archPrefix},
	}, nil
}

// Platform 返回 runner 操作系统名（RUNNER_OS），本地运行时使用 Node 风格的平台名。
func Platform() string {
	if v := os.Getenv("RUNNER_OS"); v != "" {
		return v
	}
	return nodePlatform(runtime.GOOS)
}

// Arch 返回 Node 风格的 CPU 架构名。
func Arch() string {
	return nodeArch(runtime.GOARCH)
}

func nodePlatform(goos string) string {
	if goos == "windows" {
		return "win32"
	}
	return goos
}

func nodeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	default:
		return goarch
	}
}
