package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/any-hub/setup-vp/internal/process"
)

// Type 标识包管理器。
type Type string

const (
	NPM  Type = "npm"
	PNPM Type = "pnpm"
	Yarn Type = "yarn"
	Bun  Type = "bun"
)

// ErrEmptyOutput 表示探测命令成功退出但没有输出路径。
var ErrEmptyOutput = errors.New("probe produced no output")

// ParseType 解析包管理器名称，大小写不敏感。
func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case NPM, PNPM, Yarn, Bun:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported package manager %q", raw)
	}
}

// ProbeEnv 是缓存目录探测所需的协作者集合。
type ProbeEnv struct {
	Exec    process.Executor
	Fs      afero.Fs
	HomeDir string
	Logger  logrus.FieldLogger
}

// Probe 返回包管理器的下载缓存目录，失败由调用方按尽力而为处理。
type Probe func(ctx context.Context, env ProbeEnv) ([]string, error)

// Metadata 记录一个包管理器的静态信息与探测逻辑。
type Metadata struct {
	Type        Type
	Description string
	CacheDirs   Probe
}

// CommandOutput 静默执行命令并返回去除空白的 stdout，空输出视为错误。
func CommandOutput(ctx context.Context, env ProbeEnv, name string, args ...string) (string, error) {
	res, err := env.Exec.Output(ctx, name, args, process.Options{Silent: true})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return "", fmt.Errorf("%s: %w", process.CommandLine(name, args), ErrEmptyOutput)
	}
	return out, nil
}
