// Package process 封装外部命令执行（包管理器 CLI、安装脚本等），统一退出码、
// 输出捕获与启动失败的语义，业务层只依赖 Executor 接口，测试可注入替身。
package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrLaunch 表示命令无法启动（例如可执行文件不存在），与非零退出码区分。
var ErrLaunch = errors.New("process launch failed")

// Options 控制单次命令执行的工作目录、环境与输出行为。
type Options struct {
	// Dir 为空时沿用当前进程工作目录。
	Dir string
	// Env 为 nil 时继承当前进程环境；非 nil 时完整替换。
	Env []string
	// Silent 关闭命令回显与输出透传。
	Silent bool
	// IgnoreReturnCode 为 true 时非零退出码不视为错误。
	IgnoreReturnCode bool
}

// Result 记录一次捕获输出的执行结果。
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor 是业务层依赖的进程执行协作者。
type Executor interface {
	// Run 执行命令并返回退出码，输出透传到执行器配置的 writer。
	Run(ctx context.Context, name string, args []string, opts Options) (int, error)
	// Output 执行命令并捕获 stdout/stderr。
	Output(ctx context.Context, name string, args []string, opts Options) (Result, error)
}

// ExitError 在未设置 IgnoreReturnCode 时描述非零退出。
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
}

// CommandLine 将命令与参数拼成便于日志展示的一行。
func CommandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
