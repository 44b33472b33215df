// Package processtest 提供 process.Executor 的脚本化替身，供各业务包测试复用。
package processtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/any-hub/setup-vp/internal/process"
)

// Response 描述某条命令的预设结果。
type Response struct {
	Stdout   string
	ExitCode int
	// Err 非空时模拟启动失败，例如命令不存在。
	Err error
}

// Call 记录一次调用的命令与选项。
type Call struct {
	Command string
	Options process.Options
}

// Fake 按 "name arg1 arg2" 匹配预设响应；未登记的命令视为不存在。
type Fake struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []Call
}

// NewFake 返回一个空的替身执行器。
func NewFake() *Fake {
	return &Fake{responses: make(map[string]Response)}
}

// On 为完整命令行登记响应。
func (f *Fake) On(commandLine string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine] = resp
	return f
}

// Calls 返回按顺序记录的调用。
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Commands 只返回命令行，便于断言调用顺序。
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Command
	}
	return out
}

func (f *Fake) Run(ctx context.Context, name string, args []string, opts process.Options) (int, error) {
	res, err := f.Output(ctx, name, args, opts)
	return res.ExitCode, err
}

func (f *Fake) Output(_ context.Context, name string, args []string, opts process.Options) (process.Result, error) {
	line := process.CommandLine(name, args)

	f.mu.Lock()
	f.calls = append(f.calls, Call{Command: line, Options: opts})
	resp, ok := f.responses[line]
	f.mu.Unlock()

	if !ok {
		return process.Result{ExitCode: -1}, fmt.Errorf("%w: %s: executable file not found", process.ErrLaunch, name)
	}
	if resp.Err != nil {
		return process.Result{ExitCode: -1}, resp.Err
	}
	result := process.Result{ExitCode: resp.ExitCode, Stdout: resp.Stdout}
	if resp.ExitCode != 0 && !opts.IgnoreReturnCode {
		return result, &process.ExitError{Command: line, Code: resp.ExitCode}
	}
	return result, nil
}
