// Package runinstall 依次在各工作目录执行 vp install。单次失败不会中断后续执行。
package runinstall

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/process"
)

// ErrInstallFailed 表示至少一次 install 调用失败。
var ErrInstallFailed = errors.New("install command failed")

// Grouper 开启可折叠日志分组并返回关闭函数。
type Grouper func(title string) func()

// Runner 串行执行 RunInstall 列表。
type Runner struct {
	Exec      process.Executor
	Workspace string
	Command   string
	Group     Grouper
	Logger    logrus.FieldLogger
}

// Result 记录单次执行结果。
type Result struct {
	Cwd      string
	Args     []string
	ExitCode int
	Err      error
}

// Run 按顺序执行全部条目，返回每条结果；存在失败时返回包装了 ErrInstallFailed 的聚合错误。
func (r *Runner) Run(ctx context.Context, specs []config.RunInstall) ([]Result, error) {
	logger := r.Logger.WithField("action", "run_install")
	results := make([]Result, 0, len(specs))
	var errs []error

	for _, spec := range specs {
		res := r.runOne(ctx, logger, spec)
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if len(errs) > 0 {
		return results, errors.Join(append([]error{ErrInstallFailed}, errs...)...)
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, logger logrus.FieldLogger, spec config.RunInstall) Result {
	command := r.command()
	args := append([]string{"install"}, spec.Args...)
	cwd := r.cwd(spec.Cwd)
	line := process.CommandLine(command, args)

	end := r.group(fmt.Sprintf("Running %s in %s...", line, cwd))
	defer end()

	res := Result{Cwd: cwd, Args: args}
	code, err := r.Exec.Run(ctx, command, args, process.Options{Dir: cwd, IgnoreReturnCode: true})
	res.ExitCode = code
	switch {
	case err != nil:
		res.Err = fmt.Errorf("failed to run %s: %w", line, err)
	case code != 0:
		res.Err = fmt.Errorf("command %q (cwd: %s) exited with code %d", line, cwd, code)
	}

	entry := logger.WithFields(logrus.Fields{"cwd": cwd, "exit_code": code})
	if res.Err != nil {
		entry.Error(res.Err.Error())
	} else {
		entry.Infof("Successfully ran %s", line)
	}
	return res
}

func (r *Runner) cwd(raw string) string {
	if raw == "" {
		return r.Workspace
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	return filepath.Join(r.Workspace, raw)
}

func (r *Runner) command() string {
	if r.Command == "" {
		return "vp"
	}
	return r.Command
}

func (r *Runner) group(title string) func() {
	if r.Group == nil {
		return func() {}
	}
	return r.Group(title)
}
