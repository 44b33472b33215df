package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// OSExecutor 基于 os/exec 启动真实子进程。
type OSExecutor struct {
	stdout io.Writer
	stderr io.Writer
}

// NewExecutor 构造执行器；nil writer 时回退到进程自身的 stdout/stderr。
func NewExecutor(stdout, stderr io.Writer) *OSExecutor {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &OSExecutor{stdout: stdout, stderr: stderr}
}

func (e *OSExecutor) Run(ctx context.Context, name string, args []string, opts Options) (int, error) {
	cmd, err := e.command(ctx, name, args, opts)
	if err != nil {
		return -1, err
	}
	if !opts.Silent {
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	}
	return e.wait(cmd, name, args, opts)
}

func (e *OSExecutor) Output(ctx context.Context, name string, args []string, opts Options) (Result, error) {
	cmd, err := e.command(ctx, name, args, opts)
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	var stdout, stderr bytes.Buffer
	if opts.Silent {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = io.MultiWriter(&stdout, e.stdout)
		cmd.Stderr = io.MultiWriter(&stderr, e.stderr)
	}

	code, err := e.wait(cmd, name, args, opts)
	return Result{
		ExitCode: code,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, err
}

func (e *OSExecutor) command(ctx context.Context, name string, args []string, opts Options) (*exec.Cmd, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLaunch, name, err)
	}
	if !opts.Silent {
		fmt.Fprintf(e.stdout, "[command]%s\n", CommandLine(path, args))
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = opts.Dir
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	return cmd, nil
}

func (e *OSExecutor) wait(cmd *exec.Cmd, name string, args []string, opts Options) (int, error) {
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: %s: %v", ErrLaunch, name, err)
	}

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, err
	}
	code := exitErr.ExitCode()
	if opts.IgnoreReturnCode {
		return code, nil
	}
	return code, &ExitError{Command: CommandLine(name, args), Code: code}
}
