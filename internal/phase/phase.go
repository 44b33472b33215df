// Package phase 提供 main 与 post 两个阶段入口，以及基于跨阶段状态的分派。
package phase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/install"
	"github.com/any-hub/setup-vp/internal/nonfatal"
	"github.com/any-hub/setup-vp/internal/runinstall"
	"github.com/any-hub/setup-vp/internal/state"
)

// Phase 标识执行阶段。
type Phase string

const (
	Auto Phase = "auto"
	Main Phase = "main"
	Post Phase = "post"
)

// ParsePhase 解析 --phase 取值，空值视为 auto。
func ParsePhase(raw string) (Phase, error) {
	switch p := Phase(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return Auto, nil
	case Auto, Main, Post:
		return p, nil
	default:
		return "", fmt.Errorf("unknown phase %q (want auto, main or post)", raw)
	}
}

type Installer interface {
	Install(ctx context.Context, req install.Request) (string, error)
}

type Restorer interface {
	Restore(ctx context.Context, explicitLockPath string) error
}

type Saver interface {
	Save(ctx context.Context)
}

type InstallRunner interface {
	Run(ctx context.Context, specs []config.RunInstall) ([]runinstall.Result, error)
}

// Deps 汇总两个阶段需要的协作者。
type Deps struct {
	Inputs    config.Inputs
	State     *state.State
	Installer Installer
	Restorer  Restorer
	Saver     Saver
	Runner    InstallRunner
	Logger    logrus.FieldLogger
}

// Dispatch 根据 IS_POST 状态选择阶段，返回实际执行的阶段。
func Dispatch(ctx context.Context, p Phase, d Deps) (Phase, error) {
	if p == Auto || p == "" {
		p = Main
		if d.State.IsPost() {
			p = Post
		}
	}
	d.Logger.WithFields(logrus.Fields{"action": "phase", "phase": p}).Debug("dispatching phase")

	switch p {
	case Post:
		return p, RunPost(ctx, d)
	default:
		return p, RunMain(ctx, d)
	}
}

// RunMain 安装工具链，按需恢复缓存并执行 install 命令。
func RunMain(ctx context.Context, d Deps) error {
	if err := d.State.Reset(); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	if err := d.State.MarkPost(); err != nil {
		return fmt.Errorf("save %s: %w", state.KeyIsPost, err)
	}

	if _, err := d.Installer.Install(ctx, install.RequestFromInputs(d.Inputs)); err != nil {
		return err
	}

	if d.Inputs.Cache {
		if err := d.Restorer.Restore(ctx, d.Inputs.CacheDependencyPath); err != nil {
			return err
		}
	}

	if len(d.Inputs.RunInstall) > 0 {
		if _, err := d.Runner.Run(ctx, d.Inputs.RunInstall); err != nil {
			return err
		}
	}
	return nil
}

// RunPost 按需保存缓存，保存失败不影响结果。结束后清空状态，下次 auto 重新进入 main。
func RunPost(ctx context.Context, d Deps) error {
	if d.Inputs.Cache {
		d.Saver.Save(ctx)
	}
	nonfatal.Do(d.Logger, "reset state", d.State.Reset)
	return nil
}
