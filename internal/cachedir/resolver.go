// Package cachedir 解析包管理器的下载缓存目录。
//
// 所有探测都是尽力而为：任何失败只记录警告并返回空列表，调用方据此跳过缓存。
package cachedir

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/manager"
	"github.com/any-hub/setup-vp/internal/nonfatal"
)

// DefaultUnifiedCommand 是 unified 策略未配置命令时使用的默认值。
const DefaultUnifiedCommand = "vp pm cache dir"

// Resolver 根据策略解析缓存目录。
type Resolver struct {
	Strategy config.CacheDirStrategy
	// Command 仅 unified 策略使用，按空白切分为命令与参数。
	Command   string
	Env       manager.ProbeEnv
	Workspace string
	Logger    logrus.FieldLogger
}

// Resolve 返回去重后的绝对路径列表，可能为空。
func (r *Resolver) Resolve(ctx context.Context, t manager.Type) []string {
	logger := r.logger().WithFields(logrus.Fields{"manager": t, "strategy": r.strategy()})

	var dirs []string
	switch r.strategy() {
	case config.CacheDirStrategyUnified:
		dirs = nonfatal.Value(logger, "Unable to resolve cache directory", nil, func() ([]string, error) {
			return r.unified(ctx)
		})
	default:
		meta, ok := manager.Resolve(t)
		if !ok {
			logger.Warnf("No cache directory probe registered for %q", t)
			return nil
		}
		env := r.Env
		env.Logger = logger
		dirs = nonfatal.Value(logger, fmt.Sprintf("Unable to resolve %s cache directory", t), nil, func() ([]string, error) {
			return meta.CacheDirs(ctx, env)
		})
	}

	result := r.normalize(dirs)
	logger.WithField("dirs", result).Debug("resolved cache directories")
	return result
}

func (r *Resolver) unified(ctx context.Context) ([]string, error) {
	command := strings.TrimSpace(r.Command)
	if command == "" {
		command = DefaultUnifiedCommand
	}
	fields := strings.Fields(command)
	out, err := manager.CommandOutput(ctx, r.Env, fields[0], fields[1:]...)
	if err != nil {
		return nil, err
	}
	return strings.Split(out, "\n"), nil
}

// normalize 去除空白与重复项，相对路径基于工作区转为绝对路径，保持原顺序。
func (r *Resolver) normalize(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	result := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(r.Workspace, dir)
		}
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		result = append(result, dir)
	}
	return result
}

func (r *Resolver) strategy() config.CacheDirStrategy {
	if r.Strategy == "" {
		return config.CacheDirStrategyManager
	}
	return r.Strategy
}

func (r *Resolver) logger() logrus.FieldLogger {
	if r.Logger == nil {
		return logrus.StandardLogger().WithField("action", "cache_dir_resolve")
	}
	return r.Logger.WithField("action", "cache_dir_resolve")
}
