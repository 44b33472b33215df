// Package lockfile 识别工作区使用的包管理器 lock 文件。
package lockfile

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/any-hub/setup-vp/internal/manager"
)

// LockFile 描述检测到的 lock 文件，构造后不再修改。
type LockFile struct {
	Type     manager.Type
	Path     string
	Filename string
}

type pattern struct {
	filename string
	typ      manager.Type
}

// patterns 按优先级排列，自动检测时取第一个命中项。
var patterns = []pattern{
	{"pnpm-lock.yaml", manager.PNPM},
	{"package-lock.json", manager.NPM},
	{"npm-shrinkwrap.json", manager.NPM},
	{"yarn.lock", manager.Yarn},
	{"bun.lockb", manager.Bun},
	{"bun.lock", manager.Bun},
}

// Detector 在给定工作区内检测 lock 文件。
type Detector struct {
	Fs        afero.Fs
	Workspace string
	Logger    logrus.FieldLogger
}

// NewDetector 基于真实文件系统构造检测器。
func NewDetector(workspace string, logger logrus.FieldLogger) *Detector {
	return &Detector{Fs: afero.NewOsFs(), Workspace: workspace, Logger: logger}
}

// Detect 返回 lock 文件；nil 表示未找到，这属于正常情况。
// explicitPath 非空时只检查该路径，不再回退到自动检测。
func (d *Detector) Detect(explicitPath string) (*LockFile, error) {
	if explicitPath != "" {
		return d.detectExplicit(explicitPath)
	}
	return d.detectAuto()
}

func (d *Detector) detectExplicit(explicitPath string) (*LockFile, error) {
	full := explicitPath
	if !filepath.IsAbs(full) {
		full = filepath.Join(d.Workspace, full)
	}

	info, err := d.Fs.Stat(full)
	if err != nil || info.IsDir() {
		d.logger().WithField("path", full).Info("Lock file not found at the configured path")
		return nil, nil
	}

	name := filepath.Base(full)
	if typ, ok := lookup(name); ok {
		return &LockFile{Type: typ, Path: full, Filename: name}, nil
	}
	return &LockFile{Type: inferType(name), Path: full, Filename: name}, nil
}

func (d *Detector) detectAuto() (*LockFile, error) {
	entries, err := afero.ReadDir(d.Fs, d.Workspace)
	if err != nil {
		d.logger().WithError(err).Warn("Unable to list workspace for lock files")
		return nil, nil
	}

	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			present[entry.Name()] = true
		}
	}
	for _, p := range patterns {
		if !present[p.filename] {
			continue
		}
		d.logger().Infof("Auto-detected lock file: %s", p.filename)
		return &LockFile{Type: p.typ, Path: filepath.Join(d.Workspace, p.filename), Filename: p.filename}, nil
	}
	return nil, nil
}

func lookup(filename string) (manager.Type, bool) {
	for _, p := range patterns {
		if p.filename == filename {
			return p.typ, true
		}
	}
	return "", false
}

// inferType 对未知文件名按子串推断，默认 npm。
func inferType(filename string) manager.Type {
	switch {
	case strings.Contains(filename, "pnpm"):
		return manager.PNPM
	case strings.Contains(filename, "yarn"):
		return manager.Yarn
	case strings.Contains(filename, "bun"):
		return manager.Bun
	default:
		return manager.NPM
	}
}

func (d *Detector) logger() logrus.FieldLogger {
	if d.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return d.Logger.WithField("action", "lockfile_detect")
}
