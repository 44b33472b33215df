package workflow

import (
	"io"
	"os"
)

// Workspace 返回 GITHUB_WORKSPACE，未设置时使用当前工作目录。
func Workspace() string {
	if ws := os.Getenv("GITHUB_WORKSPACE"); ws != "" {
		return ws
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// PathEditor 负责把目录加入后续步骤与当前进程的 PATH。
type PathEditor interface {
	AddPath(dir string) error
	HasPath(dir string) bool
}

// FilePathEditor 写入 GITHUB_PATH，并同步更新当前进程 PATH。
type FilePathEditor struct {
	path     string
	fallback io.Writer
}

// NewPathEditor 读取 GITHUB_PATH 构造 PATH 编辑器。
func NewPathEditor(fallback io.Writer) *FilePathEditor {
	if fallback == nil {
		fallback = os.Stdout
	}
	return &FilePathEditor{path: FileCommandPath(CommandPath), fallback: fallback}
}

func (p *FilePathEditor) AddPath(dir string) error {
	if p.path != "" {
		if err := IssueFileCommand(p.path, dir); err != nil {
			return err
		}
	} else {
		IssueCommand(p.fallback, "add-path", nil, dir)
	}
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func (p *FilePathEditor) HasPath(dir string) bool {
	return containsPathEntry(os.Getenv("PATH"), dir)
}
