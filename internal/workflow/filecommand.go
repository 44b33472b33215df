// Package workflow 实现 CI runner 的文件命令协议（GITHUB_OUTPUT / GITHUB_STATE /
// GITHUB_PATH）以及工作区、平台等环境读取。
package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	// CommandOutput 对应 GITHUB_OUTPUT。
	CommandOutput = "OUTPUT"
	// CommandState 对应 GITHUB_STATE。
	CommandState = "STATE"
	// CommandPath 对应 GITHUB_PATH。
	CommandPath = "PATH"
)

// ErrDelimiterCollision 表示 key/value 中包含随机分隔符，无法安全写入。
var ErrDelimiterCollision = errors.New("file command delimiter collision")

// FileCommandPath 返回 GITHUB_<command> 指向的文件路径，未设置时为空。
func FileCommandPath(command string) string {
	return os.Getenv("GITHUB_" + command)
}

// IssueFileCommand 以追加方式写入一条文件命令，文件必须已由 runner 创建。
func IssueFileCommand(path, message string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("missing file at path %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, writeErr := io.WriteString(f, message+"\n")
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// KeyValueMessage 生成 `key<<delimiter\nvalue\ndelimiter` 形式的多行安全消息。
func KeyValueMessage(key, value string) (string, error) {
	delimiter := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(key, delimiter) {
		return "", fmt.Errorf("%w: name %q", ErrDelimiterCollision, key)
	}
	if strings.Contains(value, delimiter) {
		return "", fmt.Errorf("%w: value for %q", ErrDelimiterCollision, key)
	}
	return key + "<<" + delimiter + "\n" + value + "\n" + delimiter, nil
}

// IssueCommand 向 writer 输出旧式 `::name k=v::message` 工作流命令。
func IssueCommand(w io.Writer, name string, props map[string]string, message string) {
	var b strings.Builder
	b.WriteString("::")
	b.WriteString(name)
	first := true
	for _, k := range sortedKeys(props) {
		if first {
			b.WriteByte(' ')
			first = false
		} else {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(EscapeProperty(props[k]))
	}
	b.WriteString("::")
	b.WriteString(EscapeData(message))
	fmt.Fprintln(w, b.String())
}

// EscapeData 转义命令消息体中的换行与百分号。
func EscapeData(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(s)
}

// EscapeProperty 额外转义属性值中的分隔符。
func EscapeProperty(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
	return r.Replace(s)
}
