package logging

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/workflow"
)

// ActionsFormatter 将 logrus 条目渲染为 runner 可识别的工作流命令：
// debug → ::debug::，warn → ::warning::，error 及以上 → ::error::，info 原样输出且不附带字段。
type ActionsFormatter struct{}

func (f *ActionsFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	msg := entry.Message
	if entry.Level != logrus.InfoLevel {
		msg += renderFields(entry.Data)
	}

	switch entry.Level {
	case logrus.TraceLevel, logrus.DebugLevel:
		b.WriteString("::debug::")
		b.WriteString(workflow.EscapeData(msg))
	case logrus.WarnLevel:
		b.WriteString("::warning::")
		b.WriteString(workflow.EscapeData(msg))
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		b.WriteString("::error::")
		b.WriteString(workflow.EscapeData(msg))
	default:
		b.WriteString(msg)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// renderFields 以 key=value 形式附加字段，action 字段只用于机器侧过滤，不输出。
func renderFields(data logrus.Fields) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		if k == "action" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, data[k])
	}
	return b.String()
}

// Group 开启一个可折叠日志分组，返回的函数负责关闭分组。
func Group(logger *logrus.Logger, title string) func() {
	if _, ok := logger.Formatter.(*ActionsFormatter); ok {
		fmt.Fprintf(logger.Out, "::group::%s\n", title)
		return func() {
			fmt.Fprintln(logger.Out, "::endgroup::")
		}
	}
	logger.WithField("action", "group_start").Info(title)
	return func() {
		logger.WithField("action", "group_end").Debug(title)
	}
}
