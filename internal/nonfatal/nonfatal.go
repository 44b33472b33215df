// Package nonfatal 集中处理尽力而为的调用：失败只记录 warning，流程继续。
package nonfatal

import "github.com/sirupsen/logrus"

// Value 执行 fn，出错时记录警告并返回 fallback。
func Value[T any](logger logrus.FieldLogger, msg string, fallback T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		warn(logger, msg, err)
		return fallback
	}
	return v
}

// Do 执行 fn，返回是否成功；失败只记录警告。
func Do(logger logrus.FieldLogger, msg string, fn func() error) bool {
	if err := fn(); err != nil {
		warn(logger, msg, err)
		return false
	}
	return true
}

func warn(logger logrus.FieldLogger, msg string, err error) {
	if logger == nil {
		return
	}
	logger.WithField("action", "nonfatal").Warnf("%s: %v", msg, err)
}
