package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 阶段等基础字段，便于不同入口复用。
func BaseFields(action, phase string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"phase":  phase,
	}
}

// CacheFields 提供缓存 key/命中状态字段，供 restore/save 日志复用。
func CacheFields(action, primaryKey, matchedKey string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"action":      action,
		"primary_key": primaryKey,
		"matched_key": matchedKey,
		"cache_hit":   cacheHit,
	}
}
