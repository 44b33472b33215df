package config

import (
	"errors"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法输入进入安装/缓存流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	in := c.Inputs
	switch in.RegistryValue() {
	case RegistryNPM, RegistryGitHub:
	default:
		return newFieldError("registry", `仅支持 "npm" 或 "github"`)
	}
	switch in.InstallMethodValue() {
	case InstallMethodNPM, InstallMethodScript:
	default:
		return newFieldError("install-method", "仅支持 npm|script")
	}
	switch in.CacheDirStrategyValue() {
	case CacheDirStrategyManager:
	case CacheDirStrategyUnified:
		if len(strings.Fields(in.CacheDirCommand)) == 0 {
			return newFieldError("cache-dir-command", "unified 策略下不能为空")
		}
	default:
		return newFieldError("cache-dir-strategy", "仅支持 manager|unified")
	}
	for i, entry := range in.RunInstall {
		for _, arg := range entry.Args {
			if strings.TrimSpace(arg) == "" {
				return newFieldError(runInstallField(i, "args"), "不能包含空参数")
			}
		}
	}

	g := c.Global
	switch g.LogFormat {
	case "actions", "json", "text":
	default:
		return newFieldError("log-format", "仅支持 actions|json|text")
	}
	if g.LogMaxSize < 0 {
		return newFieldError("log-max-size", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("log-max-backups", "不能为负数")
	}
	switch g.CacheBackendValue() {
	case CacheBackendAuto, CacheBackendActions, CacheBackendLocal:
	default:
		return newFieldError("cache-backend", "仅支持 auto|actions|local")
	}
	if g.CacheTimeout.DurationValue() <= 0 {
		return newFieldError("cache-timeout", "必须大于 0")
	}
	if g.MaxRetries < 0 {
		return newFieldError("max-retries", "不能为负数")
	}
	if g.InitialBackoff.DurationValue() <= 0 {
		return newFieldError("initial-backoff", "必须大于 0")
	}
	return nil
}
