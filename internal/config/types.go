package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// Registry 描述 toolchain 包的来源仓库。
type Registry string

const (
	RegistryNPM    Registry = "npm"
	RegistryGitHub Registry = "github"
)

// InstallMethod 选择 toolchain 的安装策略。
type InstallMethod string

const (
	InstallMethodNPM    InstallMethod = "npm"
	InstallMethodScript InstallMethod = "script"
)

// CacheDirStrategy 选择缓存目录的探测方式。
type CacheDirStrategy string

const (
	CacheDirStrategyManager CacheDirStrategy = "manager"
	CacheDirStrategyUnified CacheDirStrategy = "unified"
)

// CacheBackend 选择远端缓存服务的实现。
type CacheBackend string

const (
	CacheBackendAuto    CacheBackend = "auto"
	CacheBackendActions CacheBackend = "actions"
	CacheBackendLocal   CacheBackend = "local"
)

// Inputs 对应流水线步骤的 with: 输入，环境变量形式为 INPUT_<NAME>。
type Inputs struct {
	Version             string `mapstructure:"version"`
	Registry            string `mapstructure:"registry"`
	GitHubToken         string `mapstructure:"github-token"`
	Cache               bool   `mapstructure:"cache"`
	CacheDependencyPath string `mapstructure:"cache-dependency-path"`
	InstallMethod       string `mapstructure:"install-method"`
	CacheDirStrategy    string `mapstructure:"cache-dir-strategy"`
	CacheDirCommand     string `mapstructure:"cache-dir-command"`

	// RunInstall 由 run-install 原始值解析并归一化而来。
	RunInstall []RunInstall `mapstructure:"-"`
}

// GlobalConfig 描述日志与缓存后端等运行参数，可来自配置文件或同名环境变量。
type GlobalConfig struct {
	LogLevel       string   `mapstructure:"log-level"`
	LogFormat      string   `mapstructure:"log-format"`
	LogFilePath    string   `mapstructure:"log-file"`
	LogMaxSize     int      `mapstructure:"log-max-size"`
	LogMaxBackups  int      `mapstructure:"log-max-backups"`
	LogCompress    bool     `mapstructure:"log-compress"`
	CacheBackend   string   `mapstructure:"cache-backend"`
	CacheLocalDir  string   `mapstructure:"cache-local-dir"`
	CacheTimeout   Duration `mapstructure:"cache-timeout"`
	MaxRetries     int      `mapstructure:"max-retries"`
	InitialBackoff Duration `mapstructure:"initial-backoff"`
}

// Config 聚合输入与全局参数。
type Config struct {
	Inputs Inputs       `mapstructure:",squash"`
	Global GlobalConfig `mapstructure:",squash"`
}

// RegistryValue 返回归一化后的 registry。
func (in Inputs) RegistryValue() Registry {
	return Registry(strings.ToLower(strings.TrimSpace(in.Registry)))
}

// InstallMethodValue 返回归一化后的安装策略。
func (in Inputs) InstallMethodValue() InstallMethod {
	return InstallMethod(strings.ToLower(strings.TrimSpace(in.InstallMethod)))
}

// CacheDirStrategyValue 返回归一化后的缓存目录策略。
func (in Inputs) CacheDirStrategyValue() CacheDirStrategy {
	return CacheDirStrategy(strings.ToLower(strings.TrimSpace(in.CacheDirStrategy)))
}

// CacheBackendValue 返回归一化后的缓存后端。
func (g GlobalConfig) CacheBackendValue() CacheBackend {
	return CacheBackend(strings.ToLower(strings.TrimSpace(g.CacheBackend)))
}
