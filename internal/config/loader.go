package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// inputKeys 列出所有可通过 INPUT_<NAME> 环境变量注入的键。
var inputKeys = []string{
	"version",
	"registry",
	"github-token",
	"run-install",
	"cache",
	"cache-dependency-path",
	"install-method",
	"cache-dir-strategy",
	"cache-dir-command",
	"log-level",
	"log-format",
	"log-file",
	"log-max-size",
	"log-max-backups",
	"log-compress",
	"cache-backend",
	"cache-local-dir",
	"cache-timeout",
	"max-retries",
	"initial-backoff",
}

// Load 读取步骤输入（INPUT_* 环境变量）与可选配置文件，注入默认值并校验。
// path 为空时只读取环境变量；环境变量优先于配置文件。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, key := range inputKeys {
		if err := v.BindEnv(key, inputEnvName(key)); err != nil {
			return nil, fmt.Errorf("绑定环境变量失败: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	hooks := mapstructure.ComposeDecodeHookFunc(durationDecodeHook(), strictBoolDecodeHook())
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	runInstall, err := loadRunInstall(v.Get("run-install"))
	if err != nil {
		return nil, newFieldError("run-install", err.Error())
	}
	cfg.Inputs.RunInstall = NormalizeRunInstall(runInstall)

	applyInputDefaults(&cfg.Inputs)
	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// inputEnvName 复刻 runner 的命名规则：空格转下划线并整体大写，连字符保留。
func inputEnvName(key string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(key, " ", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "latest")
	v.SetDefault("registry", string(RegistryNPM))
	v.SetDefault("cache", false)
	v.SetDefault("install-method", string(InstallMethodNPM))
	v.SetDefault("cache-dir-strategy", string(CacheDirStrategyManager))
	v.SetDefault("cache-dir-command", "vp pm cache dir")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "actions")
	v.SetDefault("log-file", "")
	v.SetDefault("log-max-size", 100)
	v.SetDefault("log-max-backups", 10)
	v.SetDefault("log-compress", true)
	v.SetDefault("cache-backend", string(CacheBackendAuto))
	v.SetDefault("cache-local-dir", "")
	v.SetDefault("cache-timeout", "10m")
	v.SetDefault("max-retries", 3)
	v.SetDefault("initial-backoff", "1s")
}

func loadRunInstall(raw interface{}) (RunInstallInput, error) {
	if s, ok := raw.(string); ok {
		return ParseRunInstall(s)
	}
	return DecodeRunInstall(raw)
}

func applyInputDefaults(in *Inputs) {
	if strings.TrimSpace(in.Version) == "" {
		in.Version = "latest"
	}
	in.Registry = string(in.RegistryValue())
	if in.Registry == "" {
		in.Registry = string(RegistryNPM)
	}
	in.InstallMethod = string(in.InstallMethodValue())
	if in.InstallMethod == "" {
		in.InstallMethod = string(InstallMethodNPM)
	}
	in.CacheDirStrategy = string(in.CacheDirStrategyValue())
	if in.CacheDirStrategy == "" {
		in.CacheDirStrategy = string(CacheDirStrategyManager)
	}
	in.CacheDependencyPath = strings.TrimSpace(in.CacheDependencyPath)
}

func applyGlobalDefaults(g *GlobalConfig) {
	if strings.TrimSpace(g.LogLevel) == "" {
		g.LogLevel = "info"
	}
	// runner 开启调试日志时同步提升级别
	if os.Getenv("RUNNER_DEBUG") == "1" && strings.EqualFold(g.LogLevel, "info") {
		g.LogLevel = "debug"
	}
	if g.LogFormat == "" {
		g.LogFormat = "actions"
	}
	g.LogFormat = strings.ToLower(strings.TrimSpace(g.LogFormat))
	g.CacheBackend = string(g.CacheBackendValue())
	if g.CacheBackend == "" {
		g.CacheBackend = string(CacheBackendAuto)
	}
	if g.CacheTimeout.DurationValue() == 0 {
		g.CacheTimeout = Duration(10 * time.Minute)
	}
	if g.InitialBackoff.DurationValue() == 0 {
		g.InitialBackoff = Duration(time.Second)
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// strictBoolDecodeHook 只接受 YAML 1.2 Core Schema 的布尔字面量，避免 "yes"/"1" 被悄悄接受。
func strictBoolDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
			return data, nil
		}
		value, err := ParseBoolInput(data.(string))
		if err != nil {
			return nil, err
		}
		return value, nil
	}
}

// ParseBoolInput 解析布尔输入：true/True/TRUE/false/False/FALSE，空串视为 false。
func ParseBoolInput(raw string) (bool, error) {
	switch strings.TrimSpace(raw) {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE", "":
		return false, nil
	default:
		return false, fmt.Errorf("布尔输入不符合 YAML 1.2 Core Schema: %q（应为 true|True|TRUE|false|False|FALSE）", raw)
	}
}
