package config

import (
	"testing"
	"time"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("默认配置应通过校验: %v", err)
	}
}

func TestValidateFieldRules(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*Config)
		shouldErr bool
	}{
		{"registry github ok", func(c *Config) { c.Inputs.Registry = "github" }, false},
		{"registry unsupported", func(c *Config) { c.Inputs.Registry = "jsr" }, true},
		{"install method script ok", func(c *Config) { c.Inputs.InstallMethod = "script" }, false},
		{"install method unsupported", func(c *Config) { c.Inputs.InstallMethod = "brew" }, true},
		{"unified strategy needs command", func(c *Config) {
			c.Inputs.CacheDirStrategy = "unified"
			c.Inputs.CacheDirCommand = "  "
		}, true},
		{"unified strategy ok", func(c *Config) { c.Inputs.CacheDirStrategy = "unified" }, false},
		{"empty run-install arg", func(c *Config) {
			c.Inputs.RunInstall = []RunInstall{{Args: []string{"--frozen-lockfile", " "}}}
		}, true},
		{"log format unsupported", func(c *Config) { c.Global.LogFormat = "xml" }, true},
		{"cache backend unsupported", func(c *Config) { c.Global.CacheBackend = "s3" }, true},
		{"negative retries", func(c *Config) { c.Global.MaxRetries = -1 }, true},
		{"zero timeout", func(c *Config) { c.Global.CacheTimeout = 0 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFieldErrorFormatsPath(t *testing.T) {
	err := newFieldError(runInstallField(2, "args"), "不能包含空参数")
	if err.Error() != "run-install[2].args: 不能包含空参数" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func validConfig() *Config {
	return &Config{
		Inputs: Inputs{
			Version:          "latest",
			Registry:         "npm",
			InstallMethod:    "npm",
			CacheDirStrategy: "manager",
			CacheDirCommand:  "vp pm cache dir",
		},
		Global: GlobalConfig{
			LogLevel:       "info",
			LogFormat:      "actions",
			CacheBackend:   "auto",
			CacheTimeout:   Duration(time.Minute),
			MaxRetries:     1,
			InitialBackoff: Duration(time.Second),
		},
	}
}
