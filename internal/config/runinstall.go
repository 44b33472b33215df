package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// RunInstall 描述一次 `vp install` 调用：工作目录与额外参数。
type RunInstall struct {
	Cwd  string   `mapstructure:"cwd"`
	Args []string `mapstructure:"args"`
}

// RunInstallKind 标记 run-install 原始值的形态。
type RunInstallKind int

const (
	RunInstallNone RunInstallKind = iota
	RunInstallBool
	RunInstallSingle
	RunInstallList
)

// RunInstallInput 是 run-install 的带标签联合体：缺省 / 布尔 / 单对象 / 对象数组。
type RunInstallInput struct {
	Kind    RunInstallKind
	Enabled bool
	Single  RunInstall
	List    []RunInstall
}

var errRunInstallShape = errors.New("expected boolean, object or array of objects")

// ParseRunInstall 解析 YAML/JSON 字符串形式的 run-install 输入，不做归一化。
func ParseRunInstall(raw string) (RunInstallInput, error) {
	switch strings.TrimSpace(raw) {
	case "", "null":
		return RunInstallInput{Kind: RunInstallNone}, nil
	case "false":
		return RunInstallInput{Kind: RunInstallBool}, nil
	case "true":
		return RunInstallInput{Kind: RunInstallBool, Enabled: true}, nil
	}

	var parsed interface{}
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return RunInstallInput{}, fmt.Errorf("invalid run-install input: %w", err)
	}
	return DecodeRunInstall(parsed)
}

// DecodeRunInstall 校验已解码的值（来自 YAML 或配置文件）并构造联合体。
func DecodeRunInstall(value interface{}) (RunInstallInput, error) {
	switch v := value.(type) {
	case nil:
		return RunInstallInput{Kind: RunInstallNone}, nil
	case bool:
		return RunInstallInput{Kind: RunInstallBool, Enabled: v}, nil
	case map[string]interface{}:
		entry, err := decodeRunInstallObject(v)
		if err != nil {
			return RunInstallInput{}, err
		}
		return RunInstallInput{Kind: RunInstallSingle, Single: entry}, nil
	case []interface{}:
		list := make([]RunInstall, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return RunInstallInput{}, fmt.Errorf("invalid run-install input: [%d]: %w", i, errRunInstallShape)
			}
			entry, err := decodeRunInstallObject(obj)
			if err != nil {
				return RunInstallInput{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, entry)
		}
		return RunInstallInput{Kind: RunInstallList, List: list}, nil
	case []map[string]interface{}:
		items := make([]interface{}, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return DecodeRunInstall(items)
	default:
		return RunInstallInput{}, fmt.Errorf("invalid run-install input: %w, got %T", errRunInstallShape, value)
	}
}

// NormalizeRunInstall 将联合体展开为有序的调用列表。
func NormalizeRunInstall(in RunInstallInput) []RunInstall {
	switch in.Kind {
	case RunInstallBool:
		if in.Enabled {
			return []RunInstall{{}}
		}
		return nil
	case RunInstallSingle:
		return []RunInstall{in.Single}
	case RunInstallList:
		out := make([]RunInstall, len(in.List))
		copy(out, in.List)
		return out
	default:
		return nil
	}
}

func decodeRunInstallObject(obj map[string]interface{}) (RunInstall, error) {
	var entry RunInstall
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &entry,
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
	})
	if err != nil {
		return RunInstall{}, err
	}
	if err := decoder.Decode(obj); err != nil {
		return RunInstall{}, fmt.Errorf("invalid run-install input: %w", err)
	}
	return entry, nil
}
