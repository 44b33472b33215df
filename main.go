package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/any-hub/setup-vp/internal/config"
	"github.com/any-hub/setup-vp/internal/logging"
	"github.com/any-hub/setup-vp/internal/phase"
	"github.com/any-hub/setup-vp/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	phase       phase.Phase
	stateFile   string
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行对应阶段，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global, stdOut)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 装配顺序：状态存储 → 执行器/输出 → 缓存后端 → 各阶段协作者
	deps, err := buildDeps(cfg, opts, logger)
	if err != nil {
		logger.WithFields(logging.BaseFields("startup", string(opts.phase))).Error(err.Error())
		return 1
	}

	fields := logging.BaseFields("startup", string(opts.phase))
	fields["version"] = version.Full()
	fields["config"] = opts.configPath
	fields["cache"] = cfg.Inputs.Cache
	logger.WithFields(fields).Debug("配置加载完成")

	ran, err := phase.Dispatch(ctx, opts.phase, deps)
	if err != nil {
		logger.WithFields(logging.BaseFields("phase_failed", string(ran))).Error(err.Error())
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("setup-vp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		phaseFlag  string
		stateFlag  string
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "可选配置文件路径（可被 SETUP_VP_CONFIG 指定）")
	fs.StringVar(&phaseFlag, "phase", "auto", "执行阶段：auto、main 或 post")
	fs.StringVar(&stateFlag, "state-file", "", "以本地 JSON 文件保存跨阶段状态（默认使用 runner 状态）")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	p, err := phase.ParsePhase(phaseFlag)
	if err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("SETUP_VP_CONFIG")
	if configFlag != "" {
		path = configFlag
	}

	return cliOptions{
		configPath:  path,
		phase:       p,
		stateFile:   stateFlag,
		showVersion: showVer,
	}, nil
}
