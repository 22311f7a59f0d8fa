// Package cli 实现 planctl：离线冲突检查、目录导入、迁移与测试 Token 签发。
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/config"
	applogger "github.com/satwikShresth/OpenMario-sub003/pkg/logger"
)

// options 全局 flag
type options struct {
	configPath string
	jsonOutput bool
	verbose    bool
}

// NewRootCmd 构造 planctl 根命令
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "planctl",
		Short:         "课程计划冲突检测运维工具",
		Long:          "planctl 在服务之外直接读写课程关系图：导入目录、执行迁移、离线检查学期计划冲突。",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.jsonOutput {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "以 JSON 输出")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newCheckCmd(opts),
		newSeedCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// load 读取配置并构造日志；非 verbose 时只输出错误
func (o *options) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := applogger.NewCLI(o.verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
