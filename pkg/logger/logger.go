package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satwikShresth/OpenMario-sub003/config"
)

// NewLogger 根据配置初始化服务端 Zap 日志
// json 格式按配置采样，console 格式用于本地开发，始终不采样
func NewLogger(cfg *config.LogConfig, opts ...zap.Option) (*zap.Logger, error) {
	zapCfg, err := buildConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}

	logger, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}
	return logger, nil
}

// NewCLI planctl 使用的日志：写 stderr，不带调用位置
// 避免与 --json 的 stdout 输出混在一起
func NewCLI(verbose bool) (*zap.Logger, error) {
	level := zapcore.ErrorLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.DisableCaller = true
	zapCfg.DisableStacktrace = !verbose
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.TimeKey = ""
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}
	return logger, nil
}

func buildConfig(cfg *config.LogConfig) (zap.Config, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json", "":
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if !cfg.Sampling {
			zapCfg.Sampling = nil
		}
	default:
		return zap.Config{}, fmt.Errorf("无效的日志格式 %q", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg, nil
}
