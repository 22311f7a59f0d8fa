// Package tracing 安装 OpenTelemetry SDK TracerProvider。
// 请求链路（middleware.Tracing）与冲突检测（conflict.Engine）的 span 经此导出。
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/config"
)

// Provider 全局 TracerProvider 的持有者
// 未启用时 tp 为空，Shutdown 为空操作
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup 按配置创建导出器并注册为全局 TracerProvider 与 W3C 传播器
func Setup(ctx context.Context, cfg *config.TracingConfig, version string, logger *zap.Logger) (*Provider, error) {
	return setup(ctx, cfg, version, os.Stdout, logger)
}

func setup(ctx context.Context, cfg *config.TracingConfig, version string, w io.Writer, logger *zap.Logger) (*Provider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		logger.Info("链路追踪未启用")
		return &Provider{}, nil
	}

	exp, err := newExporter(ctx, cfg, w)
	if err != nil {
		return nil, err
	}

	tp := newTracerProvider(cfg, version, sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("链路追踪导出失败", zap.Error(err))
	}))

	logger.Info("链路追踪已启用",
		zap.String("exporter", cfg.Exporter),
		zap.String("endpoint", cfg.Endpoint),
		zap.Float64("sample_ratio", cfg.SampleRatio),
	)
	return &Provider{tp: tp}, nil
}

func newExporter(ctx context.Context, cfg *config.TracingConfig, w io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("创建 stdout 导出器失败: %w", err)
		}
		return exp, nil
	case "otlp":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("创建 OTLP 导出器失败: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("不支持的追踪导出器: %s", cfg.Exporter)
	}
}

// newTracerProvider 父 span 已采样时跟随，否则按比例采样
func newTracerProvider(cfg *config.TracingConfig, version string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", version),
	))
	if err != nil {
		res = resource.Default()
	}

	opts = append(opts,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	return sdktrace.NewTracerProvider(opts...)
}

// TracerProvider 返回已注册的 Provider；未启用时返回全局（no-op）实现
func (p *Provider) TracerProvider() trace.TracerProvider {
	if p.tp == nil {
		return otel.GetTracerProvider()
	}
	return p.tp
}

// Shutdown 刷新缓冲中的 span 并关闭导出器
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
