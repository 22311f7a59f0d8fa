package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/config"
	"github.com/satwikShresth/OpenMario-sub003/internal/api/handler"
	"github.com/satwikShresth/OpenMario-sub003/internal/api/router"
	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/plan"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
	"github.com/satwikShresth/OpenMario-sub003/internal/requisite"
	"github.com/satwikShresth/OpenMario-sub003/internal/service"
	"github.com/satwikShresth/OpenMario-sub003/pkg/database"
	"github.com/satwikShresth/OpenMario-sub003/pkg/jwt"
	applogger "github.com/satwikShresth/OpenMario-sub003/pkg/logger"
	"github.com/satwikShresth/OpenMario-sub003/pkg/redis"
	"github.com/satwikShresth/OpenMario-sub003/pkg/tracing"
)

var version = "dev"

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("PLANNER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("graph_driver", cfg.Graph.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 链路追踪
	tracer, err := tracing.Setup(context.Background(), &cfg.Tracing, version, logger)
	if err != nil {
		logger.Fatal("链路追踪初始化失败", zap.Error(err))
	}

	// 4. 连接数据库并执行迁移
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Open(startCtx, cfg, logger)
	startCancel()
	if err != nil {
		logger.Fatal("数据库初始化失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 5. 连接 Redis（可选：失败时只用进程内缓存，限流放行）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，二级缓存与限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 6. 先修关系查询：Resolver → Cache(可选 Redis 二级缓存)
	repo := repository.NewRepository(db)
	resolver := requisite.NewResolver(repo.Course, repo.Requisite, logger)
	cacheOpts := []requisite.CacheOption{requisite.WithFetchTimeout(cfg.Conflict.LookupTimeout)}
	if rdb != nil {
		cacheOpts = append(cacheOpts, requisite.WithRemote(rdb))
	}
	lookup := requisite.NewCache(resolver, cfg.Conflict.RequisiteCacheTTL, logger, cacheOpts...)

	// 7. 冲突检测引擎与规划会话
	engine := conflict.NewEngine(lookup, logger,
		conflict.WithMaxConcurrency(cfg.Conflict.MaxConcurrentLookups),
		conflict.WithLookupTimeout(cfg.Conflict.LookupTimeout),
		conflict.WithTracerProvider(tracer.TracerProvider()),
	)
	hub := plan.NewHub(engine, repo.PlanEvent, repo.CompletedCourse, logger,
		plan.WithIdleTTL(cfg.Conflict.SessionIdleTTL),
	)

	// 8. 依赖注入: Service → Handler
	svc := service.NewService(cfg, repo, lookup, hub, engine, logger)
	h := handler.NewHandler(svc)

	jwtMgr := jwt.NewManager(&cfg.Auth)
	engineHTTP := router.Setup(cfg, h, jwtMgr, rdb, db, tracer.TracerProvider(), logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engineHTTP,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // ICS URL 导入与导出可能较慢
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止所有规划会话，等待进行中的冲突计算结束
	hub.Close()

	database.Close(db)
	if rdb != nil {
		rdb.Close()
	}

	if err := tracer.Shutdown(ctx); err != nil {
		logger.Error("链路追踪关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}
