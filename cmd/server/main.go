package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/config"
	"github.com/tomwright01/dashboard/internal/api/handler"
	"github.com/tomwright01/dashboard/internal/api/middleware"
	"github.com/tomwright01/dashboard/internal/api/router"
	"github.com/tomwright01/dashboard/internal/repository"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/cache"
	"github.com/tomwright01/dashboard/pkg/database"
	applogger "github.com/tomwright01/dashboard/pkg/logger"
	"github.com/tomwright01/dashboard/pkg/metrics"
	"github.com/tomwright01/dashboard/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
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
		zap.String("log_level", cfg.Log.Level),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, applogger.IsDebug(&cfg.Log), logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Driver, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
	}

	// 4. 查询缓存：Redis 可用时共享缓存与限流，否则降级为进程内缓存
	var (
		rdb          *redis.Client
		queryCache   cache.Cache
		limiter      middleware.RateLimiter
		cacheBackend = "memory"
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, cfg.Cache.TTL, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，降级为进程内缓存，限流不可用", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		queryCache = rdb
		limiter = rdb
		cacheBackend = "redis"
	} else {
		queryCache = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.Cleanup)
	}

	// 5. Prometheus 指标
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, queryCache, m, logger)
	health := handler.NewHealthHandler(sqlDB.PingContext, cacheBackend)
	h := handler.NewHandler(svc, health)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, m, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
