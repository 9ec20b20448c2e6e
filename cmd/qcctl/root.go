package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/config"
	"github.com/tomwright01/dashboard/internal/repository"
	"github.com/tomwright01/dashboard/internal/service"
	"github.com/tomwright01/dashboard/pkg/cache"
	"github.com/tomwright01/dashboard/pkg/database"
	applogger "github.com/tomwright01/dashboard/pkg/logger"
)

// app 单次命令执行所需的依赖
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	svc    *service.Service
	logger *zap.Logger
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "qcctl",
		Short:         "QC dashboard maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")

	// 每个子命令按需初始化，避免 --help 时连接数据库
	open := func() (*app, error) {
		return bootstrap(configPath)
	}

	root.AddCommand(
		newSearchCmd(open),
		newOutstandingCmd(open),
		newQCCmd(open),
		newExportCmd(open),
		newMigrateCmd(open),
	)
	return root
}

// bootstrap 加载配置并组装 Service，CLI 不使用 Redis，缓存固定为进程内
func bootstrap(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	// CLI 输出走 stdout，日志只保留警告以上
	logCfg := cfg.Log
	logCfg.Level = "warn"
	logger, err := applogger.NewLogger(&logCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, false, logger)
	if err != nil {
		return nil, err
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, cache.Nop{}, nil, logger)
	return &app{cfg: cfg, db: db, svc: svc, logger: logger}, nil
}

// printJSON 以缩进 JSON 输出结果
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
