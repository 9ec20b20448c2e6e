package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus 当前迁移版本
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Empty   bool // 尚未执行任何迁移
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移实例失败: %w", err)
	}
	return m, nil
}

// RunMigrations 应用所有未执行的 postgres 迁移
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	status, err := statusOf(m)
	if err != nil {
		return err
	}
	if status.Dirty {
		logger.Warn("数据库迁移处于 dirty 状态", zap.Uint("version", status.Version))
	} else {
		logger.Info("数据库迁移完成", zap.Uint("version", status.Version))
	}
	return nil
}

// Status 查询迁移版本，不做任何变更
func Status(db *sql.DB) (*MigrationStatus, error) {
	m, err := newMigrator(db)
	if err != nil {
		return nil, err
	}
	return statusOf(m)
}

func statusOf(m *migrate.Migrate) (*MigrationStatus, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationStatus{Empty: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取迁移版本失败: %w", err)
	}
	return &MigrationStatus{Version: version, Dirty: dirty}, nil
}
