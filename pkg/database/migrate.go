package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

//go:embed sqlite_migrations/*.sql
var sqliteMigrationsFS embed.FS

// ErrDirtyMigration 上次迁移中途失败，需要人工修复后再启动
var ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")

// MigrationStatus 一次迁移的结果
type MigrationStatus struct {
	Driver   string `json:"driver"`
	Previous int64  `json:"previous"` // 迁移前版本，0 表示空库
	Version  int64  `json:"version"`
	Applied  int    `json:"applied"` // 本次应用的迁移数
	Dirty    bool   `json:"dirty"`
}

// Migrate 按驱动执行嵌入的迁移
// postgres 使用 golang-migrate，sqlite 使用 goose；dirty 状态返回 ErrDirtyMigration
func Migrate(ctx context.Context, db *gorm.DB, driver string, logger *zap.Logger) (*MigrationStatus, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	var status *MigrationStatus
	switch driver {
	case "postgres":
		status, err = migratePostgres(ctx, sqlDB)
	case "sqlite":
		status, err = migrateSQLite(ctx, sqlDB)
	default:
		return nil, fmt.Errorf("不支持的迁移驱动: %s", driver)
	}
	if err != nil {
		if status != nil && status.Dirty {
			logger.Error("数据库迁移处于 dirty 状态",
				zap.String("driver", driver),
				zap.Int64("version", status.Version),
			)
		}
		return status, err
	}

	logger.Info("数据库迁移完成",
		zap.String("driver", status.Driver),
		zap.Int64("previous", status.Previous),
		zap.Int64("version", status.Version),
		zap.Int("applied", status.Applied),
	)
	return status, nil
}

// ── PostgreSQL（golang-migrate） ──

func migratePostgres(ctx context.Context, db *sql.DB) (*MigrationStatus, error) {
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

	status := &MigrationStatus{Driver: "postgres"}
	prev, dirty, err := postgresVersion(m)
	if err != nil {
		return nil, err
	}
	status.Previous, status.Version, status.Dirty = prev, prev, dirty
	if dirty {
		return status, fmt.Errorf("%w: version=%d", ErrDirtyMigration, prev)
	}

	// golang-migrate 不接受 ctx，取消时请求在当前迁移结束后停止
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		status.Version, status.Dirty, _ = postgresVersion(m)
		return status, fmt.Errorf("执行迁移失败: %w", err)
	}

	if status.Version, status.Dirty, err = postgresVersion(m); err != nil {
		return nil, err
	}
	status.Applied = int(status.Version - status.Previous)
	return status, nil
}

func postgresVersion(m *migrate.Migrate) (int64, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("读取迁移版本失败: %w", err)
	}
	return int64(v), dirty, nil
}

// ── SQLite（goose） ──

func migrateSQLite(ctx context.Context, db *sql.DB) (*MigrationStatus, error) {
	fsys, err := fs.Sub(sqliteMigrationsFS, "sqlite_migrations")
	if err != nil {
		return nil, fmt.Errorf("加载 SQLite 迁移文件失败: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("初始化 SQLite 迁移失败: %w", err)
	}

	status := &MigrationStatus{Driver: "sqlite"}
	if status.Previous, err = provider.GetDBVersion(ctx); err != nil {
		return nil, fmt.Errorf("读取 SQLite 迁移版本失败: %w", err)
	}

	results, err := provider.Up(ctx)
	status.Applied = len(results)
	if err != nil {
		return status, fmt.Errorf("执行 SQLite 迁移失败: %w", err)
	}

	if status.Version, err = provider.GetDBVersion(ctx); err != nil {
		return nil, fmt.Errorf("读取 SQLite 迁移版本失败: %w", err)
	}
	return status, nil
}
