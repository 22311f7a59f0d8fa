package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/satwikShresth/OpenMario-sub003/config"
)

// Connect 按 graph.driver 打开数据库，不执行迁移
func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	switch cfg.Graph.Driver {
	case "sqlite":
		db, err := OpenSQLite(cfg.Graph.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("使用 SQLite 存储", zap.String("path", cfg.Graph.SQLitePath))
		return db, nil
	case "postgres":
		return NewDB(&cfg.Database, cfg.Log.Level, logger)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Graph.Driver)
	}
}

// Open 打开数据库并执行对应驱动的迁移
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := Connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(ctx, db, cfg.Graph.Driver, logger); err != nil {
		Close(db)
		return nil, err
	}
	return db, nil
}

// Close 关闭底层连接
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
