package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/config"
	"github.com/satwikShresth/OpenMario-sub003/pkg/database"
)

// Seeder 目录写入器
type Seeder interface {
	Seed(ctx context.Context, c *Catalog) (*Result, error)
}

// Run 按 graph.driver 选择写入器并导入目录
// postgres 走 pgx 批量管道；sqlite 走 gorm
func Run(ctx context.Context, cfg *config.Config, c *Catalog, logger *zap.Logger) (*Result, error) {
	switch cfg.Graph.Driver {
	case "postgres":
		// 先用 gorm 连接执行迁移，保证表结构就绪
		db, err := database.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		database.Close(db)

		s, err := NewPgxSeeder(ctx, cfg.Database.URL(), logger)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Seed(ctx, c)

	case "sqlite":
		db, err := database.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		defer database.Close(db)
		return NewGormSeeder(db, logger).Seed(ctx, c)

	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Graph.Driver)
	}
}
