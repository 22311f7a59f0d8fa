package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satwikShresth/OpenMario-sub003/internal/seed"
)

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.json>",
		Short: "导入课程目录与先修关系",
		Long:  "按 graph.driver 写入：postgres 使用 pgx 批量管道，sqlite 使用 gorm 事务。重复导入是幂等的。",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("打开目录文件失败: %w", err)
			}
			defer f.Close()

			catalog, err := seed.Decode(f)
			if err != nil {
				return err
			}

			res, err := seed.Run(cmd.Context(), cfg, catalog, logger)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printSuccess(cmd.OutOrStdout(), "已导入 %d 门课程、%d 条关系（%s）", res.Courses, res.Relations, cfg.Graph.Driver)
			return nil
		},
	}
}
