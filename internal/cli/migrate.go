package cli

import (
	"github.com/spf13/cobra"

	"github.com/satwikShresth/OpenMario-sub003/pkg/database"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.Connect(cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			status, err := database.Migrate(cmd.Context(), db, cfg.Graph.Driver, logger)
			if err != nil {
				if status != nil && status.Dirty {
					printError(cmd.ErrOrStderr(), "版本 %d 处于 dirty 状态，需人工修复", status.Version)
				}
				return err
			}

			w := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(w, status)
			}
			if status.Applied == 0 {
				printSuccess(w, "已是最新（%s，版本 %d）", status.Driver, status.Version)
				return nil
			}
			printSuccess(w, "迁移完成（%s）：%d → %d，共 %d 个", status.Driver, status.Previous, status.Version, status.Applied)
			return nil
		},
	}
}
