package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satwikShresth/OpenMario-sub003/pkg/jwt"
)

// newTokenCmd 用本地密钥签发 access token，供联调与压测使用
func newTokenCmd(opts *options) *cobra.Command {
	var userID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发测试用 access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role)
			if err != nil {
				return fmt.Errorf("签发 token 失败: %w", err)
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"user_id":      userID,
					"role":         role,
					"access_token": token,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "学生 user_id")
	cmd.Flags().StringVar(&role, "role", "student", "角色（student / admin）")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
