package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wfunc/pet-game/internal/database"
	"github.com/wfunc/pet-game/internal/utils"
)

// NewMigrateCommand 迁移表结构
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db, opts.logger.Named("migration")); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]string{"status": "ok"}, func(w io.Writer) {
				fmt.Fprintln(w, "迁移完成")
			})
		},
	}
}

// NewTokenCommand 签发访问令牌
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		role   string
		expire time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <owner>",
		Short: "为身份签发JWT访问令牌",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jwtCfg := opts.cfg.Security.JWT
			if expire <= 0 {
				expire = time.Duration(jwtCfg.ExpireHours) * time.Hour
			}

			manager := utils.NewJWTManager(jwtCfg.Secret, jwtCfg.Issuer, expire, opts.clock)
			token, err := manager.GenerateToken(args[0], role)
			if err != nil {
				return err
			}

			out := map[string]interface{}{
				"owner":      args[0],
				"role":       role,
				"token":      token,
				"expires_at": opts.clock.Now().Add(manager.Expiry()).Unix(),
			}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintln(w, token)
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", utils.RolePlayer, "角色 (player|admin)")
	cmd.Flags().DurationVar(&expire, "expire", 0, "有效期，默认取配置")
	return cmd
}

// NewGrantCommand 发放代币
func NewGrantCommand(opts *RootOptions) *cobra.Command {
	var (
		raw      bool
		operator string
	)

	cmd := &cobra.Command{
		Use:   "grant <owner> <amount>",
		Short: "向身份发放代币",
		Long: `向身份发放代币（空投）。

amount 默认按整币解析，可带小数，例如 12.5；
指定 --raw 时按最小单位解析。`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decimals := opts.cfg.Game.Pet.TokenDecimals
			if raw {
				decimals = 0
			}
			amount, err := ParseAmount(args[1], decimals)
			if err != nil {
				return err
			}

			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			services, err := opts.services(db)
			if err != nil {
				return err
			}
			record, err := services.Wallet.Grant(cmd.Context(), operator, args[0], amount)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), record, func(w io.Writer) {
				fmt.Fprintf(w, "已发放 %s 给 %s，余额 %s（订单 %s）\n",
					FormatAmount(record.Amount, opts.cfg.Game.Pet.TokenDecimals),
					record.Owner,
					FormatAmount(record.AfterBalance, opts.cfg.Game.Pet.TokenDecimals),
					record.OrderNo)
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "amount 按最小单位解析")
	cmd.Flags().StringVar(&operator, "operator", "petctl", "操作人，记入流水")
	return cmd
}

// NewBalanceCommand 查询余额
func NewBalanceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <owner>",
		Short: "查询代币余额",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			services, err := opts.services(db)
			if err != nil {
				return err
			}
			wallet, err := services.Wallet.GetBalance(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), wallet, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %s\n", wallet.Owner, FormatAmount(wallet.Balance, opts.cfg.Game.Pet.TokenDecimals))
			})
		},
	}
}
