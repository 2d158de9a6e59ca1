package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/pet-game/internal/config"
	"github.com/wfunc/pet-game/internal/database"
	"github.com/wfunc/pet-game/internal/events"
	"github.com/wfunc/pet-game/internal/service"
)

// RootOptions 全局参数
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	cfg    *config.Config
	logger *zap.Logger
	clock  clock.Clock
}

// ValidFormats 支持的输出格式
var ValidFormats = []string{"text", "json"}

// NewRootCommand 创建 petctl 根命令
func NewRootCommand() *cobra.Command {
	return newRootCommand(clock.New())
}

func newRootCommand(clk clock.Clock) *cobra.Command {
	opts := &RootOptions{clock: clk}

	cmd := &cobra.Command{
		Use:   "petctl",
		Short: "宠物游戏运维工具",
		Long:  "petctl 直接操作宠物游戏数据库：迁移表结构、签发令牌、发放代币、创建和查看宠物。",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "配置文件路径")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "输出调试日志")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "输出格式 (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewGrantCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewPetCommand(opts))

	return cmd
}

// load 读取配置，不依赖全局配置实例
func (o *RootOptions) load() error {
	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix("PET_GAME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.ConfigPath != "" {
		v.SetConfigFile(o.ConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("读取配置失败: %w", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	o.cfg = cfg

	if o.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		o.logger = l
	} else {
		o.logger = zap.NewNop()
	}
	return nil
}

// openDB 打开数据库，调用方负责关闭
func (o *RootOptions) openDB() (*gorm.DB, error) {
	return database.Open(&o.cfg.Database, o.logger.Named("database"))
}

// services 构建服务集合，命令行不推送事件
func (o *RootOptions) services(db *gorm.DB) (*service.Services, error) {
	params, err := o.cfg.Game.Pet.ToParams()
	if err != nil {
		return nil, err
	}
	return service.NewServices(db, params, o.clock, events.NewLogSink(o.logger.Named("events")), o.logger)
}

// print 按输出格式写出结果
func (o *RootOptions) print(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
