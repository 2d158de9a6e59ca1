package config

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/wfunc/pet-game/internal/game/pet"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// WebSocketConfig WebSocket配置
// 事件推送挂在HTTP服务的Path上
type WebSocketConfig struct {
	Path              string        `mapstructure:"path"`
	ReadBufferSize    int           `mapstructure:"read_buffer_size"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size"`
	MaxMessageSize    int64         `mapstructure:"max_message_size"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	PongTimeout       time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// GameConfig 游戏配置
type GameConfig struct {
	Pet PetConfig `mapstructure:"pet"`
}

// PetConfig 宠物规则配置
// 代币数量以整币配置，转换时乘以 10^TokenDecimals
type PetConfig struct {
	SecondsPerDecay   int64 `mapstructure:"seconds_per_decay"`
	MaxDecayIntervals int   `mapstructure:"max_decay_intervals"`

	HungerDecay    int `mapstructure:"hunger_decay"`
	HappinessDecay int `mapstructure:"happiness_decay"`
	StrengthDecay  int `mapstructure:"strength_decay"`

	FeedHungerRelief   int `mapstructure:"feed_hunger_relief"`
	FeedEnergyGain     int `mapstructure:"feed_energy_gain"`
	TrainMinEnergy     int `mapstructure:"train_min_energy"`
	TrainStrengthGain  int `mapstructure:"train_strength_gain"`
	TrainEnergyCost    int `mapstructure:"train_energy_cost"`
	TrainHungerGain    int `mapstructure:"train_hunger_gain"`
	CleanHappinessGain int `mapstructure:"clean_happiness_gain"`

	TokenDecimals int   `mapstructure:"token_decimals"`
	CostFeed      int64 `mapstructure:"cost_feed"`
	CostTrain     int64 `mapstructure:"cost_train"`
	RewardClean   int64 `mapstructure:"reward_clean"`

	Initial InitialStats `mapstructure:"initial"`
}

// InitialStats 新宠物初始属性
type InitialStats struct {
	Hunger    int `mapstructure:"hunger"`
	Strength  int `mapstructure:"strength"`
	Happiness int `mapstructure:"happiness"`
	Energy    int `mapstructure:"energy"`
}

// ToParams 转换为规则参数
func (c PetConfig) ToParams() (pet.Params, error) {
	if c.TokenDecimals < 0 || c.TokenDecimals > 18 {
		return pet.Params{}, fmt.Errorf("token_decimals 超出范围: %d", c.TokenDecimals)
	}
	for name, v := range map[string]int{
		"train_min_energy":  c.TrainMinEnergy,
		"initial.hunger":    c.Initial.Hunger,
		"initial.strength":  c.Initial.Strength,
		"initial.happiness": c.Initial.Happiness,
		"initial.energy":    c.Initial.Energy,
	} {
		if v < int(pet.MinStat) || v > int(pet.MaxStat) {
			return pet.Params{}, fmt.Errorf("%s 超出范围: %d", name, v)
		}
	}

	unit := pet.TokenUnit(c.TokenDecimals)
	for name, v := range map[string]int64{
		"cost_feed":    c.CostFeed,
		"cost_train":   c.CostTrain,
		"reward_clean": c.RewardClean,
	} {
		if v < 0 || v > math.MaxInt64/unit {
			return pet.Params{}, fmt.Errorf("%s 超出范围 (0-%d): %d", name, math.MaxInt64/unit, v)
		}
	}

	p := pet.Params{
		SecondsPerDecay:    c.SecondsPerDecay,
		MaxDecayIntervals:  c.MaxDecayIntervals,
		HungerDecay:        c.HungerDecay,
		HappinessDecay:     c.HappinessDecay,
		StrengthDecay:      c.StrengthDecay,
		FeedHungerRelief:   c.FeedHungerRelief,
		FeedEnergyGain:     c.FeedEnergyGain,
		TrainMinEnergy:     pet.Stat(c.TrainMinEnergy),
		TrainStrengthGain:  c.TrainStrengthGain,
		TrainEnergyCost:    c.TrainEnergyCost,
		TrainHungerGain:    c.TrainHungerGain,
		CleanHappinessGain: c.CleanHappinessGain,
		CostFeed:           c.CostFeed * unit,
		CostTrain:          c.CostTrain * unit,
		RewardClean:        c.RewardClean * unit,
		Initial: pet.State{
			Hunger:    pet.Stat(c.Initial.Hunger),
			Strength:  pet.Stat(c.Initial.Strength),
			Happiness: pet.Stat(c.Initial.Happiness),
			Energy:    pet.Stat(c.Initial.Energy),
		},
	}
	if err := p.Validate(); err != nil {
		return pet.Params{}, err
	}
	return p, nil
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 无效: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.Security.JWT.Secret == "" {
		return fmt.Errorf("security.jwt.secret 不能为空")
	}
	if _, err := c.Game.Pet.ToParams(); err != nil {
		return fmt.Errorf("game.pet 配置无效: %w", err)
	}
	return nil
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		v.SetEnvPrefix("PET_GAME")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		SetDefaults(v)

		if err = v.ReadInConfig(); err != nil {
			// 配置文件不存在时使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		loaded := &Config{}
		if err = v.Unmarshal(loaded); err != nil {
			return
		}
		if err = loaded.Validate(); err != nil {
			return
		}

		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})

	return err
}

// Load 从指定viper实例解析配置，不影响全局实例
func Load(vp *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetDefaults 设置默认配置值
func SetDefaults(v *viper.Viper) {
	// 服务器
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 数据库
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/pet-game.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// WebSocket
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 8192)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.enable_compression", true)

	// 宠物规则
	v.SetDefault("game.pet.seconds_per_decay", 3600)
	v.SetDefault("game.pet.max_decay_intervals", 255)
	v.SetDefault("game.pet.hunger_decay", 5)
	v.SetDefault("game.pet.happiness_decay", 5)
	v.SetDefault("game.pet.strength_decay", 2)
	v.SetDefault("game.pet.feed_hunger_relief", 20)
	v.SetDefault("game.pet.feed_energy_gain", 5)
	v.SetDefault("game.pet.train_min_energy", 20)
	v.SetDefault("game.pet.train_strength_gain", 10)
	v.SetDefault("game.pet.train_energy_cost", 20)
	v.SetDefault("game.pet.train_hunger_gain", 10)
	v.SetDefault("game.pet.clean_happiness_gain", 20)
	v.SetDefault("game.pet.token_decimals", 6)
	v.SetDefault("game.pet.cost_feed", 10)
	v.SetDefault("game.pet.cost_train", 15)
	v.SetDefault("game.pet.reward_clean", 5)
	v.SetDefault("game.pet.initial.hunger", 0)
	v.SetDefault("game.pet.initial.strength", 50)
	v.SetDefault("game.pet.initial.happiness", 100)
	v.SetDefault("game.pet.initial.energy", 100)

	// 日志
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "both")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "pet-game.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)

	// 安全
	v.SetDefault("security.jwt.secret", "change-me-in-production")
	v.SetDefault("security.jwt.issuer", "pet-game")
	v.SetDefault("security.jwt.expire_hours", 24)
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
// 新配置校验失败时保留旧配置
func Watch(callback func(*Config)) {
	if v == nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg, err := Load(v)
		if err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}

		fmt.Printf("配置已重新加载: %s\n", e.Name)
	})
	v.WatchConfig()
}

// GetString 获取字符串配置
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetDuration 获取时间间隔配置
func GetDuration(key string) time.Duration {
	return v.GetDuration(key)
}

// IsSet 检查配置项是否存在
func IsSet(key string) bool {
	return v.IsSet(key)
}
