package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName 配置文件名（JSON），放在 -config 指定的目录下
const FileName = "arenasim.cfg.json"

// Config 服务端运行配置
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Battle BattleConfig `mapstructure:"battle"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// BattleConfig 战斗房间参数；MapFile 为空时只有场地边界墙
type BattleConfig struct {
	DefaultID string  `mapstructure:"defaultId"`
	TickRate  int     `mapstructure:"tickRate"`
	MapFile   string  `mapstructure:"mapFile"`
	Width     float64 `mapstructure:"width"`
	Height    float64 `mapstructure:"height"`
	AutoStart bool    `mapstructure:"autoStart"`
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("log.file", "app.log")
	viper.SetDefault("log.level", "debug")
	viper.SetDefault("battle.defaultId", "battle-1")
	viper.SetDefault("battle.tickRate", 20)
	viper.SetDefault("battle.mapFile", "")
	viper.SetDefault("battle.width", 100.0)
	viper.SetDefault("battle.height", 100.0)
	viper.SetDefault("battle.autoStart", false)
}

// Load 读取 configDir 下的配置文件并填充默认值。
// 配置文件不存在时仅使用默认值与环境变量（ARENASIM_SERVER_ADDR 等）
func Load(configDir string) (*Config, error) {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)
	viper.SetEnvPrefix("ARENASIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Battle.TickRate <= 0 {
		return nil, fmt.Errorf("battle.tickRate must be positive, got %d", cfg.Battle.TickRate)
	}
	return &cfg, nil
}
