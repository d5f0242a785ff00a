package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	SessionCookie    string `mapstructure:"session_cookie"`
	SessionExpiryMin int    `mapstructure:"session_expiry_min"`

	// 等待中的游戏多少分钟没人加入就被清理
	WaitingTTLMin int `mapstructure:"waiting_ttl_min"`
}

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

func InitConfig() *AppConfig {
	v := viper.New()

	v.SetConfigFile("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.SetDefault("session_cookie", "dice_duel_session")
	v.SetDefault("session_expiry_min", 24*60)
	v.SetDefault("waiting_ttl_min", 30)

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("解析配置失败: %w", err))
	}

	return &config
}
