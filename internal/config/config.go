package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 比赛配置
type GameConfig struct {
	RoomCount        int `yaml:"room_count"`        // 固定房间数
	MaxPlayers       int `yaml:"max_players"`       // 每房间最大人数
	WinScore         int `yaml:"win_score"`         // 冲线所需点击数
	CountdownSeconds int `yaml:"countdown_seconds"` // 倒计时秒数
}

// CountdownDuration 返回倒计时时长
func (c *GameConfig) CountdownDuration() time.Duration {
	return time.Duration(c.CountdownSeconds) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 设置默认值
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 1780
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Game.RoomCount == 0 {
		cfg.Game.RoomCount = 4
	}
	if cfg.Game.MaxPlayers == 0 {
		cfg.Game.MaxPlayers = 6
	}
	if cfg.Game.WinScore == 0 {
		cfg.Game.WinScore = 50
	}
	if cfg.Game.CountdownSeconds == 0 {
		cfg.Game.CountdownSeconds = 3
	}
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
