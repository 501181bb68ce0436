package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full engine configuration loaded from configs/config.yml.
type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	DB struct {
		Driver       string `mapstructure:"driver"` // sqlite | postgres
		Path         string `mapstructure:"path"`   // sqlite file
		DSN          string `mapstructure:"dsn"`    // postgres connection string
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
	} `mapstructure:"db"`

	Redis struct {
		Enabled       bool   `mapstructure:"enabled"`
		Addr          string `mapstructure:"addr"`
		Password      string `mapstructure:"password"`
		DB            int    `mapstructure:"db"`
		ChannelPrefix string `mapstructure:"channel_prefix"`
	} `mapstructure:"redis"`

	Engine Engine `mapstructure:"engine"`
}

// Engine holds the tuning knobs of the generation and resolution passes.
type Engine struct {
	Concurrency      int           `mapstructure:"concurrency"`       // buildings evaluated in parallel
	StoreTimeout     time.Duration `mapstructure:"store_timeout"`     // per store call
	DedupWindow      time.Duration `mapstructure:"dedup_window"`      // duplicate suppression window
	GenerateInterval time.Duration `mapstructure:"generate_interval"` // scheduler cadence, 0 disables
	ResolveInterval  time.Duration `mapstructure:"resolve_interval"`  // scheduler cadence, 0 disables
}

// Load reads configs/<name>.yml from path and unmarshals it with defaults
// applied. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine: defaults carry a runnable local setup.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "alerts.db")
	v.SetDefault("db.max_open_conns", 1)
	v.SetDefault("db.max_idle_conns", 1)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.channel_prefix", "alerts")

	v.SetDefault("engine.concurrency", 8)
	v.SetDefault("engine.store_timeout", 5*time.Second)
	v.SetDefault("engine.dedup_window", 6*time.Hour)
	v.SetDefault("engine.generate_interval", 15*time.Minute)
	v.SetDefault("engine.resolve_interval", 30*time.Minute)
}
