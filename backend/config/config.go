package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host string
	Port int
}

type Log struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

type Store struct {
	PortHistoryMax      int
	OnlineWindowMinutes int
}

type Config struct {
	HTTP  HTTP
	Log   Log
	Store Store
}

// Load reads the YAML config at path. A missing file is not an error;
// defaults apply and the PORT environment variable still overrides the
// listen port.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("store.port_history_max", 50)
	v.SetDefault("store.online_window_minutes", 5)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		HTTP: HTTP{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Log: Log{
			Path:       v.GetString("log.path"),
			Level:      v.GetString("log.level"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
		},
		Store: Store{
			PortHistoryMax:      v.GetInt("store.port_history_max"),
			OnlineWindowMinutes: v.GetInt("store.online_window_minutes"),
		},
	}

	if env := os.Getenv("PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil {
			cfg.HTTP.Port = port
		}
	}
	if cfg.Store.PortHistoryMax <= 0 {
		cfg.Store.PortHistoryMax = 50
	}
	if cfg.Store.OnlineWindowMinutes <= 0 {
		cfg.Store.OnlineWindowMinutes = 5
	}
	return cfg, nil
}
