package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// FileConfig mirrors the optional TOML configuration file. Durations are
// strings in time.ParseDuration format ("60s", "5m").
type FileConfig struct {
	Port        string `toml:"port"`
	AppName     string `toml:"app_name"`
	Env         string `toml:"env"`
	DataFolder  string `toml:"data_folder"`
	LogLevel    string `toml:"log_level"`
	StoreDriver string `toml:"store_driver"`

	Session SessionFile `toml:"session"`
	Gateway GatewayFile `toml:"gateway"`
	Cors    CorsFile    `toml:"cors"`
}

type SessionFile struct {
	RefreshCheckInterval string `toml:"refresh_check_interval"`
	ExpiryBuffer         string `toml:"expiry_buffer"`
}

type GatewayFile struct {
	BaseURL   string  `toml:"base_url"`
	Timeout   string  `toml:"timeout"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

type CorsFile struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// ReadFile decodes a TOML configuration file.
func ReadFile(path string) (*FileConfig, error) {
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("[config.ReadFile] decoding %s: %w", path, err)
	}
	return &fc, nil
}
