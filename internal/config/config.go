package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env           string
	HTTPAddr      string
	ChainRPCURL   string
	Contract      string
	ProfileFile   string
	JWTSecret     string
	AdminLogin    string
	AdminPassHash string
	SettleDelay   time.Duration
	RefreshSpec   string
	Geocode       GeocodeConfig
	Preview       PreviewConfig
	Logging       LoggingConfig
}

type GeocodeConfig struct {
	Endpoint string
	Language string
}

type PreviewConfig struct {
	Timeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:           getenv("APP_ENV", "dev"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		ChainRPCURL:   os.Getenv("CHAIN_RPC_URL"),
		Contract:      os.Getenv("CONTRACT_ADDRESS"),
		ProfileFile:   os.Getenv("CHAIN_PROFILE_FILE"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminLogin:    getenv("ADMIN_LOGIN", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
		SettleDelay:   getenvMillis("SETTLE_DELAY_MS", 2000),
		RefreshSpec:   getenv("REFRESH_CRON", "@every 1m"),
		Geocode: GeocodeConfig{
			Endpoint: getenv("GEOCODE_ENDPOINT", "https://nominatim.openstreetmap.org/search"),
			Language: getenv("GEOCODE_LANGUAGE", "en"),
		},
		Preview: PreviewConfig{
			Timeout: getenvMillis("PREVIEW_TIMEOUT_MS", 8000),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
			File:   os.Getenv("LOG_FILE"),
		},
	}

	// A profile file supplies the chain endpoint when the env vars are
	// absent; requiring one or the other keeps startup failures loud.
	if cfg.ProfileFile == "" {
		if cfg.ChainRPCURL == "" {
			return nil, fmt.Errorf("CHAIN_RPC_URL is required")
		}
		if cfg.Contract == "" {
			return nil, fmt.Errorf("CONTRACT_ADDRESS is required")
		}
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvMillis(key string, def int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Millisecond
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed < 0 {
		return time.Duration(def) * time.Millisecond
	}
	return time.Duration(parsed) * time.Millisecond
}
