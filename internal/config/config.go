package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	RedisAddr     string
	RedisPassword string
	DataDir       string

	// Render executor tuning. NavTimeout bounds navigation until network
	// idle, ReadyTimeout bounds the wait for the app-ready selector, and
	// SettleDelay is the fixed pause before the document is captured.
	NavTimeout    time.Duration
	ReadyTimeout  time.Duration
	SettleDelay   time.Duration
	ReadySelector string

	RenderConcurrency int
	RecacheCron       string
	MetaFixtures      string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func Load() Config {
	cfg := Config{
		AppEnv:        getenv("APP_ENV", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":5000"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DataDir:       getenv("DATA_DIR", "./data"),

		NavTimeout:    getenvDuration("NAV_TIMEOUT", 2*time.Minute),
		ReadyTimeout:  getenvDuration("READY_TIMEOUT", 2*time.Minute),
		SettleDelay:   getenvDuration("SETTLE_DELAY", 5*time.Second),
		ReadySelector: getenv("READY_SELECTOR", "flutter-view, canvas"),

		RenderConcurrency: getenvInt("RENDER_CONCURRENCY", 2),
		RecacheCron:       getenv("RECACHE_CRON", "0 2 * * *"),
		MetaFixtures:      os.Getenv("META_FIXTURES"),
	}
	if cfg.RedisAddr == "" {
		panic(fmt.Errorf("REDIS_ADDR is required"))
	}
	return cfg
}
