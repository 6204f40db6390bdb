package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string
	RedisAddr   string

	NodeURL      string
	NodeCapacity int
	NodeIDFile   string

	LoadThreshold     int
	HeartbeatInterval time.Duration
	NodeStaleAfter    time.Duration

	SessionTTL       time.Duration
	SessionKeep      int
	SessionIdleAfter time.Duration
	OnlineWindow     time.Duration

	MessageRateLimit  int
	MessageRateWindow time.Duration

	NotificationRetention time.Duration
	PerfLogRetention      time.Duration
	EventReminderLead     time.Duration

	APIRateLimitPerMin int
	TrustedPeerCIDRs   []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		NodeURL:            getEnv("NODE_URL", "http://localhost:8080"),
		NodeCapacity:       getEnvInt("NODE_CAPACITY", 500),
		NodeIDFile:         getEnv("NODE_ID_FILE", "node_id"),
		LoadThreshold:      getEnvInt("LOAD_THRESHOLD", 200),
		SessionKeep:        getEnvInt("SESSION_KEEP", 3),
		MessageRateLimit:   getEnvInt("MESSAGE_RATE_LIMIT", 10),
		APIRateLimitPerMin: getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		TrustedPeerCIDRs:   splitList(os.Getenv("TRUSTED_PEER_CIDRS")),
	}

	durations := []struct {
		dst *time.Duration
		key string
		def string
	}{
		{&cfg.HeartbeatInterval, "HEARTBEAT_INTERVAL", "5m"},
		{&cfg.NodeStaleAfter, "NODE_STALE_AFTER", "5m"},
		{&cfg.SessionTTL, "SESSION_TTL", "1h"},
		{&cfg.SessionIdleAfter, "SESSION_IDLE_AFTER", "15m"},
		{&cfg.OnlineWindow, "ONLINE_WINDOW", "15m"},
		{&cfg.MessageRateWindow, "MESSAGE_RATE_WINDOW", "60s"},
		{&cfg.NotificationRetention, "NOTIFICATION_RETENTION", "24h"},
		{&cfg.PerfLogRetention, "PERF_LOG_RETENTION", "168h"},
		{&cfg.EventReminderLead, "EVENT_REMINDER_LEAD", "15m"},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.NodeURL == "" {
		errs = append(errs, "NODE_URL is required")
	}
	if c.NodeCapacity <= 0 {
		errs = append(errs, "NODE_CAPACITY must be > 0")
	}
	if c.LoadThreshold <= 0 {
		errs = append(errs, "LOAD_THRESHOLD must be > 0")
	}
	if c.HeartbeatInterval <= 0 {
		errs = append(errs, "HEARTBEAT_INTERVAL must be > 0")
	}
	if c.NodeStaleAfter <= 0 {
		errs = append(errs, "NODE_STALE_AFTER must be > 0")
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, "SESSION_TTL must be > 0")
	}
	if c.SessionKeep <= 0 {
		errs = append(errs, "SESSION_KEEP must be > 0")
	}
	if c.SessionIdleAfter <= 0 {
		errs = append(errs, "SESSION_IDLE_AFTER must be > 0")
	}
	if c.OnlineWindow <= 0 {
		errs = append(errs, "ONLINE_WINDOW must be > 0")
	}
	if c.MessageRateLimit <= 0 {
		errs = append(errs, "MESSAGE_RATE_LIMIT must be > 0")
	}
	if c.MessageRateWindow <= 0 {
		errs = append(errs, "MESSAGE_RATE_WINDOW must be > 0")
	}
	if c.NotificationRetention <= 0 {
		errs = append(errs, "NOTIFICATION_RETENTION must be > 0")
	}
	if c.PerfLogRetention <= 0 {
		errs = append(errs, "PERF_LOG_RETENTION must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
