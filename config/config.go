// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

// Package config holds the gateway's configuration surface, per spec.md §6:
// loaded from an optional TOML file, overridden by environment variables,
// overridden in turn by explicit CLI flags — the same precedence order the
// teacher's own node config observes.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the gateway's full configuration surface.
type Config struct {
	ChainID   string `toml:"chain_id"`
	NetworkID string `toml:"network_id"`
	ClientID  string `toml:"client_id"`

	ListenAddr    string   `toml:"listen_addr"`
	CORSOrigins   []string `toml:"cors_origins"`
	WSOrigins     []string `toml:"ws_origins"`

	DefaultRateLimit      int           `toml:"default_rate_limit"`
	RateLimitDisabled     bool          `toml:"rate_limit_disabled"`
	IPRateLimitStore      string        `toml:"ip_rate_limit_store"` // "REDIS" or "LRU"
	RedisEnabled          bool          `toml:"redis_enabled"`
	RedisURL              string        `toml:"redis_url"`
	RedisReconnectDelayMs int           `toml:"redis_reconnect_delay_ms"`
	LimitDuration         time.Duration `toml:"limit_duration"`

	CacheTTL time.Duration `toml:"cache_ttl"`
	CacheMax int           `toml:"cache_max"`

	WSConnectionLimit      int           `toml:"ws_connection_limit"`
	WSConnectionLimitPerIP int           `toml:"ws_connection_limit_per_ip"`
	WSMaxInactivityTTL     time.Duration `toml:"ws_max_inactivity_ttl"`
	WSSubscriptionLimit    int           `toml:"ws_subscription_limit"`
	WSPollingInterval      time.Duration `toml:"ws_polling_interval"`
	WSNewHeadsEnabled      bool          `toml:"ws_new_heads_enabled"`
	WSSameSubForSameEvent  bool          `toml:"ws_same_sub_for_same_event"`
	WSCacheTTL             time.Duration `toml:"ws_cache_ttl"`

	DebugAPIEnabled      bool `toml:"debug_api_enabled"`
	SubscriptionsEnabled bool `toml:"subscriptions_enabled"`

	MaxFilters int           `toml:"max_filters"`
	FilterTTL  time.Duration `toml:"filter_ttl"`
}

// Default returns the gateway's baseline configuration, the values used
// when neither a config file nor an environment variable overrides them.
func Default() Config {
	return Config{
		ChainID:   "0x12a",
		NetworkID: "298",
		ClientID:  "r5-rpc-gateway/v1.0.0",

		ListenAddr:  ":8545",
		CORSOrigins: []string{"*"},
		WSOrigins:   []string{"*"},

		IPRateLimitStore: "LRU",
		LimitDuration:    time.Minute,
		DefaultRateLimit: 300,

		CacheTTL: 30 * time.Second,
		CacheMax: 4096,

		WSConnectionLimit:      10000,
		WSConnectionLimitPerIP: 20,
		WSMaxInactivityTTL:     10 * time.Minute,
		WSSubscriptionLimit:    50,
		WSPollingInterval:      4 * time.Second,
		WSNewHeadsEnabled:      true,
		WSSameSubForSameEvent:  true,
		WSCacheTTL:             4 * time.Second,

		MaxFilters: 10000,
		FilterTTL:  5 * time.Minute,
	}
}

// Load reads path (if non-empty) as a TOML file on top of Default, then
// applies environment variable overrides, per spec.md §6's recognized
// options list.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CHAIN_ID"); v != "" {
		cfg.ChainID = v
	}
	if v := os.Getenv("RATE_LIMIT_DISABLED"); v != "" {
		cfg.RateLimitDisabled = parseBool(v, cfg.RateLimitDisabled)
	}
	if v := os.Getenv("IP_RATE_LIMIT_STORE"); v != "" {
		cfg.IPRateLimitStore = v
	}
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		cfg.RedisEnabled = parseBool(v, cfg.RedisEnabled)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("REDIS_RECONNECT_DELAY_MS"); v != "" {
		cfg.RedisReconnectDelayMs = parseInt(v, cfg.RedisReconnectDelayMs)
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		cfg.CacheTTL = parseDuration(v, cfg.CacheTTL)
	}
	if v := os.Getenv("CACHE_MAX"); v != "" {
		cfg.CacheMax = parseInt(v, cfg.CacheMax)
	}
	if v := os.Getenv("WS_CONNECTION_LIMIT"); v != "" {
		cfg.WSConnectionLimit = parseInt(v, cfg.WSConnectionLimit)
	}
	if v := os.Getenv("WS_CONNECTION_LIMIT_PER_IP"); v != "" {
		cfg.WSConnectionLimitPerIP = parseInt(v, cfg.WSConnectionLimitPerIP)
	}
	if v := os.Getenv("WS_MAX_INACTIVITY_TTL"); v != "" {
		cfg.WSMaxInactivityTTL = parseDuration(v, cfg.WSMaxInactivityTTL)
	}
	if v := os.Getenv("WS_SUBSCRIPTION_LIMIT"); v != "" {
		cfg.WSSubscriptionLimit = parseInt(v, cfg.WSSubscriptionLimit)
	}
	if v := os.Getenv("WS_POLLING_INTERVAL"); v != "" {
		cfg.WSPollingInterval = parseDuration(v, cfg.WSPollingInterval)
	}
	if v := os.Getenv("WS_NEW_HEADS_ENABLED"); v != "" {
		cfg.WSNewHeadsEnabled = parseBool(v, cfg.WSNewHeadsEnabled)
	}
	if v := os.Getenv("WS_SAME_SUB_FOR_SAME_EVENT"); v != "" {
		cfg.WSSameSubForSameEvent = parseBool(v, cfg.WSSameSubForSameEvent)
	}
	if v := os.Getenv("WS_CACHE_TTL"); v != "" {
		cfg.WSCacheTTL = parseDuration(v, cfg.WSCacheTTL)
	}
	if v := os.Getenv("LIMIT_DURATION"); v != "" {
		cfg.LimitDuration = parseDuration(v, cfg.LimitDuration)
	}
	if v := os.Getenv("DEBUG_API_ENABLED"); v != "" {
		cfg.DebugAPIEnabled = parseBool(v, cfg.DebugAPIEnabled)
	}
	if v := os.Getenv("SUBSCRIPTIONS_ENABLED"); v != "" {
		cfg.SubscriptionsEnabled = parseBool(v, cfg.SubscriptionsEnabled)
	}
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
