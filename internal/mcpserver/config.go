package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Result cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// refs tool defaults.
	RefsLimit int
	MaxLimit  int

	// Input limits.
	MaxInlineSize int64
	MaxInputs     int

	// Resolution settings.
	ResolveHTTPRefs bool
	AllowPrivateIPs bool
	BaseDir         string
	Concurrency     int
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASBUNDLE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("OASBUNDLE_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("OASBUNDLE_CACHE_MAX_SIZE", 10),
		CacheFileTTL:       envDuration("OASBUNDLE_CACHE_FILE_TTL", 30*time.Second),
		CacheURLTTL:        envDuration("OASBUNDLE_CACHE_URL_TTL", 5*time.Minute),
		CacheContentTTL:    envDuration("OASBUNDLE_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("OASBUNDLE_CACHE_SWEEP_INTERVAL", 60*time.Second),
		RefsLimit:          envInt("OASBUNDLE_REFS_LIMIT", 100),
		MaxLimit:           envInt("OASBUNDLE_MAX_LIMIT", 1000),
		MaxInlineSize:      envInt64("OASBUNDLE_MAX_INLINE_SIZE", 10*1024*1024),
		MaxInputs:          envInt("OASBUNDLE_MAX_INPUTS", 20),
		ResolveHTTPRefs:    envBool("OASBUNDLE_RESOLVE_HTTP_REFS", false),
		AllowPrivateIPs:    envBool("OASBUNDLE_ALLOW_PRIVATE_IPS", false),
		BaseDir:            os.Getenv("OASBUNDLE_BASE_DIR"),
		Concurrency:        envInt("OASBUNDLE_CONCURRENCY", 8),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid size env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
