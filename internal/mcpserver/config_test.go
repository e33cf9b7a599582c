package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearOASBUNDLEEnv clears all OASBUNDLE_* env vars to isolate tests from the ambient environment.
func clearOASBUNDLEEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OASBUNDLE_CACHE_ENABLED", "OASBUNDLE_CACHE_MAX_SIZE",
		"OASBUNDLE_CACHE_FILE_TTL", "OASBUNDLE_CACHE_URL_TTL",
		"OASBUNDLE_CACHE_CONTENT_TTL", "OASBUNDLE_CACHE_SWEEP_INTERVAL",
		"OASBUNDLE_REFS_LIMIT", "OASBUNDLE_MAX_LIMIT",
		"OASBUNDLE_MAX_INLINE_SIZE", "OASBUNDLE_MAX_INPUTS",
		"OASBUNDLE_RESOLVE_HTTP_REFS", "OASBUNDLE_ALLOW_PRIVATE_IPS",
		"OASBUNDLE_BASE_DIR", "OASBUNDLE_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearOASBUNDLEEnv(t)

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 30*time.Second, c.CacheFileTTL)
	assert.Equal(t, 5*time.Minute, c.CacheURLTTL)
	assert.Equal(t, 15*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 60*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 100, c.RefsLimit)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, 20, c.MaxInputs)
	assert.False(t, c.ResolveHTTPRefs)
	assert.False(t, c.AllowPrivateIPs)
	assert.Empty(t, c.BaseDir)
	assert.Equal(t, 8, c.Concurrency)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearOASBUNDLEEnv(t)
	t.Setenv("OASBUNDLE_CACHE_ENABLED", "false")
	t.Setenv("OASBUNDLE_CACHE_MAX_SIZE", "50")
	t.Setenv("OASBUNDLE_CACHE_FILE_TTL", "2m")
	t.Setenv("OASBUNDLE_CACHE_URL_TTL", "1m")
	t.Setenv("OASBUNDLE_CACHE_CONTENT_TTL", "10m")
	t.Setenv("OASBUNDLE_CACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("OASBUNDLE_REFS_LIMIT", "200")
	t.Setenv("OASBUNDLE_MAX_LIMIT", "500")
	t.Setenv("OASBUNDLE_MAX_INLINE_SIZE", "5242880")
	t.Setenv("OASBUNDLE_MAX_INPUTS", "50")
	t.Setenv("OASBUNDLE_RESOLVE_HTTP_REFS", "true")
	t.Setenv("OASBUNDLE_ALLOW_PRIVATE_IPS", "true")
	t.Setenv("OASBUNDLE_BASE_DIR", "/srv/specs")
	t.Setenv("OASBUNDLE_CONCURRENCY", "2")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 50, c.CacheMaxSize)
	assert.Equal(t, 2*time.Minute, c.CacheFileTTL)
	assert.Equal(t, time.Minute, c.CacheURLTTL)
	assert.Equal(t, 10*time.Minute, c.CacheContentTTL)
	assert.Equal(t, 30*time.Second, c.CacheSweepInterval)
	assert.Equal(t, 200, c.RefsLimit)
	assert.Equal(t, 500, c.MaxLimit)
	assert.Equal(t, int64(5242880), c.MaxInlineSize)
	assert.Equal(t, 50, c.MaxInputs)
	assert.True(t, c.ResolveHTTPRefs)
	assert.True(t, c.AllowPrivateIPs)
	assert.Equal(t, "/srv/specs", c.BaseDir)
	assert.Equal(t, 2, c.Concurrency)
}

func TestLoadConfig_InvalidValues_UseDefaults(t *testing.T) {
	clearOASBUNDLEEnv(t)
	t.Setenv("OASBUNDLE_CACHE_MAX_SIZE", "banana")
	t.Setenv("OASBUNDLE_CACHE_FILE_TTL", "not-a-duration")
	t.Setenv("OASBUNDLE_CACHE_ENABLED", "maybe")
	t.Setenv("OASBUNDLE_REFS_LIMIT", "-5")
	t.Setenv("OASBUNDLE_MAX_INLINE_SIZE", "abc")
	t.Setenv("OASBUNDLE_MAX_LIMIT", "0")
	t.Setenv("OASBUNDLE_MAX_INPUTS", "-1")

	c := loadConfig()

	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 10, c.CacheMaxSize)
	assert.Equal(t, 30*time.Second, c.CacheFileTTL)
	assert.Equal(t, 100, c.RefsLimit)
	assert.Equal(t, int64(10*1024*1024), c.MaxInlineSize)
	assert.Equal(t, 1000, c.MaxLimit)
	assert.Equal(t, 20, c.MaxInputs)
}
