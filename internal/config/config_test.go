package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "COMPLETION_MODEL", "COMPLETION_MAX_RETRIES", "RETRIEVAL_BROADEN", "GEMINI_API_KEY", "GOOGLE_CLOUD_PROJECT"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gemini-2.5-flash", cfg.CompletionModel)
	assert.Equal(t, 0, cfg.CompletionMaxRetries)
	assert.Equal(t, 25*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 1024, cfg.MaxOutputTokens)
	assert.True(t, cfg.RetrievalBroaden)
	assert.Equal(t, "customs_rules", cfg.QdrantCollection)
	assert.False(t, cfg.UseVertex())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("COMPLETION_TIMEOUT", "3s")
	t.Setenv("RETRIEVAL_SCORE_THRESHOLD", "0.8")
	t.Setenv("RETRIEVAL_BROADEN", "false")
	t.Setenv("USER_QUERY_LIMIT", "5")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "customs-prod")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.CompletionTimeout)
	assert.InDelta(t, 0.8, cfg.RetrievalScoreThreshold, 1e-9)
	assert.False(t, cfg.RetrievalBroaden)
	assert.Equal(t, 5, cfg.UserQueryLimit)
	assert.True(t, cfg.UseVertex())
}

func TestRouteTimeoutCoversOfficerPipeline(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("COMPLETION_TIMEOUT", "")
	t.Setenv("RETRIEVAL_TIMEOUT", "")

	cfg := FromEnv()
	assert.Equal(t, 120*time.Second, cfg.RouteTimeout())
	assert.Greater(t, cfg.WriteTimeout(), cfg.RouteTimeout())

	t.Setenv("REQUEST_TIMEOUT", "45s")
	cfg = FromEnv()
	assert.Equal(t, 45*time.Second, cfg.RouteTimeout())
	assert.Equal(t, 55*time.Second, cfg.WriteTimeout())
}

func TestProxySettings(t *testing.T) {
	t.Setenv("PROXY_HEADER", "")
	t.Setenv("TRUSTED_PROXIES", "")
	cfg := FromEnv()
	assert.Empty(t, cfg.ProxyHeader)
	assert.Empty(t, cfg.TrustedProxies)

	t.Setenv("PROXY_HEADER", "X-Forwarded-For")
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, ,10.0.0.0/8 ")
	cfg = FromEnv()
	assert.Equal(t, "X-Forwarded-For", cfg.ProxyHeader)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("QDRANT_PORT", "not-a-port")
	t.Setenv("GEO_TIMEOUT", "soon")

	cfg := FromEnv()
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.Equal(t, 5*time.Second, cfg.GeoTimeout)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("QDRANT_COLLECTION=from_file\n"), 0o600))

	t.Setenv("ENV_FILE", path)
	t.Setenv("QDRANT_COLLECTION", "")
	os.Unsetenv("QDRANT_COLLECTION")

	cfg, loaded := Load()
	assert.True(t, loaded)
	assert.Equal(t, "from_file", cfg.QdrantCollection)
}
