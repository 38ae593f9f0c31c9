package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg := Load()

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 12*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.SecureCookies)
	assert.Equal(t, DocumentStoreLocal, cfg.DocumentStore)
	assert.Equal(t, BackendBlob, cfg.DocumentDefaultBackend)
	assert.Equal(t, "/api/document-files", cfg.BlobLocatorPrefix)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "a-production-secret-of-32-bytes-or-more")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("DOCUMENT_DEFAULT_BACKEND", BackendFile)
	t.Setenv("MAX_UPLOAD_SIZE", "2048")
	t.Setenv("SECURE_COOKIES", "false")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, BackendFile, cfg.DocumentDefaultBackend)
	assert.Equal(t, int64(2048), cfg.MaxUploadSize)
	assert.False(t, cfg.SecureCookies)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.7/32"),
	}, cfg.TrustedProxies)
}

func TestParsePrefixes(t *testing.T) {
	prefixes, err := ParsePrefixes(" 10.1.2.3/8 ,::1,, ::ffff:192.0.2.7 ")
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("::1/128"),
		netip.MustParsePrefix("192.0.2.7/32"),
	}, prefixes)

	prefixes, err = ParsePrefixes("")
	require.NoError(t, err)
	assert.Empty(t, prefixes)

	for _, bad := range []string{"proxy.internal", "10.0.0.0/33", "192.0.2.300"} {
		_, err = ParsePrefixes(bad)
		assert.Error(t, err, bad)
	}
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_INT", "-5")
	t.Setenv("TEST_DURATION", "soon")

	assert.True(t, envBool("TEST_BOOL", true))
	assert.Equal(t, int64(7), envInt64("TEST_INT", 7))
	assert.Equal(t, time.Second, envDuration("TEST_DURATION", time.Second))
	assert.Equal(t, "fallback", envString("TEST_UNSET_STRING", "fallback"))
}
