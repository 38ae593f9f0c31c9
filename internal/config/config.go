package config

import (
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DocumentStoreLocal = "local"
	DocumentStoreS3    = "s3"

	BackendBlob = "blob"
	BackendFile = "file"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret     string
	JWTExpiry     time.Duration
	SecureCookies bool // Defaults to true in production

	// Reverse proxies whose X-Forwarded-For / X-Real-IP headers are honored.
	// Empty means the direct peer address is the client address.
	TrustedProxies []netip.Prefix

	// Documents
	DocumentRoot           string // Directory (local) or key prefix (s3) for file locators
	DocumentStore          string // "local" or "s3"
	DocumentDefaultBackend string // Where new uploads go: "blob" or "file"
	BlobLocatorPrefix      string // Locators starting with this prefix live in the document_files table
	MaxUploadSize          int64

	// Observability (optional)
	SentryDSN string

	// Redis (optional): shares login rate limits between instances
	RedisURL string

	// Storage (S3-compatible, only used when DOCUMENT_STORE=s3)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, R2, etc.)
	S3Prefix    string // Key prefix used as the document root inside the bucket
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "CareDocs"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/caredocs.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:     envRequired("JWT_SECRET"),
		JWTExpiry:     envDuration("JWT_EXPIRY", 12*time.Hour),
		SecureCookies: envBool("SECURE_COOKIES", envString("APP_ENV", "development") == "production"),

		TrustedProxies: envPrefixes("TRUSTED_PROXIES"),

		// Documents
		DocumentRoot:           envString("DOCUMENT_ROOT", "./data/documents"),
		DocumentStore:          envString("DOCUMENT_STORE", DocumentStoreLocal),
		DocumentDefaultBackend: envString("DOCUMENT_DEFAULT_BACKEND", BackendBlob),
		BlobLocatorPrefix:      envString("BLOB_LOCATOR_PREFIX", "/api/document-files"),
		MaxUploadSize:          envInt64("MAX_UPLOAD_SIZE", 10<<20), // 10MB

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Redis
		RedisURL: envString("REDIS_URL", ""),

		// Storage
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
		S3Prefix:    envString("S3_PREFIX", "documents"),
	}

	validate(cfg)

	return cfg
}

// validate exits on settings the server cannot start with.
func validate(cfg *Config) {
	switch cfg.DocumentStore {
	case DocumentStoreLocal:
	case DocumentStoreS3:
		if cfg.S3Region == "" || cfg.S3Bucket == "" {
			slog.Error("DOCUMENT_STORE=s3 requires S3_REGION and S3_BUCKET")
			os.Exit(1)
		}
	default:
		slog.Error("config invalid document store", "value", cfg.DocumentStore, "hint", "use 'local' or 's3'")
		os.Exit(1)
	}

	if cfg.DocumentDefaultBackend != BackendBlob && cfg.DocumentDefaultBackend != BackendFile {
		slog.Error("config invalid default backend", "value", cfg.DocumentDefaultBackend, "hint", "use 'blob' or 'file'")
		os.Exit(1)
	}

	if cfg.IsProduction() && len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envPrefixes parses a comma separated list of IPs and CIDRs.
func envPrefixes(key string) []netip.Prefix {
	prefixes, err := ParsePrefixes(os.Getenv(key))
	if err != nil {
		slog.Error("config invalid address list", "key", key, "error", err)
		os.Exit(1)
	}
	return prefixes
}

// ParsePrefixes accepts "10.0.0.0/8, 192.0.2.7, ::1". A bare address becomes
// a single-host prefix.
func ParsePrefixes(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if strings.Contains(item, "/") {
			prefix, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

