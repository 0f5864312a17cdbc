package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CourseAPIURL      string        // base URL of the course service (ex: https://api.pelajarin.id/api)
	CourseAPITimeout  time.Duration // per-request timeout for the course service (default: 10s)
	SessionMaxIdle    time.Duration // course session idle lifetime (default: 30m)
	SessionGCInterval time.Duration // interval between idle-session sweeps (default: 5m)
	ResyncInterval    time.Duration // interval between completed-courses sync passes (default: 1h)
	CredentialTTL     time.Duration // TTL for stored session credentials (default: 24h)

	// Redis (optional: empty RedisAddr disables the credential store)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)

	AllowedHosts []string // optional, restrict infra endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict infra endpoints to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateLimitBurst  int // per-IP burst size (0 disables rate limiting)
	RateLimitPerMin int // per-IP sustained requests per minute
}

// overlay holds values read from the optional KELAS_CONFIG_FILE yaml file,
// a flat map of environment variable names to values. The environment
// always wins over the file.
var overlay map[string]string

func Load() *Config {
	overlay = loadOverlay(os.Getenv("KELAS_CONFIG_FILE"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("KELAS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("KELAS_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("KELAS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("KELAS_PRETTY_LOG", true),

		// Course service
		CourseAPIURL:      requireEnv("KELAS_COURSE_API_URL"),
		CourseAPITimeout:  mustDuration("KELAS_COURSE_API_TIMEOUT", 10*time.Second),
		SessionMaxIdle:    mustDuration("KELAS_SESSION_MAX_IDLE", 30*time.Minute),
		SessionGCInterval: mustDuration("KELAS_SESSION_GC_INTERVAL", 5*time.Minute),
		ResyncInterval:    mustDuration("KELAS_RESYNC_INTERVAL", time.Hour),
		CredentialTTL:     mustDuration("KELAS_CREDENTIAL_TTL", 24*time.Hour),

		// Redis settings
		RedisAddr:           getenv("KELAS_REDIS_ADDR", ""),
		RedisUser:           getenv("KELAS_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("KELAS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("KELAS_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("KELAS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("KELAS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("KELAS_TRUST_PROXY", true),

		RateLimitBurst:  getenvInt("KELAS_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("KELAS_RATE_LIMIT_PER_MIN", 120),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadOverlay reads the optional yaml config file. A missing path is fine;
// a present but unreadable or malformed file is fatal.
func loadOverlay(path string) map[string]string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Cannot read config file %s: %v", path, err))
	}
	out := make(map[string]string)
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid config file %s: %v", path, err))
	}
	return out
}

// helpers
func lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return overlay[key]
}

func getenv(key, def string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := lookup(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := lookup(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
