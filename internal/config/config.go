// Package config loads process configuration from environment variables,
// with an optional YAML file overlay, and sets up logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Upstream record source
	UpstreamURL     string        `yaml:"upstream_url"`
	UpstreamTimeout time.Duration `yaml:"-"`
	ChunkLimit      int           `yaml:"chunk_limit"`
	ScanMax         int           `yaml:"scan_max"`

	// Result cache
	CacheTTL      time.Duration `yaml:"-"`
	MaxCacheItems int           `yaml:"max_cache_items"`

	// HTTP surface
	Port         string   `yaml:"port"`
	RateLimit    string   `yaml:"rate_limit"` // "60/minute" or "off"
	AllowOrigins []string `yaml:"allow_origins"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables. Defaults match the
// production deployment of the original proxy.
func Load() Config {
	return Config{
		UpstreamURL:     getEnv("UPSTREAM_URL", "https://jsonplaceholder.typicode.com/posts"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		ChunkLimit:      getEnvInt("CHUNK_LIMIT", 50),
		ScanMax:         getEnvInt("SCAN_MAX", 100),

		CacheTTL:      getEnvDuration("CACHE_TTL", 60*time.Second),
		MaxCacheItems: getEnvInt("MAX_CACHE_ITEMS", 500),

		Port:         getEnv("PORT", "8000"),
		RateLimit:    getEnv("RATE_LIMIT", "60/minute"),
		AllowOrigins: splitNonEmpty(getEnv("ALLOW_ORIGINS", "http://localhost:3000")),

		LogFile:  getEnv("POSTWATCH_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("POSTWATCH_LOG_LEVEL", "INFO")),
	}
}

// ApplyFile overlays the YAML file at path on top of c. Only keys present
// in the file override; env-derived values survive otherwise. Durations
// and the log level are strings in the file ("5s", "DEBUG").
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	// Fields yaml cannot decode directly.
	var aux struct {
		UpstreamTimeout string `yaml:"upstream_timeout"`
		CacheTTL        string `yaml:"cache_ttl"`
		LogLevel        string `yaml:"log_level"`
	}
	if err := yaml.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if aux.UpstreamTimeout != "" {
		d, err := time.ParseDuration(aux.UpstreamTimeout)
		if err != nil {
			return fmt.Errorf("parse upstream_timeout: %w", err)
		}
		c.UpstreamTimeout = d
	}
	if aux.CacheTTL != "" {
		d, err := time.ParseDuration(aux.CacheTTL)
		if err != nil {
			return fmt.Errorf("parse cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	if aux.LogLevel != "" {
		c.LogLevel = parseLogLevel(aux.LogLevel)
	}
	return nil
}

// RateLimitWindow parses the "N/period" rate limit setting. ok is false
// when rate limiting is off or the setting is malformed.
func (c Config) RateLimitWindow() (max int, window time.Duration, ok bool) {
	if strings.EqualFold(c.RateLimit, "off") || c.RateLimit == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(c.RateLimit, "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || n < 1 {
		return 0, 0, false
	}
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "second":
		return n, time.Second, true
	case "minute":
		return n, time.Minute, true
	case "hour":
		return n, time.Hour, true
	}
	return 0, 0, false
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

// getEnvDuration accepts Go duration strings and, for compatibility with
// the original deployment, bare numbers meaning seconds.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultVal
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
