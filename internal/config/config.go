// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Metadata MetadataConfig
	Server   ServerConfig
	Submit   SubmitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds the static event dataset configuration.
type DataConfig struct {
	// BaseURL is the HTTP location of the static JSON resources
	// (e.g. https://example.com/data). Mutually exclusive with BasePath.
	BaseURL string
	// BasePath is a local directory holding the same resources. When set,
	// resources are read from disk and the directory is watched for changes.
	BasePath string
	// FetchRetries is the maximum attempt count for transient fetch failures.
	FetchRetries int
	// FetchBackoff is the base delay unit; it doubles per attempt.
	FetchBackoff time.Duration
	// FetchTimeout bounds a single HTTP request.
	FetchTimeout time.Duration
	// CacheTTL is how long an aggregated corpus stays fresh. It also drives
	// the Cache-Control max-age on /api/events.
	CacheTTL time.Duration
}

// MetadataConfig holds server-side storage configuration (submission db,
// search index).
type MetadataConfig struct {
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// SubmitConfig holds contribution endpoint configuration.
type SubmitConfig struct {
	// RPS is the sustained per-IP submission rate.
	RPS float64
	// Burst is the per-IP burst allowance.
	Burst int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataBaseURL := flag.String("data-base-url", "", "Base URL of the static event dataset")
	dataPath := flag.String("data-path", "", "Local directory holding the event dataset")
	metadataPath := flag.String("metadata-path", "", "Base path for server storage (submissions, search index)")
	fetchRetries := flag.String("fetch-retries", "", "Max fetch attempts for transient failures (default: 3)")
	fetchBackoff := flag.String("fetch-backoff", "", "Base fetch backoff delay (default: 200ms)")
	fetchTimeout := flag.String("fetch-timeout", "", "Per-request fetch timeout (default: 15s)")
	cacheTTL := flag.String("cache-ttl", "", "Aggregated corpus cache TTL (default: 1h)")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	submitRPS := flag.String("submit-rps", "", "Per-IP sustained submission rate (default: 0.2)")
	submitBurst := flag.String("submit-burst", "", "Per-IP submission burst (default: 3)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BaseURL:      getConfigValue(*dataBaseURL, "DATA_BASE_URL", ""),
			BasePath:     getConfigValue(*dataPath, "DATA_PATH", ""),
			FetchRetries: getIntConfigValue(*fetchRetries, "FETCH_RETRIES", 3),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Submit: SubmitConfig{
			RPS:   getFloatConfigValue(*submitRPS, "SUBMIT_RPS", 0.2),
			Burst: getIntConfigValue(*submitBurst, "SUBMIT_BURST", 3),
		},
	}

	// Parse durations.
	var err error
	if cfg.Data.FetchBackoff, err = parseDurationValue(*fetchBackoff, "FETCH_BACKOFF", "200ms"); err != nil {
		return nil, err
	}
	if cfg.Data.FetchTimeout, err = parseDurationValue(*fetchTimeout, "FETCH_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Data.CacheTTL, err = parseDurationValue(*cacheTTL, "CORPUS_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	// Expand and validate local paths.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandMetadataPath(); err != nil {
		return nil, fmt.Errorf("invalid metadata path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BaseURL == "" && c.Data.BasePath == "" {
		return errors.New("one of DATA_BASE_URL or DATA_PATH is required")
	}
	if c.Data.BaseURL != "" && c.Data.BasePath != "" {
		return errors.New("DATA_BASE_URL and DATA_PATH are mutually exclusive")
	}
	if c.Data.BaseURL != "" {
		u, err := url.Parse(c.Data.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid data base URL: %s", c.Data.BaseURL)
		}
	}

	if c.Data.FetchRetries < 1 {
		return fmt.Errorf("fetch retries must be at least 1, got %d", c.Data.FetchRetries)
	}
	if c.Data.FetchBackoff <= 0 {
		return errors.New("fetch backoff must be positive")
	}
	if c.Data.CacheTTL <= 0 {
		return errors.New("corpus cache TTL must be positive")
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	if c.Submit.RPS <= 0 || c.Submit.Burst < 1 {
		return errors.New("submit rate limit must allow at least one request")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// Empty stays empty: URL mode needs no local path.
func (c *Config) expandDataPath() error {
	if c.Data.BasePath == "" {
		return nil
	}

	expanded, err := expandPath(c.Data.BasePath, "")
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandMetadataPath expands ~ and makes the path absolute.
func (c *Config) expandMetadataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "eventsWeb", "metadata")

	expanded, err := expandPath(c.Metadata.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Metadata.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
