package config

import (
	"crypto/tls"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultConfigFile = "config.yml"

	EnvConfigPath       = "PANELSCAN_CONFIG"
	EnvLogLevel         = "PANELSCAN_LOG_LEVEL"
	EnvPanelURL         = "PANELSCAN_PANEL_URL"
	EnvPanelAppToken    = "PANELSCAN_PANEL_APPLICATION_TOKEN"
	EnvPanelClientToken = "PANELSCAN_PANEL_CLIENT_TOKEN"
	EnvOracleURL        = "PANELSCAN_ORACLE_URL"
	EnvOracleAPIKey     = "PANELSCAN_ORACLE_API_KEY"
	EnvOracleModel      = "PANELSCAN_ORACLE_MODEL"
	EnvOracleAttempts   = "PANELSCAN_ORACLE_MAX_ATTEMPTS"
	EnvRateLimit        = "PANELSCAN_RATE_LIMIT_INTERVAL"
	EnvOutputFolder     = "PANELSCAN_OUTPUT_FOLDER"
)

const (
	DefaultOracleBaseURL     = "https://api.groq.com/openai/v1"
	DefaultOracleModel       = "llama-3.1-70b-versatile"
	DefaultMaxAttempts       = 3
	DefaultRateLimitInterval = 1 * time.Second
	DefaultRootDirectory     = "/"
	DefaultMinFileLength     = 300
	DefaultFlagThreshold     = 8
	DefaultSuspendThreshold  = 10
	DefaultInfoLog           = "info.log"
	DefaultErrorLog          = "error.log"
)

// DefaultExtensions returns the file extensions qualifying for classification.
func DefaultExtensions() []string {
	return []string{".js", ".py", ".ts", ".cs", ".rs", ".lua"}
}

// DefaultExcludedDirectories returns the directory names that are never descended.
func DefaultExcludedDirectories() []string {
	return []string{"node_modules", ".npm"}
}

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount      int           // Number of transport-level retries
	Timeout         time.Duration // Timeout for requests
	TLSClientConfig *tls.Config   // TLS configuration
	Proxy           string        // Proxy address
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool // Flag to enable Resty debug mode
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
// Transport retries are disabled: every outbound call passes the shared pacing gate
// and the oracle has its own attempt budget.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount: 0,
		Timeout:    60 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12, // Enforce a minimum TLS version
			InsecureSkipVerify: false,
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client, extending the base HTTP configuration.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
		Debug:          false,
	}
}

// ApplyDefaults fills every unset field with its default value.
func ApplyDefaults(cfg *Config) {
	cfg.HTTPClient.Timeout = SetThen(cfg.HTTPClient.Timeout, DefaultHTTPConfig().Timeout)

	cfg.Panel.BaseURL = strings.TrimRight(cfg.Panel.BaseURL, "/")
	cfg.Oracle.BaseURL = strings.TrimRight(SetThen(cfg.Oracle.BaseURL, DefaultOracleBaseURL), "/")
	cfg.Oracle.Model = SetThen(cfg.Oracle.Model, DefaultOracleModel)
	cfg.Oracle.MaxAttempts = SetThen(cfg.Oracle.MaxAttempts, DefaultMaxAttempts)

	if cfg.Scan.RateLimitInterval == nil {
		interval := DefaultRateLimitInterval
		cfg.Scan.RateLimitInterval = &interval
	}
	cfg.Scan.RootDirectory = SetThen(cfg.Scan.RootDirectory, DefaultRootDirectory)
	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = DefaultExtensions()
	}
	if len(cfg.Scan.ExcludedDirectories) == 0 {
		cfg.Scan.ExcludedDirectories = DefaultExcludedDirectories()
	}
	if cfg.Scan.MinFileLength == nil {
		length := DefaultMinFileLength
		cfg.Scan.MinFileLength = &length
	}
	if cfg.Scan.FlagThreshold == nil {
		flag := DefaultFlagThreshold
		cfg.Scan.FlagThreshold = &flag
	}
	cfg.Scan.SuspendThreshold = SetThen(cfg.Scan.SuspendThreshold, DefaultSuspendThreshold)

	cfg.Report.OutputFolder = SetThen(cfg.Report.OutputFolder, ".")
	cfg.Report.InfoLog = SetThen(cfg.Report.InfoLog, DefaultInfoLog)
	cfg.Report.ErrorLog = SetThen(cfg.Report.ErrorLog, DefaultErrorLog)
}

// ApplyEnv overrides config values with the PANELSCAN_* environment variables found by lookup.
// Malformed numeric or duration values are left for validation to report by keeping the YAML value.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	setString := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	setString(&cfg.Logger.Level, EnvLogLevel)
	setString(&cfg.Panel.BaseURL, EnvPanelURL)
	setString(&cfg.Panel.ApplicationToken, EnvPanelAppToken)
	setString(&cfg.Panel.ClientToken, EnvPanelClientToken)
	setString(&cfg.Oracle.BaseURL, EnvOracleURL)
	setString(&cfg.Oracle.APIKey, EnvOracleAPIKey)
	setString(&cfg.Oracle.Model, EnvOracleModel)
	setString(&cfg.Report.OutputFolder, EnvOutputFolder)

	if v, ok := lookup(EnvOracleAttempts); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Oracle.MaxAttempts = n
		}
	}
	if v, ok := lookup(EnvRateLimit); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Scan.RateLimitInterval = &d
		}
	}
}

// GetRateLimitInterval returns the minimum gap between outbound calls.
func GetRateLimitInterval(cfg *Config) time.Duration {
	if cfg.Scan.RateLimitInterval == nil {
		return DefaultRateLimitInterval
	}
	return *cfg.Scan.RateLimitInterval
}

// GetMinFileLength returns the rune count below which files are not classified.
func GetMinFileLength(cfg *Config) int {
	if cfg.Scan.MinFileLength == nil {
		return DefaultMinFileLength
	}
	return *cfg.Scan.MinFileLength
}

// GetFlagThreshold returns the highest score that is not flagged.
func GetFlagThreshold(cfg *Config) int {
	if cfg.Scan.FlagThreshold == nil {
		return DefaultFlagThreshold
	}
	return *cfg.Scan.FlagThreshold
}
