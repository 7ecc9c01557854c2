package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/scan-io-git/panelscan/pkg/shared/errors"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidatePanelConfig(&cfg.Panel); err != nil {
		return fmt.Errorf("YAML global config: panel directive is invalid: %w", err)
	}
	if err := ValidateOracleConfig(&cfg.Oracle); err != nil {
		return fmt.Errorf("YAML global config: oracle directive is invalid: %w", err)
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if err := validateDuration(httpConfig.Timeout, "timeout", 10*time.Minute); err != nil {
		return err
	}
	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}
	return nil
}

// ValidatePanelConfig checks that the panel URL and both tokens are set.
func ValidatePanelConfig(panel *Panel) error {
	if panel == nil {
		return fmt.Errorf("panel configuration is nil")
	}
	if err := validateBaseURL(panel.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if panel.ApplicationToken == "" {
		return fmt.Errorf("application_token (or %s): %w", EnvPanelAppToken, errors.ErrMissingConfig)
	}
	if panel.ClientToken == "" {
		return fmt.Errorf("client_token (or %s): %w", EnvPanelClientToken, errors.ErrMissingConfig)
	}
	return nil
}

// ValidateOracleConfig checks the oracle endpoint, credentials and attempt budget.
func ValidateOracleConfig(oracle *Oracle) error {
	if oracle == nil {
		return fmt.Errorf("oracle configuration is nil")
	}
	if err := validateBaseURL(oracle.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if oracle.APIKey == "" {
		return fmt.Errorf("api_key (or %s): %w", EnvOracleAPIKey, errors.ErrMissingConfig)
	}
	if oracle.Model == "" {
		return fmt.Errorf("model: %w", errors.ErrMissingConfig)
	}
	if oracle.MaxAttempts < 1 || oracle.MaxAttempts > 10 {
		return fmt.Errorf("max_attempts must be between 1 and 10: %d", oracle.MaxAttempts)
	}
	return nil
}

// ValidateScanConfig checks thresholds, filters and pacing.
func ValidateScanConfig(scan *Scan) error {
	if scan == nil {
		return fmt.Errorf("scan configuration is nil")
	}
	if scan.RateLimitInterval != nil {
		if err := validateDuration(*scan.RateLimitInterval, "rate_limit_interval", 1*time.Minute); err != nil {
			return err
		}
	}
	if !strings.HasPrefix(scan.RootDirectory, "/") {
		return fmt.Errorf("root_directory must be absolute: %q", scan.RootDirectory)
	}
	for _, ext := range scan.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	for _, name := range scan.ExcludedDirectories {
		if name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("excluded directory %q must be a plain name", name)
		}
	}
	if scan.MinFileLength != nil && *scan.MinFileLength < 0 {
		return fmt.Errorf("min_file_length cannot be negative: %d", *scan.MinFileLength)
	}

	flag := DefaultFlagThreshold
	if scan.FlagThreshold != nil {
		flag = *scan.FlagThreshold
	}
	if flag < 0 || flag >= scan.SuspendThreshold || scan.SuspendThreshold > 10 {
		return fmt.Errorf("thresholds must satisfy 0 <= flag_threshold < suspend_threshold <= 10, got %d and %d", flag, scan.SuspendThreshold)
	}
	return nil
}

// validateBaseURL checks that raw is an absolute http(s) URL.
func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.ErrMissingConfig
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	return validatePort(proxy.Port)
}

// validateHost checks if the host part of the proxy configuration is valid.
// It ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}
	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
