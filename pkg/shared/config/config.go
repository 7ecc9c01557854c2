package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the global panelscan configuration.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Panel      Panel      `yaml:"panel"`
	Oracle     Oracle     `yaml:"oracle"`
	Scan       Scan       `yaml:"scan"`
	Report     Report     `yaml:"report"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug           *bool           `yaml:"debug"`
	Timeout         time.Duration   `yaml:"timeout"`
	TLSClientConfig TLSClientConfig `yaml:"tls_client_config"`
	Proxy           Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Panel holds the hosting panel endpoint and its two tokens.
// The application token is used for server listing and suspension,
// the client token for file listing and reading.
type Panel struct {
	BaseURL          string `yaml:"base_url"`
	ApplicationToken string `yaml:"application_token"`
	ClientToken      string `yaml:"client_token"`
}

// Oracle holds the classification oracle settings.
type Oracle struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	MaxAttempts int    `yaml:"max_attempts"`
}

// Scan holds the scan pipeline settings.
type Scan struct {
	RateLimitInterval   *time.Duration `yaml:"rate_limit_interval"` // 0 disables pacing
	RootDirectory       string         `yaml:"root_directory"`
	Extensions          []string       `yaml:"extensions"`
	ExcludedDirectories []string       `yaml:"excluded_directories"`
	MinFileLength       *int           `yaml:"min_file_length"` // 0 classifies every qualifying file
	FlagThreshold       *int           `yaml:"flag_threshold"`
	SuspendThreshold    int            `yaml:"suspend_threshold"`
	SkipUnreadableFiles bool           `yaml:"skip_unreadable_files"`
	DryRun              bool           `yaml:"dry_run"`
}

// Report holds the output locations of the run artifacts.
type Report struct {
	OutputFolder string `yaml:"output_folder"`
	InfoLog      string `yaml:"info_log"`
	ErrorLog     string `yaml:"error_log"`
	SARIF        bool   `yaml:"sarif"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the YAML file at configPath, applies environment overrides and defaults.
// When configPath is empty, PANELSCAN_CONFIG and then DefaultConfigFile are tried, and
// a missing default file is not an error so that env-only deployments work.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	explicit := configPath != ""
	if !explicit {
		if envPath, ok := os.LookupEnv(EnvConfigPath); ok && envPath != "" {
			configPath = envPath
			explicit = true
		} else {
			configPath = DefaultConfigFile
		}
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
		}
	}

	ApplyEnv(cfg, os.LookupEnv)
	ApplyDefaults(cfg)
	return cfg, nil
}
