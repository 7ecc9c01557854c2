package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/panelscan/pkg/shared/config"
)

// NewLogger creates a new hclog.Logger instance based on the YAML configuration and the provided name.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return hclog.New(loggerOptions(cfg, name, os.Stdout))
}

// RunLogger is a stdout logger that also appends every event to the info and error log files.
type RunLogger struct {
	hclog.InterceptLogger
	files []io.Closer
}

// NewRunLogger creates the logger used during a scan run. INFO events go to cfg.Report.InfoLog
// and ERROR events to cfg.Report.ErrorLog, so every file line is in exactly one of them. Both
// files live on fs and are opened in append mode. Other levels reach stdout only.
func NewRunLogger(cfg *config.Config, name string, fs billy.Filesystem) (*RunLogger, error) {
	rl := &RunLogger{
		InterceptLogger: hclog.NewInterceptLogger(loggerOptions(cfg, name, os.Stdout)),
	}

	sinks := []struct {
		path  string
		level hclog.Level
	}{
		{path: cfg.Report.InfoLog, level: hclog.Info},
		{path: cfg.Report.ErrorLog, level: hclog.Error},
	}
	for _, s := range sinks {
		f, err := fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			_ = rl.Close()
			return nil, fmt.Errorf("failed to open log file %q: %w", s.path, err)
		}
		rl.files = append(rl.files, f)
		rl.RegisterSink(hclog.NewSinkAdapter(&hclog.LoggerOptions{
			Name:       name,
			Level:      s.level,
			Exclude:    onlyLevel(s.level),
			Output:     f,
			JSONFormat: config.BoolValue(cfg.Logger.JSONFormat, false),
		}))
	}
	return rl, nil
}

// Close closes the log files. The stdout logger stays usable.
func (rl *RunLogger) Close() error {
	var firstErr error
	for _, f := range rl.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	rl.files = nil
	return firstErr
}

// onlyLevel drops every event that is not at level.
func onlyLevel(level hclog.Level) func(hclog.Level, string, ...interface{}) bool {
	return func(l hclog.Level, _ string, _ ...interface{}) bool {
		return l != level
	}
}

func loggerOptions(cfg *config.Config, name string, output io.Writer) *hclog.LoggerOptions {
	opts := &hclog.LoggerOptions{
		Name:   name,
		Output: output,
		Level:  determineLogLevel(cfg),
	}
	if cfg != nil {
		opts.DisableTime = config.BoolValue(cfg.Logger.DisableTime, false)
		opts.JSONFormat = config.BoolValue(cfg.Logger.JSONFormat, false)
		opts.IncludeLocation = config.BoolValue(cfg.Logger.IncludeLocation, false)
	}
	return opts
}

// determineLogLevel returns a log level determined first by an environment variable, and if not set, by the provided configuration.
// If neither configuration nor environment variable specifies a log level, it defaults to INFO.
func determineLogLevel(cfg *config.Config) hclog.Level {
	if logLevelEnv := os.Getenv(config.EnvLogLevel); logLevelEnv != "" {
		return parseLogLevel(strings.ToUpper(logLevelEnv))
	}
	if cfg == nil || cfg.Logger.Level == "" {
		return hclog.Info
	}
	return parseLogLevel(strings.ToUpper(cfg.Logger.Level))
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      os.Stdout,
		}).Warn("Unrecognized log level, defaulting to INFO", "providedLevel", levelStr)
		return hclog.Info
	}
}
