package scan

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/scan-io-git/panelscan/pkg/shared/config"
	"github.com/scan-io-git/panelscan/pkg/shared/files"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected positional arguments: %s", strings.Join(args, " "))
	}

	if options.ConfigPath != "" {
		path, err := files.ExpandPath(options.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to unwrap path %q: %w", options.ConfigPath, err)
		}
		if err := config.ValidateConfigPath(path); err != nil {
			return fmt.Errorf("the 'config' flag is invalid: %w", err)
		}
		options.ConfigPath = path
	}

	if options.OutputPath != "" {
		if info, err := os.Stat(options.OutputPath); err == nil && !info.IsDir() {
			return fmt.Errorf("the 'output' flag must point to a folder: %q is a file", options.OutputPath)
		}
	}
	return nil
}

// applyScanOptions lets command-line flags override the loaded configuration.
func applyScanOptions(cfg *config.Config, options *RunOptionsScan) {
	if options.OutputPath != "" {
		cfg.Report.OutputFolder = options.OutputPath
	}
	if options.DryRun {
		cfg.Scan.DryRun = true
	}
	if options.SARIF {
		cfg.Report.SARIF = true
	}
}

// overriddenFlags lists the flags explicitly set on the command line.
func overriddenFlags(flags *pflag.FlagSet) []string {
	var names []string
	flags.Visit(func(f *pflag.Flag) {
		names = append(names, f.Name)
	})
	return names
}
