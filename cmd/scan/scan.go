package scan

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/panelscan/internal/classifier"
	"github.com/scan-io-git/panelscan/internal/panel"
	"github.com/scan-io-git/panelscan/internal/ratelimit"
	"github.com/scan-io-git/panelscan/internal/report"
	pipeline "github.com/scan-io-git/panelscan/internal/scan"
	"github.com/scan-io-git/panelscan/internal/walker"
	"github.com/scan-io-git/panelscan/pkg/shared/config"
	"github.com/scan-io-git/panelscan/pkg/shared/errors"
	"github.com/scan-io-git/panelscan/pkg/shared/files"
	"github.com/scan-io-git/panelscan/pkg/shared/logger"
)

const (
	exitInvalidInput = 1
	exitListFailed   = 2
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	ConfigPath string
	OutputPath string
	DryRun     bool
	SARIF      bool
}

var (
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning every active instance with config.yml from the working directory
  panelscan scan

  # Scanning with an explicit configuration file and output folder
  panelscan scan --config /etc/panelscan/config.yml --output /var/lib/panelscan/reports

  # Scanning without suspending anything, exporting findings as SARIF
  panelscan scan --dry-run --sarif`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--config/-c PATH] [--output/-o DIR] [--dry-run] [--sarif]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans every hosted instance and suspends the malicious ones",
	Long: `Lists every instance of the hosting panel, walks its files, rates each qualifying file
with the classification oracle and acts on the highest rating: instances above the flag
threshold are reported, instances at the suspend threshold are suspended.`,
	RunE: runScanCommand,
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	startLogger := logger.NewLogger(nil, "core-scan")
	if err := validateScanArgs(&scanOptions, args); err != nil {
		startLogger.Error("invalid scan arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid scan arguments: %w", err), exitInvalidInput)
	}

	cfg, err := config.LoadConfig(scanOptions.ConfigPath)
	if err != nil {
		startLogger.Error("failed to load config", "path", scanOptions.ConfigPath, "error", err)
		return errors.NewCommandError(err, exitInvalidInput)
	}
	applyScanOptions(cfg, &scanOptions)
	if err := config.ValidateConfig(cfg); err != nil {
		logger.NewLogger(cfg, "core-scan").Error("invalid configuration", "error", err)
		return errors.NewCommandError(err, exitInvalidInput)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, cfg, overriddenFlags(cmd.Flags()))
}

// execute performs one run with a validated config and writes its artifacts.
func execute(ctx context.Context, cfg *config.Config, overrides []string) error {
	outputFS, err := files.OutputFS(cfg.Report.OutputFolder)
	if err != nil {
		return errors.NewCommandError(err, exitInvalidInput)
	}

	runLogger, err := logger.NewRunLogger(cfg, "core-scan", outputFS)
	if err != nil {
		return errors.NewCommandError(err, exitInvalidInput)
	}
	defer func() { _ = runLogger.Close() }()
	log := runLogger.With("run_id", uuid.New().String())
	if len(overrides) > 0 {
		log.Debug("configuration overridden by flags", "flags", overrides)
	}

	limiter := ratelimit.New(config.GetRateLimitInterval(cfg))
	panelClient := panel.NewClient(cfg, limiter, log.Named("panel"))
	orchestrator := pipeline.New(pipeline.Dependencies{
		Panel: panelClient,
		Walker: walker.New(panelClient, walker.Options{
			Extensions: cfg.Scan.Extensions,
			Excluded:   cfg.Scan.ExcludedDirectories,
		}),
		Classifier: classifier.NewClient(cfg, limiter, log.Named("oracle")),
	}, pipeline.OptionsFromConfig(cfg), log)

	rep, runErr := orchestrator.Run(ctx)
	if rep == nil {
		log.Error("scan aborted, no reports written", "error", runErr)
		return errors.NewCommandError(runErr, exitListFailed)
	}

	writer := report.NewWriter(outputFS, report.WriterOptions{
		SARIF:            cfg.Report.SARIF,
		SuspendThreshold: cfg.Scan.SuspendThreshold,
	}, log)
	if err := writer.Write(rep); err != nil {
		log.Error("failed to write reports", "error", err)
		return err
	}

	if runErr != nil {
		log.Error("scan interrupted, partial reports written", "error", runErr)
		return runErr
	}

	log.Info("scan command completed successfully", "pacing_calls", limiter.Acquired())
	return nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.ConfigPath, "config", "c", "", "Path to the configuration file. Defaults to $PANELSCAN_CONFIG, then config.yml.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Folder for the reports and log files. Overrides report.output_folder.")
	ScanCmd.Flags().BoolVar(&scanOptions.DryRun, "dry-run", false, "Decide and report as usual but never suspend an instance.")
	ScanCmd.Flags().BoolVar(&scanOptions.SARIF, "sarif", false, "Also write the flagged files as a SARIF report.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
