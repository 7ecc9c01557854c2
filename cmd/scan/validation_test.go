package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/panelscan/pkg/shared/config"
)

func TestValidateScanArgs(t *testing.T) {
	tmpDir := t.TempDir()
	cfgFile := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("scan: {}\n"), 0644))
	plainFile := filepath.Join(tmpDir, "report.json")
	require.NoError(t, os.WriteFile(plainFile, []byte("[]"), 0644))

	testCases := []struct {
		name    string
		options RunOptionsScan
		args    []string
		wantErr string
	}{
		{name: "no flags"},
		{name: "existing config", options: RunOptionsScan{ConfigPath: cfgFile}},
		{name: "existing output folder", options: RunOptionsScan{OutputPath: tmpDir}},
		{name: "missing output folder is created later", options: RunOptionsScan{OutputPath: filepath.Join(tmpDir, "new")}},
		{name: "positional arguments", args: []string{"extra"}, wantErr: "unexpected positional arguments: extra"},
		{name: "missing config", options: RunOptionsScan{ConfigPath: filepath.Join(tmpDir, "nope.yml")}, wantErr: "the 'config' flag is invalid"},
		{name: "config is a directory", options: RunOptionsScan{ConfigPath: tmpDir}, wantErr: "is a directory"},
		{name: "output is a file", options: RunOptionsScan{OutputPath: plainFile}, wantErr: "must point to a folder"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := tc.options
			err := validateScanArgs(&opts, tc.args)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestApplyScanOptions(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	applyScanOptions(cfg, &RunOptionsScan{})
	assert.Equal(t, ".", cfg.Report.OutputFolder)
	assert.False(t, cfg.Scan.DryRun)
	assert.False(t, cfg.Report.SARIF)

	applyScanOptions(cfg, &RunOptionsScan{OutputPath: "/tmp/reports", DryRun: true, SARIF: true})
	assert.Equal(t, "/tmp/reports", cfg.Report.OutputFolder)
	assert.True(t, cfg.Scan.DryRun)
	assert.True(t, cfg.Report.SARIF)
}

func TestOverriddenFlags(t *testing.T) {
	var opts RunOptionsScan
	flags := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	flags.StringVar(&opts.OutputPath, "output", "", "")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "")
	flags.BoolVar(&opts.SARIF, "sarif", false, "")

	assert.Empty(t, overriddenFlags(flags))

	require.NoError(t, flags.Parse([]string{"--sarif", "--output", "/tmp/out"}))
	assert.Equal(t, []string{"output", "sarif"}, overriddenFlags(flags))
}
