package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/panelscan/cmd/scan"
	"github.com/scan-io-git/panelscan/cmd/version"
	"github.com/scan-io-git/panelscan/pkg/shared/errors"
)

var rootCmd = &cobra.Command{
	Use:                   "panelscan [command]",
	SilenceUsage:          true,
	SilenceErrors:         true,
	DisableFlagsInUseLine: true,
	Short:                 "Panelscan finds and suspends malicious bots on a game and bot hosting panel.",
	Long: `Panelscan walks the files of every instance hosted on a panel, rates them for malicious
intent with an LLM classification oracle and suspends the instances rated as malicious.
`,
}

func init() {
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return errors.ExitCode(err)
	}
	return 0
}
