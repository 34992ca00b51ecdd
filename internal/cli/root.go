package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var rootCmd = &cobra.Command{
	Use:   "ebert [files...]",
	Short: "Uncompromising AI code review CLI",
	Long: `Ebert reviews code changes using an LLM provider or a deterministic
rule engine.

With no arguments it reviews staged git changes. With file arguments or
glob patterns it reviews those files directly. With --branch it reviews
everything on HEAD since diverging from the named branch.`,
	Args: cobra.ArbitraryArgs,
	RunE: executeReview,
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
	addReviewFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print ebert version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "ebert version %s\n", version)
	},
}
