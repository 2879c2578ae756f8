package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/ludo-technologies/jsgate/internal/version"
	"github.com/ludo-technologies/jsgate/service"
	"github.com/spf13/cobra"
)

// ExitError carries a process exit code out of a command
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		slog.Error("failed to run", "error", err)
		os.Exit(constants.ExitUnrecoverable)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jsgate",
		Short: "jsgate - commit-time quality gate for JavaScript/TypeScript",
		Long: `jsgate decides whether a change may be committed by analyzing the
JavaScript and TypeScript files it adds or modifies.

Added files must be clean; modified files must not introduce new
violations (progressive mode) or must be clean (strict mode).`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(lintCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// setupLogging routes diagnostics to stderr. Warnings only by default.
func setupLogging(verbose, debug bool) {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				_ = service.WriteJSON(cmd.OutOrStdout(), version.GetInfo())
				return
			}
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "jsgate version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	cmd.Flags().Bool("json", false, "Print build information as JSON")
	return cmd
}
