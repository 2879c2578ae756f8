package main

import (
	"github.com/ludo-technologies/jsgate/app"
	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/spf13/cobra"
)

func lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "List every violation in working-tree files",
		Long: `Evaluate files on disk strictly, listing every violation.

Directories are walked recursively; files excluded by the configured paths
are skipped. This is the command to run when check reports too many
violations to list.

Examples:
  jsgate lint src/
  jsgate lint src/app.js --max-violations 0`,
		RunE:          runLint,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRunFlags(cmd)
	return cmd
}

func runLint(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	debug, _ := cmd.Flags().GetBool("debug")
	setupLogging(verbose, debug)

	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	cfg, err := loadRunConfig(cmd, target)
	if err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}

	result, err := app.NewLintUseCase(app.NewGateUseCase()).Execute(cmd.Context(), app.LintRequest{
		Config:       cfg,
		Paths:        args,
		Dir:          ".",
		Report:       cmd.ErrOrStderr(),
		Output:       cmd.OutOrStdout(),
		ShowProgress: true,
	})
	if err != nil {
		return &ExitError{Code: app.ExitCodeForError(err), Message: err.Error()}
	}

	return finishRun(cmd, cfg, result)
}
