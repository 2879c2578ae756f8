package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ludo-technologies/jsgate/app"
	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/ludo-technologies/jsgate/internal/vcs"
	"github.com/ludo-technologies/jsgate/service"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Decide whether the staged change (or a revision range) may be committed",
		Long: `Evaluate the JavaScript/TypeScript files added or modified by a change.

Without --from/--to the staged index is compared with HEAD, which is what a
pre-commit hook needs. In a commit-msg hook pass the message file with
--message-file so the emergency bypass can be honored.

Exit codes:
  0   - change allowed
  1   - change denied (violations, regressions or an analyzer failure)
  255 - configuration or version control error

Examples:
  # pre-commit hook
  jsgate check

  # commit-msg hook
  jsgate check --message-file "$1"

  # CI: evaluate a pull request range
  jsgate check --from origin/main --to HEAD --json`,
		Args:          cobra.NoArgs,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRunFlags(cmd)
	cmd.Flags().String("mode", "", "Evaluation mode for modified files: strict or progressive")
	cmd.Flags().String("from", "", "Base revision of the range to evaluate")
	cmd.Flags().String("to", "", "Tip revision of the range to evaluate")
	cmd.Flags().StringP("message", "m", "", "Commit message used for the emergency bypass")
	cmd.Flags().String("message-file", "", "File holding the commit message (commit-msg hook argument)")
	cmd.Flags().String("journal", "", "Record the decision in this SQLite journal")

	return cmd
}

// addRunFlags registers the flags shared by check and lint
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().Int("max-violations", 0, "Maximum violations listed per file (0 = no cap)")
	cmd.Flags().Bool("no-color", false, "Disable severity highlighting")
	cmd.Flags().Bool("json", false, "Write the result as JSON to stdout")
	cmd.Flags().Bool("yaml", false, "Write the result as YAML to stdout")
	cmd.Flags().BoolP("verbose", "v", false, "Log progress information")
	cmd.Flags().Bool("debug", false, "Log debugging information")
}

// loadRunConfig loads the configuration and applies the flags of cmd
func loadRunConfig(cmd *cobra.Command, targetPath string) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	jsonOut, _ := cmd.Flags().GetBool("json")
	yamlOut, _ := cmd.Flags().GetBool("yaml")

	if jsonOut && yamlOut {
		return nil, domain.NewInvalidInputError("--json and --yaml are mutually exclusive", nil)
	}

	overrides := service.NoOverrides()
	if cmd.Flags().Changed("max-violations") {
		overrides.MaxViolations, _ = cmd.Flags().GetInt("max-violations")
	}
	if f := cmd.Flags().Lookup("mode"); f != nil && f.Changed {
		overrides.Mode = f.Value.String()
	}
	if f := cmd.Flags().Lookup("journal"); f != nil && f.Changed {
		overrides.JournalPath = f.Value.String()
	}
	overrides.NoColor, _ = cmd.Flags().GetBool("no-color")
	switch {
	case jsonOut:
		overrides.OutputFormat = constants.OutputFormatJSON
	case yamlOut:
		overrides.OutputFormat = constants.OutputFormatYAML
	}

	loader := service.NewConfigurationLoader()
	cfg, err := loader.LoadConfig(configPath, targetPath)
	if err != nil {
		return nil, err
	}
	return loader.MergeConfig(cfg, overrides)
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	debug, _ := cmd.Flags().GetBool("debug")
	setupLogging(verbose, debug)

	cfg, err := loadRunConfig(cmd, ".")
	if err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}

	message, err := commitMessage(cmd)
	if err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	provider, err := vcs.NewGitProvider(vcs.GitOptions{
		Dir:     ".",
		From:    from,
		To:      to,
		Message: message,
	})
	if err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}

	result, err := app.NewGateUseCase().Execute(cmd.Context(), app.GateRequest{
		Config:       cfg,
		Snapshots:    provider,
		Revision:     provider.Describe(),
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

// commitMessage returns the message given by --message or --message-file
func commitMessage(cmd *cobra.Command) (string, error) {
	message, _ := cmd.Flags().GetString("message")
	messageFile, _ := cmd.Flags().GetString("message-file")

	if messageFile == "" {
		return message, nil
	}
	if message != "" {
		return "", domain.NewInvalidInputError("--message and --message-file are mutually exclusive", nil)
	}

	content, err := os.ReadFile(messageFile)
	if err != nil {
		return "", domain.NewFileNotFoundError(messageFile, err)
	}
	return stripComments(string(content)), nil
}

// stripComments drops the "#" lines git leaves in a message file
func stripComments(message string) string {
	lines := strings.Split(message, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// finishRun prints the human summary and turns a denial into an exit code
func finishRun(cmd *cobra.Command, cfg *config.Config, result *domain.GateResult) error {
	if cfg.Output.Format == constants.OutputFormatText || result.Bypassed {
		if err := service.NewOutputFormatter().WriteSummary(result, cmd.ErrOrStderr()); err != nil {
			return &ExitError{Code: constants.ExitUnrecoverable, Message: fmt.Sprintf("failed to write summary: %v", err)}
		}
	}

	if result.ExitCode != constants.ExitAllow {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}
