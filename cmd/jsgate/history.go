package main

import (
	"fmt"
	"time"

	"github.com/farcloser/primordium/format"
	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/ludo-technologies/jsgate/internal/journal"
	"github.com/ludo-technologies/jsgate/service"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent gate decisions from the journal",
		Long: `List the runs recorded in the decision journal, newest first.

The journal is read from --journal, or from journal.path in the configuration.

Examples:
  jsgate history
  jsgate history --limit 5 --format json
  jsgate history --files`,
		Args:          cobra.NoArgs,
		RunE:          runHistory,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().String("journal", "", "SQLite journal to read")
	cmd.Flags().IntP("limit", "n", 20, "Number of runs to list (0 = all)")
	cmd.Flags().String("format", "console", "Output format: console, json, markdown")
	cmd.Flags().Bool("files", false, "Include per-file decisions")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	journalPath, _ := cmd.Flags().GetString("journal")
	limit, _ := cmd.Flags().GetInt("limit")
	formatName, _ := cmd.Flags().GetString("format")
	withFiles, _ := cmd.Flags().GetBool("files")

	if journalPath == "" {
		cfg, err := service.NewConfigurationLoader().LoadConfig(configPath, ".")
		if err != nil {
			return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
		}
		journalPath = cfg.Journal.Path
	}
	if journalPath == "" {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: "no journal configured: set journal.path or pass --journal"}
	}

	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}
	defer j.Close()

	ctx := cmd.Context()
	runs, err := j.Recent(ctx, limit)
	if err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}

	data := make([]*format.Data, 0, len(runs))
	for _, run := range runs {
		meta := runMeta(run)
		if withFiles {
			files, err := j.Files(ctx, run.ID)
			if err != nil {
				return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
			}
			lines := make([]any, 0, len(files))
			for _, f := range files {
				lines = append(lines, fileLine(f))
			}
			meta["files"] = lines
		}
		data = append(data, &format.Data{Object: run.ID, Meta: meta})
	}

	if err := formatter.PrintAll(data, cmd.OutOrStdout()); err != nil {
		return &ExitError{Code: constants.ExitUnrecoverable, Message: err.Error()}
	}
	return nil
}

func runMeta(run journal.Run) map[string]any {
	verdict := "denied"
	switch {
	case run.Bypassed:
		verdict = "bypassed"
	case run.Allowed:
		verdict = "allowed"
	}

	return map[string]any{
		"created_at":      run.CreatedAt.Local().Format(time.DateTime),
		"verdict":         verdict,
		"revision":        run.Revision,
		"mode":            run.Mode,
		"files_evaluated": run.FilesEvaluated,
		"files_denied":    run.FilesDenied,
		"duration":        (time.Duration(run.DurationMs) * time.Millisecond).String(),
		"version":         run.Version,
	}
}

func fileLine(f journal.RunFile) string {
	verdict := "allowed"
	if !f.Allowed {
		verdict = "denied"
	}
	return fmt.Sprintf("%s [%s, %s] %d violation(s), %d regression(s)",
		f.Path, f.Mode, verdict, f.Violations, f.Regressions)
}
