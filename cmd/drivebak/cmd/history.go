package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"drivebak/internal/adapters/tui/views"
	"drivebak/internal/application"
	"drivebak/internal/application/commands"
	"drivebak/internal/ports"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent backup runs",
	Long: `List backup runs recorded in the journal, newest first.

Examples:
  drivebak history
  drivebak history --limit 5 --json
  drivebak history show 5f0c1a2e-...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := requireJournal(cmd)
		if err != nil {
			return err
		}
		defer journal.Close()

		runs, err := commands.NewListRunsCommand(journal, historyLimit).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if historyJSON {
			return printJSON(cmd, runs)
		}
		fmt.Fprintln(cmd.OutOrStdout(), views.RenderRuns(runs))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and the files it wrote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := requireJournal(cmd)
		if err != nil {
			return err
		}
		defer journal.Close()

		result, err := commands.NewShowRunCommand(journal, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if historyJSON {
			return printJSON(cmd, result)
		}
		fmt.Fprint(cmd.OutOrStdout(), views.RenderRunDetail(result.Run, result.Decisions))
		return nil
	},
}

func requireJournal(cmd *cobra.Command) (ports.Journal, error) {
	cfg, err := loadDrivelessConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !cfg.JournalEnabled() {
		return nil, fmt.Errorf("%w: the run journal is disabled", application.ErrInvalidOperation)
	}

	journal := openJournal(cfg)
	if journal == nil {
		return nil, fmt.Errorf("%w: the run journal could not be opened", application.ErrIO)
	}
	return journal, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func init() {
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", commands.DefaultHistoryLimit, "maximum number of runs to list")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "print JSON instead of a table")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
