package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"drivebak/internal/adapters/console"
	"drivebak/internal/adapters/drives"
	"drivebak/internal/adapters/filesystem"
	"drivebak/internal/adapters/hashing"
	"drivebak/internal/adapters/sqlite"
	"drivebak/internal/adapters/tui"
	"drivebak/internal/adapters/tui/views"
	"drivebak/internal/application"
	"drivebak/internal/application/commands"
	"drivebak/internal/config"
	"drivebak/internal/ports"
)

// LogLevel is the level of the default logger; --verbose lowers it to debug
var LogLevel = new(slog.LevelVar)

var (
	envFile    string
	verbose    bool
	dryRun     bool
	listDrives bool
	assumeYes  bool
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "drivebak [source]",
	Short: "Incremental backups onto a drive picked by serial number",
	Long: `drivebak copies a directory (or a single file) onto a removable drive
identified by its volume serial number, wherever it happens to be mounted.

Files already on the drive with identical content are skipped. A file whose
backup differs is written next to it as name_v1.ext, name_v2.ext, ... so
nothing on the drive is ever overwritten.

The source and serial default to BACKUP_PATH and BACKUP_DRIVE_SERIAL, read
from the environment or a .env file.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			LogLevel.Set(slog.LevelDebug)
		}
	},
	RunE: runBackup,
}

// Execute runs the root command and returns the process exit code
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	return exitCode(err, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
}

// exitCode is the only place errors become exit statuses
func exitCode(err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, application.ErrAborted):
		fmt.Fprintln(stdout, "Aborting...")
		return 1
	case errors.Is(err, application.ErrPreconditionFailed):
		slog.Debug("no drive", "error", err)
		fmt.Fprintln(stdout, "No drive detected. Exiting...")
		return 0
	default:
		fmt.Fprintf(stderr, "%s %v\n", red("Error:"), err)
		return 1
	}
}

func init() {
	LogLevel.Set(slog.LevelWarn)

	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP(config.KeySerial, "n", "", "destination volume serial number (env "+config.EnvSerial+")")
	rootCmd.Flags().StringP(config.KeyRelativePath, "p", "", "subpath under the drive root (env "+config.EnvRelativePath+")")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "report decisions without writing anything (implies --verbose output)")
	rootCmd.Flags().BoolVarP(&listDrives, "list-drives", "l", false, "list mounted volumes and their serial numbers, then exit")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "start without asking for confirmation")
	rootCmd.Flags().StringSliceP(config.KeyExclude, "x", nil, "glob of relative paths to skip, e.g. '**/*.tmp' (repeatable)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print every comparison and path decision")
	rootCmd.PersistentFlags().StringP(config.KeyAlgorithm, "a", config.DefaultAlgorithm, "digest algorithm (env "+config.EnvAlgorithm+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file to load")
	rootCmd.PersistentFlags().String(config.KeyJournal, "", `journal database path, "off" disables (env `+config.EnvJournal+`)`)
}

func runBackup(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if listDrives {
		return printDrives(cmd)
	}

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	hasher, err := hashing.New(cfg.Algorithm)
	if err != nil {
		return err
	}

	journal := openJournal(cfg)
	if journal != nil {
		defer journal.Close()
	}

	deps := commands.BackupDeps{
		Resolver:  drives.NewResolver(),
		Store:     filesystem.NewStore(),
		Hasher:    hasher,
		Reporter:  console.NewReporter(out, verbose || dryRun),
		Confirmer: tui.NewPrompt(cmd.InOrStdin(), out),
		Journal:   journal,
	}

	result, err := commands.NewBackupCommand(deps, commands.BackupRequest{
		SourcePath:   filesystem.ExpandHome(cfg.SourcePath),
		Serial:       cfg.Serial,
		RelativePath: cfg.RelativePath,
		Excludes:     cfg.Excludes,
		DryRun:       dryRun,
		Verbose:      verbose,
		SkipConfirm:  assumeYes,
	}).Execute(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, green(result.Message))
	if result.RunID != "" {
		fmt.Fprintf(out, "Run %s recorded in the journal\n", cyan(views.ShortID(result.RunID)))
	}
	return nil
}

func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	opts := loadOptions(cmd)
	if len(args) > 0 {
		opts.Source = args[0]
	}
	return config.Load(opts)
}

// loadDrivelessConfig is for subcommands that never pick a drive, so a bad
// serial in the environment does not stop them
func loadDrivelessConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := loadOptions(cmd)
	opts.SkipSerial = true
	return config.Load(opts)
}

func loadOptions(cmd *cobra.Command) config.LoadOptions {
	return config.LoadOptions{
		EnvFile:        envFile,
		RequireEnvFile: cmd.Flags().Changed("env-file"),
		Flags:          cmd.Flags(),
	}
}

// openJournal returns nil when the journal is disabled or cannot be opened;
// a backup never fails because its history could not be kept
func openJournal(cfg *config.Config) ports.Journal {
	if !cfg.JournalEnabled() {
		return nil
	}

	path := cfg.JournalPath
	if path == "" {
		path = sqlite.DefaultPath()
	}

	journal, err := sqlite.Open(filesystem.ExpandHome(path))
	if err != nil {
		slog.Warn("run journal unavailable", "path", path, "error", err)
		return nil
	}
	return journal
}

func printDrives(cmd *cobra.Command) error {
	volumes, err := commands.NewListDrivesCommand(drives.NewResolver()).Execute(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), views.RenderDrives(volumes))
	return nil
}
