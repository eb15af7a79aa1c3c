package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"drivebak/internal/adapters/hashing"
	"drivebak/internal/application/commands"
)

var copyDigest bool

var hashCmd = &cobra.Command{
	Use:   "hash <file>",
	Short: "Print the content digest of a file",
	Long: `Print the digest drivebak uses to compare a file with its backup.

Examples:
  drivebak hash ~/Documents/report.pdf
  drivebak hash -a blake3 report.pdf --copy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDrivelessConfig(cmd)
		if err != nil {
			return err
		}

		hasher, err := hashing.New(cfg.Algorithm)
		if err != nil {
			return err
		}

		result, err := commands.NewHashFileCommand(hasher, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Message)

		if copyDigest {
			if err := clipboard.WriteAll(result.Digest); err != nil {
				return fmt.Errorf("failed to copy digest: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cyan("Digest copied to clipboard"))
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <file-a> <file-b>",
	Short: "Report whether two files have identical content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDrivelessConfig(cmd)
		if err != nil {
			return err
		}

		hasher, err := hashing.New(cfg.Algorithm)
		if err != nil {
			return err
		}

		result, err := commands.NewCompareFilesCommand(hasher, args[0], args[1]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	hashCmd.Flags().BoolVarP(&copyDigest, "copy", "c", false, "copy the digest to the clipboard")
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(compareCmd)
}
