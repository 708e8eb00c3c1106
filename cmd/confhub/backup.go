package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"confhub/internal/props"
	"confhub/internal/store"
)

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Copy the host's settings into a local properties file",
	Long: `Copy every key-value pair from the host into the given properties
file: the file's previous contents are cleared first, then all entries are
written. The two steps are not atomic; a failure in between leaves the file
empty.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enc, err := props.ParseEncoding(cfg.Host.Encoding)
		if err != nil {
			return err
		}
		target, err := store.Open(args[0], enc)
		if err != nil {
			return err
		}

		n, err := newClient().BackupTo(cmd.Context(), target)
		if err != nil {
			return err
		}
		if err := target.Save("backup of " + cfg.Host.Authority); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the host's settings from a local properties file",
	Long: `Clear the host's settings, then copy every entry from the given
properties file into it. The clear and the copy are independent requests;
a failure in between leaves the host empty. The restored state is in memory
only until a save.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("source file: %w", err)
		}

		enc, err := props.ParseEncoding(cfg.Host.Encoding)
		if err != nil {
			return err
		}
		source, err := store.Open(args[0], enc)
		if err != nil {
			return err
		}

		n, err := newClient().RestoreFrom(cmd.Context(), source)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd, restoreCmd)
}
