package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var containsCmd = &cobra.Command{
	Use:   "contains <key>",
	Short: "Test whether the host's settings contain a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := newClient().Contains(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, found, err := newClient().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: not found", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var getAllCmd = &cobra.Command{
	Use:   "get-all",
	Short: "Print every key-value pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := newClient().GetAll(cmd.Context())
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, all[k])
		}
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Set one key-value pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().Put(cmd.Context(), args[0], args[1])
	},
}

var putAllCmd = &cobra.Command{
	Use:   "put-all <key=value>...",
	Short: "Set several pairs in one request",
	Long: `Set several key-value pairs in a single round trip. Pairs apply
independently on the host; there is no cross-key atomicity.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := make(map[string]string, len(args))
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok || key == "" {
				return fmt.Errorf("argument %q is not key=value", arg)
			}
			entries[key] = value
		}
		n, err := newClient().PutAll(cmd.Context(), entries)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a key-value pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := newClient().Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), removed)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every key-value pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newClient().Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Ask the host to persist its settings to disk",
	Long: `Ask the host to persist its in-memory settings to the backing file.
Prints the number of entries persisted; 0 means nothing was durably saved,
either because persistence failed or because the host is degraded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newClient().Save(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the host's status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newClient().Status(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "authority: %s\n", s.Authority)
		fmt.Fprintf(out, "entries:   %d\n", s.Size)
		fmt.Fprintf(out, "file:      %s\n", s.File)
		fmt.Fprintf(out, "degraded:  %v\n", s.Degraded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(containsCmd, getCmd, getAllCmd, putCmd, putAllCmd,
		removeCmd, clearCmd, saveCmd, statusCmd)
}
