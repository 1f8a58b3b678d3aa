package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sargunv/jvl/internal/schema"
)

func newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage jvl's on-disk cache of remote schemas",
	}
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the HTTP schema cache",
	}
	cacheCmd.AddCommand(newSchemaCacheListCommand())
	cacheCmd.AddCommand(newSchemaCacheClearCommand())
	cmd.AddCommand(cacheCmd)
	return cmd
}

func newSchemaCacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached remote schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, skipped, err := schema.ListCachedSchemas()
			if err != nil {
				return &exitError{code: 2, msg: err.Error()}
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no cached schemas")
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%d bytes\tfetched %s\n", e.URL, e.Size, e.FetchedAt)
			}
			if skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped %d corrupt cache %s\n", skipped, plural(skipped))
			}
			return nil
		},
	}
}

func plural(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

func newSchemaCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the entire on-disk schema cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleared, err := schema.ClearCache()
			if err != nil {
				return &exitError{code: 2, msg: err.Error()}
			}
			if cleared {
				fmt.Fprintln(cmd.OutOrStdout(), "schema cache cleared")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "schema cache was already empty")
			}
			return nil
		},
	}
}
