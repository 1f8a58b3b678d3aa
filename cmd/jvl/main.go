// Command jvl validates JSON and JSONC files against JSON Schema, as a
// one-shot batch checker ("jvl check") or a Language Server Protocol
// backend ("jvl lsp") that re-validates open documents as they change.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		if code, ok := err.(exitCoder); ok {
			if re, ok := err.(*exitError); !ok || !re.reported {
				fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
			}
			return code.ExitCode()
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

// exitCoder lets a command's RunE return a specific process exit code
// (1 for validation failures, 2 for tool errors) instead of always
// exiting 1 on any returned error, matching the CLI's documented exit
// code contract.
type exitCoder interface {
	error
	ExitCode() int
}

// exitError is the concrete exitCoder every command returns. reported
// marks an error whose message was already written to stderr at the
// point of failure (e.g. rendered as part of a batch's diagnostics), so
// run() doesn't print it a second time.
type exitError struct {
	code     int
	msg      string
	reported bool
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jvl",
		Short:         "JSON Schema Validator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newLSPCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newSchemaCommand())
	cmd.AddCommand(newCompletionsCommand())

	return cmd
}
