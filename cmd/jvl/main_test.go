package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCommandRegistersAllSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"check", "lsp", "config", "schema", "completions"} {
		assert.True(t, names[want], "expected subcommand %q to be registered", want)
	}
}

func TestExitErrorImplementsExitCoder(t *testing.T) {
	var err error = &exitError{code: 2, msg: "boom"}
	coded, ok := err.(exitCoder)
	assert.True(t, ok)
	assert.Equal(t, 2, coded.ExitCode())
	assert.Equal(t, "boom", coded.Error())
}

func TestRunReturnsTwoOnUnknownCommand(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"not-a-real-command"})
	root.SilenceUsage = true
	root.SilenceErrors = true
	err := root.Execute()
	assert.Error(t, err)

	_, _, code := execRoot("not-a-real-command")
	assert.Equal(t, 2, code)
}
