package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionsGeneratesScriptForEachSupportedShell(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, code := execRoot("completions", shell)
			assert.Equal(t, 0, code)
			assert.NotEmpty(t, stdout)
		})
	}
}

func TestCompletionsRejectsUnknownShell(t *testing.T) {
	_, _, code := execRoot("completions", "cmd.exe")
	assert.Equal(t, 2, code)
}

func TestCompletionsRequiresExactlyOneArg(t *testing.T) {
	_, _, code := execRoot("completions")
	assert.Equal(t, 2, code)
}
