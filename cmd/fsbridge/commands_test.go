// cmd/fsbridge/commands_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: cobra command tree, temp dirs, real fsnotify
// PURPOSE: Test the CLI surface and a session driven through the root command

package fsbridge

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/fsbridge/pkg/errors"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fsbridge dev")
	assert.Contains(t, out, "protocol 1")
}

func TestCompletionCmd(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "", "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "fsbridge")
		})
	}

	_, err := execute(t, "", "completion", "tcsh")
	assert.Error(t, err)
}

func TestManCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "man1")
	_, err := execute(t, "", "man", dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "fsbridge.1"))
	assert.FileExists(t, filepath.Join(dir, "fsbridge-version.1"))
}

func TestGenConfigCmd(t *testing.T) {
	out, err := execute(t, "", "genconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "[watch]")
	assert.Contains(t, out, "[bridge]")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, err := execute(t, "", "unexpected")
	assert.Error(t, err)
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "", "--log-file", "-", "--config", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestRootCmd_RunsSession(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0644))

	stdin := strings.Join([]string{
		"VERSION 1",
		"START r " + root,
		"CHANGES r",
	}, "\n") + "\n"

	out, err := execute(t, stdin, "--log-file", "-")

	// input ends after the last command, which closes the session
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, []string{"VERSION 1", "OK", "DONE"}, lines[:3])
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "ERROR "))
}
