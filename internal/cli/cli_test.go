package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"sessions", "purge"},
		{"users", "create"},
		{"seed"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestPromptPassword_Piped(t *testing.T) {
	got, err := promptPassword(strings.NewReader("s3cret-pass\nignored\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", got)

	got, err = promptPassword(strings.NewReader("no-newline"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)

	_, err = promptPassword(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPromptPassword_Terminal(t *testing.T) {
	origTerm, origRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = origTerm, origRead })

	isTerminal = func(int) bool { return true }

	answers := [][]byte{[]byte("password1"), []byte("password1")}
	readPassword = func(int) ([]byte, error) {
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}

	var out bytes.Buffer
	got, err := promptPassword(os.Stdin, &out)
	require.NoError(t, err)
	assert.Equal(t, "password1", got)
	assert.Contains(t, out.String(), "Confirm password")

	answers = [][]byte{[]byte("password1"), []byte("password2")}
	_, err = promptPassword(os.Stdin, &out)
	assert.ErrorIs(t, err, errPasswordMismatch)
}

func TestLoad_MissingConfig(t *testing.T) {
	opts := &rootOptions{configPath: filepath.Join(t.TempDir(), "absent.yaml")}

	_, err := opts.load()
	assert.Error(t, err)
}
