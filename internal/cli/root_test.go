package cli_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/cli"
)

func TestRootCmd(t *testing.T) {
	t.Run("prints the version", func(t *testing.T) {
		var out bytes.Buffer
		cmd := cli.NewRootCmd("1.2.3", "abc123", "2026-01-01")
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--version"})
		require.NoError(t, cmd.Execute())
		require.Equal(t, "st version 1.2.3 (commit abc123, built 2026-01-01)\n", out.String())
	})

	t.Run("registers every command", func(t *testing.T) {
		cmd := cli.NewRootCmd("dev", "none", "unknown")
		var names []string
		for _, c := range cmd.Commands() {
			names = append(names, c.Name())
		}
		for _, want := range []string{
			"init", "track", "untrack", "create", "delete", "move", "restack",
			"continue", "abort", "status", "submit", "sync", "log", "checkout",
			"up", "down", "trunk", "doctor", "info", "pr", "rename", "foreach", "config",
		} {
			require.Contains(t, names, want)
		}
	})

	t.Run("rejects bad step counts", func(t *testing.T) {
		t.Setenv("ST_LOG_FILE", os.DevNull)
		cmd := cli.NewRootCmd("dev", "none", "unknown")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"up", "zero"})
		require.ErrorContains(t, cmd.Execute(), "invalid steps argument")
	})
}
