package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplogConsole(t *testing.T) {
	var buf bytes.Buffer
	splog, err := NewSplogWithConfig(SplogOptions{Writer: &buf})
	require.NoError(t, err)

	splog.Info("restacked %d branches", 3)
	splog.Debug("hidden")
	splog.Warn("careful")
	splog.Tip("run st continue")
	require.Equal(t, "restacked 3 branches\n⚠️  careful\n💡 run st continue\n", buf.String())

	buf.Reset()
	splog.SetQuiet(true)
	splog.Info("suppressed")
	splog.Page("also suppressed")
	require.Empty(t, buf.String())
}

func TestSplogDebugAttrs(t *testing.T) {
	var buf bytes.Buffer
	splog, err := NewSplogWithConfig(SplogOptions{Writer: &buf, Debug: true})
	require.NoError(t, err)

	splog.Logger().With("plan", "p1").Debug("rebasing", "branch", "feat-b")
	splog.Logger().Info("only the message", "branch", "feat-b")
	require.Equal(t, "rebasing plan=p1 branch=feat-b\nonly the message\n", buf.String())
}

func TestSplogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "st.log")
	var buf bytes.Buffer
	splog, err := NewSplogWithConfig(SplogOptions{Writer: &buf, LogFile: path})
	require.NoError(t, err)

	splog.Debug("to the file only")
	require.NoError(t, splog.Close())
	require.Empty(t, buf.String())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "level=DEBUG")
	require.Contains(t, string(content), `msg="to the file only"`)
}

func TestLogFilePath(t *testing.T) {
	t.Setenv("ST_LOG_FILE", "/tmp/custom.log")
	require.Equal(t, "/tmp/custom.log", LogFilePath())

	t.Setenv("ST_LOG_FILE", "")
	t.Setenv("HOME", "/home/dev")
	require.Equal(t, filepath.Join("/home/dev", ".st", "logs", "st.log"), LogFilePath())
}

func TestLumberjackEnv(t *testing.T) {
	t.Setenv("ST_LOG_MAX_SIZE", "5")
	t.Setenv("ST_LOG_MAX_BACKUPS", "0")
	t.Setenv("ST_LOG_MAX_AGE", "junk")

	l := createLumberjackLogger("x.log")
	require.Equal(t, 5, l.MaxSize)
	require.Equal(t, 0, l.MaxBackups)
	require.Equal(t, 30, l.MaxAge)
}
