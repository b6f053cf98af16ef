package integration

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/testhelpers"
)

// TestShell wraps a test scene so tests read like a terminal session
type TestShell struct {
	t          *testing.T
	scene      *testhelpers.Scene
	binaryPath string
	lastOutput string
}

// NewTestShell creates a repository with one commit on main and runs `st init`
func NewTestShell(t *testing.T) *TestShell {
	t.Helper()
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("initial", "init")
	})
	sh := &TestShell{t: t, scene: scene, binaryPath: getStBinary(t)}
	return sh.Run("init")
}

func (s *TestShell) exec(name string, args string) error {
	cmd := exec.Command(name, splitArgs(args)...)
	cmd.Dir = s.scene.Dir
	cmd.Env = append(os.Environ(), "ST_NON_INTERACTIVE=true", "ST_LOG_FILE="+os.DevNull, "NO_COLOR=1")
	output, err := cmd.CombinedOutput()
	s.lastOutput = string(output)
	return err
}

// Run executes an st command, e.g. "create feature-a -m 'Add feature'"
func (s *TestShell) Run(args string) *TestShell {
	s.t.Helper()
	require.NoError(s.t, s.exec(s.binaryPath, args), "$ st %s\n%s", args, s.lastOutput)
	return s
}

// RunExpectError executes an st command and expects it to fail
func (s *TestShell) RunExpectError(args string) *TestShell {
	s.t.Helper()
	require.Error(s.t, s.exec(s.binaryPath, args), "$ st %s (expected error)\n%s", args, s.lastOutput)
	return s
}

// Git executes a raw git command
func (s *TestShell) Git(args string) *TestShell {
	s.t.Helper()
	require.NoError(s.t, s.exec("git", args), "$ git %s\n%s", args, s.lastOutput)
	return s
}

// Write creates or modifies a file and stages it
func (s *TestShell) Write(prefix, content string) *TestShell {
	s.t.Helper()
	require.NoError(s.t, s.scene.Repo.CreateChange(content, prefix, false), "failed to write %s", prefix)
	return s
}

// Commit creates a file change and commits it
func (s *TestShell) Commit(prefix, message string) *TestShell {
	s.t.Helper()
	require.NoError(s.t, s.scene.Repo.CreateChangeAndCommit(message, prefix), "failed to commit %s", prefix)
	return s
}

// Amend modifies a file and folds it into the last commit
func (s *TestShell) Amend(prefix, content string) *TestShell {
	s.t.Helper()
	return s.Write(prefix, content).Git("commit --amend --no-edit")
}

// Output returns the last command's output
func (s *TestShell) Output() string {
	return s.lastOutput
}

// OutputContains asserts the last output contains substr
func (s *TestShell) OutputContains(substr string) *TestShell {
	s.t.Helper()
	require.Contains(s.t, s.lastOutput, substr)
	return s
}

// OutputNotContains asserts the last output does not contain substr
func (s *TestShell) OutputNotContains(substr string) *TestShell {
	s.t.Helper()
	require.NotContains(s.t, s.lastOutput, substr)
	return s
}

// OnBranch asserts the checked out branch
func (s *TestShell) OnBranch(expected string) *TestShell {
	s.t.Helper()
	branch, err := s.scene.Repo.CurrentBranchName()
	require.NoError(s.t, err)
	require.Equal(s.t, expected, branch)
	return s
}

// Stacked asserts branch contains parent's tip
func (s *TestShell) Stacked(branch, parent string) *TestShell {
	s.t.Helper()
	testhelpers.ExpectStacked(s.t, s.scene.Repo, branch, parent)
	return s
}

// Ref returns the commit a branch points at
func (s *TestShell) Ref(branch string) string {
	s.t.Helper()
	sha, err := s.scene.Repo.GetRef(branch)
	require.NoError(s.t, err)
	return sha
}

// CommitCount asserts the number of commits in from..to
func (s *TestShell) CommitCount(from, to string, expected int) *TestShell {
	s.t.Helper()
	out, err := s.scene.Repo.RunGitCommandAndGetOutput("rev-list", "--count", from+".."+to)
	require.NoError(s.t, err)
	require.Equal(s.t, strconv.Itoa(expected), out, "commits in %s..%s", from, to)
	return s
}

// Log documents a test step
func (s *TestShell) Log(msg string) *TestShell {
	s.t.Log(msg)
	return s
}

// splitArgs splits a command string into args, respecting quotes
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, r := range s {
		switch {
		case r == '"' || r == '\'':
			switch {
			case inQuote && r == quoteChar:
				inQuote = false
			case !inQuote:
				inQuote = true
				quoteChar = r
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}
