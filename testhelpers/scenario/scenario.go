// Package scenario combines a Scene with a runtime Context to give
// integration tests a terse API over a real repository.
package scenario

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/engine"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui"
	"stacked.dev/st/testhelpers"
)

// Scenario is a scene plus an opened runtime context whose output is captured
type Scenario struct {
	T          *testing.T
	Scene      *testhelpers.Scene
	Context    *runtime.Context
	Output     *bytes.Buffer
	BinaryPath string
}

// NewScenario creates a repository, runs setup and opens a context on it.
// NOTE: not safe for parallel tests since it uses t.Setenv.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()
	t.Setenv("ST_NON_INTERACTIVE", "true")
	t.Setenv("ST_LOG_FILE", os.DevNull)

	s := &Scenario{T: t, Scene: testhelpers.NewScene(t, setup), Output: &bytes.Buffer{}}
	return s.Reload()
}

// Reload reopens the context so state written by another process is seen
func (s *Scenario) Reload() *Scenario {
	s.T.Helper()
	splog, err := tui.NewSplogWithConfig(tui.SplogOptions{Writer: s.Output})
	require.NoError(s.T, err)
	ctx, err := runtime.Open(context.Background(), s.Scene.Dir, splog)
	require.NoError(s.T, err)
	if s.Context != nil {
		ctx.NewHost, ctx.Pusher = s.Context.NewHost, s.Context.Pusher
	}
	s.Context = ctx
	return s
}

// Engine returns the engine of the current context
func (s *Scenario) Engine() *engine.Engine {
	return s.Context.Engine
}

// Init initializes st with trunk main
func (s *Scenario) Init() *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Engine().Init(context.Background(), "main"))
	return s
}

// RunGit runs a git command in the scenario's repository.
func (s *Scenario) RunGit(args ...string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.RunGitCommand(args...))
	return s
}

// Checkout checks out a branch.
func (s *Scenario) Checkout(branch string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CheckoutBranch(branch))
	return s
}

// CommitChange creates a file change and commits it.
func (s *Scenario) CommitChange(name, message string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit(message, name))
	return s
}

// WithStack creates and tracks branches. The map keys are branch names and
// the values their parents; every branch gets one commit. The checkout ends
// on main.
func (s *Scenario) WithStack(structure map[string]string) *Scenario {
	s.T.Helper()
	if !s.Engine().Initialized() {
		s.Init()
	}

	names := make([]string, 0, len(structure))
	for name := range structure {
		names = append(names, name)
	}
	slices.Sort(names)

	created := map[string]bool{"main": true}
	for len(created) < len(structure)+1 {
		progress := false
		for _, branch := range names {
			parent := structure[branch]
			if created[branch] || !created[parent] {
				continue
			}
			s.Checkout(parent)
			require.NoError(s.T, s.Scene.Repo.CreateAndCheckoutBranch(branch))
			s.CommitChange(branch, "change on "+branch)
			require.NoError(s.T, s.Engine().TrackBranch(context.Background(), branch, parent))
			created[branch] = true
			progress = true
		}
		if !progress {
			s.T.Fatalf("could not resolve stack structure: circular dependency or missing parent")
		}
	}
	return s.Checkout("main")
}

// ExpectParent asserts the tracked parent of branch
func (s *Scenario) ExpectParent(branch, parent string) *Scenario {
	s.T.Helper()
	forest, err := s.Engine().Forest()
	require.NoError(s.T, err)
	require.Equal(s.T, parent, forest.ParentOf(branch), "parent of %s", branch)
	return s
}

// ExpectClean asserts whether branch sits on its parent's tip
func (s *Scenario) ExpectClean(branch string, clean bool) *Scenario {
	s.T.Helper()
	forest, err := s.Engine().Forest()
	require.NoError(s.T, err)
	require.Equal(s.T, clean, forest.IsClean(branch), "clean state of %s", branch)
	return s
}

// ExpectBranch asserts that the current branch is as expected.
func (s *Scenario) ExpectBranch(expected string) *Scenario {
	s.T.Helper()
	actual, err := s.Scene.Repo.CurrentBranchName()
	require.NoError(s.T, err)
	require.Equal(s.T, expected, actual)
	return s
}

// WithBinaryPath sets the st binary used by the RunCli methods.
func (s *Scenario) WithBinaryPath(path string) *Scenario {
	s.BinaryPath = path
	return s
}

// RunCli runs st, requires success and reloads the context.
func (s *Scenario) RunCli(args ...string) *Scenario {
	s.T.Helper()
	output, err := s.RunCliAndGetOutput(args...)
	require.NoError(s.T, err, "CLI command failed: st %v\nOutput: %s", args, output)
	return s
}

// RunCliAndGetOutput runs st and returns its combined output.
func (s *Scenario) RunCliAndGetOutput(args ...string) (string, error) {
	s.T.Helper()
	if s.BinaryPath == "" {
		s.T.Fatal("BinaryPath not set. Call WithBinaryPath first.")
	}
	cmd := exec.Command(s.BinaryPath, args...)
	cmd.Dir = s.Scene.Dir
	cmd.Env = append(os.Environ(), "ST_NON_INTERACTIVE=true", "ST_LOG_FILE="+os.DevNull, "NO_COLOR=1")
	output, err := cmd.CombinedOutput()
	s.Reload()
	return string(output), err
}

// RunExpectError runs st and requires it to fail.
func (s *Scenario) RunExpectError(args ...string) string {
	s.T.Helper()
	output, err := s.RunCliAndGetOutput(args...)
	require.Error(s.T, err, "expected CLI command to fail: st %v\nOutput: %s", args, output)
	return output
}
