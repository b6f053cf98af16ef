package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/engine"
	"stacked.dev/st/testhelpers"
	"stacked.dev/st/testhelpers/scenario"
)

func TestInitCommand(t *testing.T) {
	s := newCliScenario(t)

	out := s.RunExpectError("log")
	require.Contains(t, out, "st init")

	out, err := s.RunCliAndGetOutput("init")
	require.NoError(t, err, out)
	require.Contains(t, out, "Trunk set to main.")
	require.True(t, s.Engine().Initialized())
}

func TestCreateAndLog(t *testing.T) {
	s := newCliScenario(t).RunCli("init")

	require.NoError(t, s.Scene.Repo.CreateChange("login page", "login", true))
	out, err := s.RunCliAndGetOutput("create", "-a", "-m", "Add login page")
	require.NoError(t, err, out)
	require.Contains(t, out, "Created add-login-page on top of main.")
	s.ExpectBranch("add-login-page").ExpectParent("add-login-page", "main")
	testhelpers.ExpectCommits(t, s.Scene.Repo, "add-login-page", []string{"Add login page", "1"})

	s.RunCli("create", "follow-up")
	s.ExpectBranch("follow-up").ExpectParent("follow-up", "add-login-page")

	out, err = s.RunCliAndGetOutput("log")
	require.NoError(t, err, out)
	require.Contains(t, out, "○ main\n└─○ add-login-page\n  └─● follow-up (current)\n")

	s.RunCli("down", "2")
	s.ExpectBranch("main")
	s.RunCli("up")
	s.ExpectBranch("add-login-page")
}

func TestTrackCommand(t *testing.T) {
	s := newCliScenario(t).RunCli("init")
	s.RunGit("checkout", "-b", "feature")
	s.CommitChange("feature", "feature work")

	out := s.RunExpectError("track")
	require.Contains(t, out, "--parent")

	s.RunCli("track", "--parent", "main")
	s.ExpectParent("feature", "main").ExpectClean("feature", true)

	s.RunCli("untrack", "feature")
	forest, err := s.Engine().Forest()
	require.NoError(t, err)
	require.False(t, forest.IsTracked("feature"))
}

// conflictScenario leaves `st restack main` stopped on a conflict in a
func conflictScenario(t *testing.T) (*scenario.Scenario, string) {
	t.Helper()
	s := newCliScenario(t).RunCli("init")
	s.WithStack(map[string]string{"a": "main", "b": "a"})
	origA, err := s.Scene.Repo.GetRef("a")
	require.NoError(t, err)
	s.CommitChange("a", "main touches a's file")

	out, err := s.RunCliAndGetOutput("restack", "main")
	require.NoError(t, err, out)
	require.Contains(t, out, "Hit conflict restacking a on main")
	require.Contains(t, out, "st continue")
	require.Equal(t, engine.StateAwaitingResolution, s.Engine().State())
	return s, origA
}

func TestRestackConflictContinue(t *testing.T) {
	s, _ := conflictScenario(t)

	out := s.RunExpectError("restack", "a")
	require.Contains(t, out, "st continue")

	out, err := s.RunCliAndGetOutput("status")
	require.NoError(t, err, out)
	require.Contains(t, out, "✗ a onto main")

	out = s.RunExpectError("continue")
	require.Contains(t, out, "git add")

	require.NoError(t, s.Scene.Repo.CreateChange("resolved", "a", true))
	out, err = s.RunCliAndGetOutput("continue", "--all")
	require.NoError(t, err, out)
	require.Contains(t, out, "Restacked b on a.")
	require.Equal(t, engine.StateIdle, s.Engine().State())
	testhelpers.ExpectStacked(t, s.Scene.Repo, "a", "main")
	testhelpers.ExpectStacked(t, s.Scene.Repo, "b", "a")
}

func TestRestackConflictAbort(t *testing.T) {
	s, origA := conflictScenario(t)

	out := s.RunExpectError("abort")
	require.Contains(t, out, "--force")

	s.RunCli("abort", "--force")
	require.Equal(t, engine.StateIdle, s.Engine().State())
	require.False(t, s.Scene.Repo.RebaseInProgress())
	tip, err := s.Scene.Repo.GetRef("a")
	require.NoError(t, err)
	require.Equal(t, origA, tip)
	s.ExpectClean("a", false)
}

func TestDeleteAndMoveCommands(t *testing.T) {
	s := newCliScenario(t).RunCli("init")
	s.WithStack(map[string]string{"a": "main", "b": "a", "c": "main"})

	out := s.RunExpectError("delete", "a")
	require.Contains(t, out, "--force")

	s.RunCli("delete", "a", "--force")
	s.ExpectParent("b", "main").ExpectClean("b", false)
	testhelpers.ExpectBranches(t, s.Scene.Repo, []string{"b", "c", "main"})

	s.RunCli("restack", "b")
	testhelpers.ExpectStacked(t, s.Scene.Repo, "b", "main")

	s.RunCli("move", "--source", "b", "--onto", "c")
	s.ExpectParent("b", "c").ExpectClean("b", true)
	testhelpers.ExpectStacked(t, s.Scene.Repo, "b", "c")

	out = s.RunExpectError("move", "--source", "c", "--onto", "b")
	require.Contains(t, out, "cycle")
}

func TestTrunkCommands(t *testing.T) {
	s := newCliScenario(t).RunCli("init")
	s.RunGit("branch", "release")

	s.RunCli("trunk", "add", "release")
	out, err := s.RunCliAndGetOutput("trunk", "list")
	require.NoError(t, err, out)
	require.Equal(t, "main (primary)\nrelease\n", out)

	s.RunGit("checkout", "release")
	s.RunCli("trunk")
	s.ExpectBranch("release")
}
