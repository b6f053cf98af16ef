package integration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackWorkflow(t *testing.T) {
	sh := NewTestShell(t)

	sh.Log("Building main -> feature-a -> feature-b -> feature-c")
	sh.Write("feature_a", "feature a").Run("create feature-a -m 'Add feature A'").OnBranch("feature-a")
	sh.Write("feature_b", "feature b").Run("create feature-b -m 'Add feature B'").OnBranch("feature-b")
	sh.Write("feature_c", "feature c").Run("create feature-c -m 'Add feature C'").OnBranch("feature-c")

	sh.Run("log").
		OutputContains("○ main\n└─○ feature-a\n  └─○ feature-b\n    └─● feature-c (current)\n")

	sh.Log("Amending feature-a leaves everything above it behind")
	sh.Run("down 2").OnBranch("feature-a").
		Commit("feature_a_extra", "More feature A").
		Amend("feature_a_extra", "amended")

	sh.Run("restack").
		OutputContains("Restacked feature-b on feature-a.").
		OutputContains("Restacked feature-c on feature-b.").
		OnBranch("feature-a")
	sh.Stacked("feature-b", "feature-a").Stacked("feature-c", "feature-b").
		CommitCount("main", "feature-a", 2).
		CommitCount("feature-a", "feature-c", 2)

	sh.Run("info feature-b").
		OutputContains("Parent: feature-a").
		OutputContains("Add feature B").
		OutputNotContains("needs restack")
}

func TestTrunkMovesUnderAStack(t *testing.T) {
	sh := NewTestShell(t)
	sh.Write("a", "a").Run("create feat-a -m 'feat a'")
	sh.Write("b", "b").Run("create feat-b -m 'feat b'")

	sh.Run("checkout main").Commit("main_next", "main moves on")

	sh.Run("restack main").
		OutputContains("Restacked feat-a on main.").
		OutputContains("Restacked feat-b on feat-a.").
		OnBranch("main")
	sh.Stacked("feat-a", "main").Stacked("feat-b", "feat-a").
		CommitCount("main", "feat-a", 1).
		CommitCount("feat-a", "feat-b", 1)

	sh.Log("A second restack has nothing to do")
	before := sh.Ref("feat-b")
	sh.Run("restack main").OutputContains("All branches are up to date.")
	require.Equal(t, before, sh.Ref("feat-b"))
}

func TestIndependentStacksAreUntouched(t *testing.T) {
	sh := NewTestShell(t)
	sh.Write("a", "a").Run("create a -m 'a'")
	sh.Write("b", "b").Run("create b -m 'b'")
	sh.Run("checkout main")
	sh.Write("x", "x").Run("create x -m 'x'")
	sh.Write("y", "y").Run("create y -m 'y'")

	x, y := sh.Ref("x"), sh.Ref("y")

	sh.Run("checkout a").Amend("a", "a amended")
	sh.Run("restack").OutputContains("Restacked b on a.")

	require.Equal(t, x, sh.Ref("x"))
	require.Equal(t, y, sh.Ref("y"))
	sh.Stacked("b", "a")
}

func TestRepairAfterManualGitChanges(t *testing.T) {
	sh := NewTestShell(t)
	sh.Write("a", "a").Run("create a -m 'a'")
	sh.Write("b", "b").Run("create b -m 'b'")
	sh.Run("checkout main")

	sh.Git("branch -D a")
	sh.Run("doctor").OutputContains("deleted outside st")
	sh.Run("doctor --fix").OutputContains("Untracked deleted branch a")

	sh.Run("log").OutputContains("└─○ b").OutputNotContains("─○ a")
	sh.Run("restack b").OutputContains("Restacked b on main.")
	sh.Stacked("b", "main").CommitCount("main", "b", 1)
}
