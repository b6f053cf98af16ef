package testhelpers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/git"
	"stacked.dev/st/testhelpers"
)

func TestSceneAssertions(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("feature work", "feature"))
	require.NoError(t, scene.Repo.CheckoutBranch("main"))

	testhelpers.ExpectBranches(t, scene.Repo, []string{"main", "feature"})
	testhelpers.ExpectCommits(t, scene.Repo, "feature", []string{"feature work", "1"})
	testhelpers.ExpectStacked(t, scene.Repo, "feature", "main")
}

func TestFakeVCSRebase(t *testing.T) {
	ctx := context.Background()
	vcs := testhelpers.NewFakeVCS("main")
	fork := vcs.Tip("main")
	before := vcs.Branch("a", "main", "a1", "a2")
	vcs.Commit("main", "m2")

	t.Run("replays commits onto the new base", func(t *testing.T) {
		result, err := vcs.Rebase(ctx, "a", "main", fork)
		require.NoError(t, err)
		require.Equal(t, git.RebaseDone, result)
		require.NotEqual(t, before, vcs.Tip("a"))
		require.Equal(t, []string{"a2", "a1", "m2", "initial"}, vcs.Subjects("a"))
	})

	t.Run("stops on an injected conflict until resolved", func(t *testing.T) {
		vcs.Commit("main", "m3")
		tip := vcs.Tip("a")
		vcs.FailNextRebase("a", 1)

		result, err := vcs.Rebase(ctx, "a", "main", vcs.Tip("main"))
		require.NoError(t, err)
		require.Equal(t, git.RebaseConflict, result)
		require.True(t, vcs.RebaseInProgress())
		require.Equal(t, tip, vcs.Tip("a"))

		result, err = vcs.ContinueRebase(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, git.RebaseConflict, result)

		vcs.ResolveConflict()
		result, err = vcs.ContinueRebase(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, git.RebaseDone, result)
		require.False(t, vcs.RebaseInProgress())
		require.Equal(t, []string{"a", "a"}, vcs.RebasedBranches())
	})
}
