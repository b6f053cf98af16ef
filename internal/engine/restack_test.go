package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/engine"
	sterrors "stacked.dev/st/internal/errors"
)

func TestComputePlan(t *testing.T) {
	t.Run("clean forest needs no steps", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "a", "b")

		steps, err := engine.ComputePlan(fx.refresh("main"), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Empty(t, steps)
	})

	t.Run("stale parent is planned but its clean child is not", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "feat-a", "feat-b")
		m2 := fx.vcs.Commit("main", "main moves")

		steps, err := engine.ComputePlan(fx.refresh("main"), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []engine.Step{{Branch: "feat-a", Parent: "main", Onto: m2}}, steps)
	})

	t.Run("steps follow pre-order", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "x", "x1")
		fx.chain("x", "x2")
		fx.chain("main", "y")
		fx.vcs.Commit("main", "main moves")
		fx.vcs.Commit("x", "x moves")

		// x is stale against main, x1 and x2 against x; y against main
		steps, err := engine.ComputePlan(fx.refresh("main"), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []string{"x", "x1", "x2", "y"}, stepBranches(steps))

		forest := fx.forest()
		for i, s := range steps {
			// every step comes after the step of its parent, if any
			for _, later := range steps[i+1:] {
				require.NotEqual(t, later.Branch, forest.ParentOf(s.Branch))
			}
		}
	})

	t.Run("clean branches are skipped but their children visited", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "a", "b", "c")
		fx.vcs.Commit("b", "b moves")

		steps, err := engine.ComputePlan(fx.refresh("main"), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []string{"c"}, stepBranches(steps))
	})

	t.Run("alphabetical order breaks sibling ties", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "zeta")
		fx.chain("main", "alpha")
		fx.vcs.Commit("main", "main moves")

		steps, err := engine.ComputePlan(fx.refresh("main"), "main", engine.ChildOrderAlphabetical)
		require.NoError(t, err)
		require.Equal(t, []string{"alpha", "zeta"}, stepBranches(steps))

		steps, err = engine.ComputePlan(fx.forest(), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []string{"zeta", "alpha"}, stepBranches(steps))
	})

	t.Run("trunks are never planned", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "a")
		require.NoError(t, fx.store.Update(func(f *engine.Forest) error {
			return f.MarkStale("main")
		}))

		steps, err := engine.ComputePlan(fx.forest(), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Empty(t, steps)
	})

	t.Run("untracked root is rejected", func(t *testing.T) {
		fx := newFixture(t)
		_, err := engine.ComputePlan(fx.forest(), "ghost", engine.ChildOrderInsertion)
		require.ErrorIs(t, err, sterrors.ErrNotTracked)
	})
}

func TestExecutePlan(t *testing.T) {
	t.Run("stale parent with clean child", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "feat-a", "feat-b")
		fx.vcs.Commit("main", "main moves")

		forest := fx.refresh("main")
		steps, err := engine.ComputePlan(forest, "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []string{"feat-a"}, stepBranches(steps))

		plan := engine.NewPlan("main", steps, forest)
		require.NoError(t, fx.restacker().ExecutePlan(fx.ctx, plan))
		require.True(t, plan.Done())

		// feat-b was invalidated by feat-a's restack
		newA := fx.vcs.Tip("feat-a")
		after := fx.forest()
		require.True(t, after.IsClean("feat-a"))
		require.True(t, after.Get("feat-b").Stale)

		steps, err = engine.ComputePlan(fx.refresh("main"), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []engine.Step{{Branch: "feat-b", Parent: "feat-a", Onto: newA}}, steps)
	})

	t.Run("idempotent on a stale chain", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "a", "b", "c")
		fx.vcs.Commit("main", "main moves")
		fx.vcs.Commit("a", "a moves")
		fx.vcs.Commit("b", "b moves")

		forest := fx.refresh("main")
		steps, err := engine.ComputePlan(forest, "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, stepBranches(steps))

		require.NoError(t, fx.restacker().ExecutePlan(fx.ctx, engine.NewPlan("main", steps, forest)))

		steps, err = engine.ComputePlan(fx.refresh("main"), "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Empty(t, steps)

		require.Equal(t, []string{"c commit", "b moves", "b commit", "a moves", "a commit", "main moves", "initial"}, fx.vcs.Subjects("c"))
	})

	t.Run("later steps target the rewritten parent", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "a", "b")
		fx.vcs.Commit("main", "main moves")
		fx.vcs.Commit("a", "a moves")

		forest := fx.refresh("main")
		steps, err := engine.ComputePlan(forest, "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, stepBranches(steps))
		oldA := steps[1].Onto

		plan := engine.NewPlan("main", steps, forest)
		require.NoError(t, fx.restacker().ExecutePlan(fx.ctx, plan))

		require.NotEqual(t, oldA, plan.Steps[1].Onto)
		require.Equal(t, fx.vcs.Tip("a"), plan.Steps[1].Onto)
		require.Equal(t, fx.vcs.Tip("a"), fx.forest().Get("b").BaseSnapshot)
	})

	t.Run("no-op rebase still records the base and invalidates children", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "a", "b")
		require.NoError(t, fx.store.Update(func(f *engine.Forest) error {
			return f.MarkStale("a")
		}))
		tipA := fx.vcs.Tip("a")

		forest := fx.forest()
		steps, err := engine.ComputePlan(forest, "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, stepBranches(steps))

		require.NoError(t, fx.restacker().ExecutePlan(fx.ctx, engine.NewPlan("main", steps, forest)))

		require.Empty(t, fx.vcs.RebaseCalls)
		require.Equal(t, tipA, fx.vcs.Tip("a"))
		after := fx.forest()
		require.True(t, after.IsClean("a"))
		require.True(t, after.Get("b").Stale)
	})

	t.Run("conflict halts with the cursor on the failing step", func(t *testing.T) {
		fx := newFixture(t)
		fx.chain("main", "a", "b", "c")
		fx.vcs.Commit("main", "main moves")
		fx.vcs.Commit("a", "a moves")
		fx.vcs.Commit("b", "b moves")
		fx.vcs.FailNextRebase("b", 1)

		forest := fx.refresh("main")
		steps, err := engine.ComputePlan(forest, "main", engine.ChildOrderInsertion)
		require.NoError(t, err)
		plan := engine.NewPlan("main", steps, forest)

		err = fx.restacker().ExecutePlan(fx.ctx, plan)
		var conflict *sterrors.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, "b", conflict.Branch)
		require.Equal(t, 1, plan.Cursor)

		saved, err := fx.plans.Load()
		require.NoError(t, err)
		require.Equal(t, plan.ID, saved.ID)
		require.Equal(t, 1, saved.Cursor)
		require.NotEmpty(t, saved.Steps[1].OldBase)
	})
}
