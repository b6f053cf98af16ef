package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/engine"
	sterrors "stacked.dev/st/internal/errors"
)

func buildForest(t *testing.T, edges ...[2]string) *engine.Forest {
	t.Helper()
	f := engine.NewForest("main")
	for _, e := range edges {
		require.NoError(t, f.Track(e[0], e[1]))
	}
	require.NoError(t, f.Validate())
	return f
}

func TestForestTrack(t *testing.T) {
	t.Run("links parent and child", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"}, [2]string{"b", "a"})

		require.Equal(t, "a", f.ParentOf("b"))
		require.Equal(t, []string{"b"}, f.ChildrenOf("a"))
		require.Equal(t, []string{"main", "a"}, f.AncestorsOf("b"))
		require.True(t, f.IsTrunk("main"))
		require.False(t, f.IsTrunk("a"))
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"})
		require.ErrorIs(t, f.Track("a", "main"), sterrors.ErrDuplicate)
	})

	t.Run("rejects untracked parents", func(t *testing.T) {
		f := buildForest(t)
		var dangling *sterrors.DanglingParentError
		require.ErrorAs(t, f.Track("a", "ghost"), &dangling)
		require.Equal(t, "ghost", dangling.Parent)
	})

	t.Run("rejects self parent", func(t *testing.T) {
		f := buildForest(t)
		require.ErrorIs(t, f.Track("a", "a"), sterrors.ErrCycle)
	})

	t.Run("new branches start stale", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"})
		require.False(t, f.IsClean("a"))
		require.True(t, f.IsClean("main"))
	})
}

func TestForestReparent(t *testing.T) {
	t.Run("rejects cycles", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"}, [2]string{"b", "a"}, [2]string{"c", "b"})

		err := f.Reparent("a", "c")
		var cycle *sterrors.CycleError
		require.ErrorAs(t, err, &cycle)
		require.Equal(t, "a", cycle.Branch)

		require.ErrorIs(t, f.Reparent("a", "a"), sterrors.ErrCycle)
		require.Equal(t, "main", f.ParentOf("a"))
		require.NoError(t, f.Validate())
	})

	t.Run("moves the subtree and marks it stale", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"}, [2]string{"b", "main"}, [2]string{"c", "b"})
		require.NoError(t, f.MarkClean("b", "x"))

		require.NoError(t, f.Reparent("b", "a"))

		require.Equal(t, "a", f.ParentOf("b"))
		require.Equal(t, []string{"a"}, f.ChildrenOf("main"))
		require.Equal(t, []string{"b"}, f.ChildrenOf("a"))
		require.Equal(t, []string{"c"}, f.ChildrenOf("b"))
		require.True(t, f.Get("b").Stale)
		require.NoError(t, f.Validate())
	})

	t.Run("trunks cannot be moved", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"})
		require.ErrorIs(t, f.Reparent("main", "a"), sterrors.ErrTrunkOperation)
	})
}

func TestForestUntrackAndRemove(t *testing.T) {
	t.Run("untrack requires a leaf", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"}, [2]string{"b", "a"})

		var hasChildren *sterrors.HasChildrenError
		require.ErrorAs(t, f.Untrack("a"), &hasChildren)
		require.Equal(t, []string{"b"}, hasChildren.Children)

		require.NoError(t, f.Untrack("b"))
		require.NoError(t, f.Untrack("a"))
		require.Empty(t, f.ChildrenOf("main"))
		require.ErrorIs(t, f.Untrack("a"), sterrors.ErrNotTracked)
		require.ErrorIs(t, f.Untrack("main"), sterrors.ErrTrunkOperation)
	})

	t.Run("remove hands children to the parent in place", func(t *testing.T) {
		f := buildForest(t,
			[2]string{"x", "main"},
			[2]string{"a", "main"},
			[2]string{"y", "main"},
			[2]string{"a1", "a"},
			[2]string{"a2", "a"},
		)
		require.NoError(t, f.MarkClean("a1", "base"))

		require.NoError(t, f.Remove("a"))

		require.Equal(t, []string{"x", "a1", "a2", "y"}, f.ChildrenOf("main"))
		require.Equal(t, "main", f.ParentOf("a1"))
		require.True(t, f.Get("a1").Stale)
		require.NoError(t, f.Validate())
	})

	t.Run("remote links are archived", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"})
		require.NoError(t, f.SetRemote("a", &engine.RemoteLink{PRNumber: 7, Base: "main"}))

		require.NoError(t, f.Remove("a"))

		require.Contains(t, f.Archive, "a")
		require.Equal(t, 7, f.Archive["a"].PRNumber)
		require.True(t, f.Archive["a"].Archived)
	})
}

func TestForestTraversal(t *testing.T) {
	f := buildForest(t,
		[2]string{"x", "main"},
		[2]string{"x2", "x"},
		[2]string{"x1", "x"},
		[2]string{"y", "main"},
		[2]string{"y1", "y"},
		[2]string{"y2", "y1"},
	)

	t.Run("descendants are pre-order in insertion order", func(t *testing.T) {
		require.Equal(t, []string{"x", "x2", "x1", "y", "y1", "y2"}, f.Descendants("main", engine.ChildOrderInsertion))
	})

	t.Run("alphabetical order sorts siblings", func(t *testing.T) {
		require.Equal(t, []string{"x", "x1", "x2", "y", "y1", "y2"}, f.Descendants("main", engine.ChildOrderAlphabetical))
	})

	t.Run("stack follows the linear chain until a fork", func(t *testing.T) {
		require.Equal(t, []string{"y", "y1", "y2"}, f.StackOf("y"))
		require.Equal(t, []string{"y", "y1", "y2"}, f.StackOf("y1"))
		require.Equal(t, []string{"x"}, f.StackOf("x"))
		require.Equal(t, []string{"x", "x1"}, f.StackOf("x1"))
		require.Equal(t, "y", f.StackRoot("y2"))
		require.Equal(t, "main", f.TrunkOf("y2"))
	})
}

func TestForestCloneIsIndependent(t *testing.T) {
	f := buildForest(t, [2]string{"a", "main"})
	require.NoError(t, f.SetRemote("a", &engine.RemoteLink{PRNumber: 1}))

	c := f.Clone()
	require.NoError(t, c.Track("b", "a"))
	c.Get("a").Remote.PRNumber = 2

	require.False(t, f.IsTracked("b"))
	require.Empty(t, f.ChildrenOf("a"))
	require.Equal(t, 1, f.Get("a").Remote.PRNumber)
}

func TestForestValidate(t *testing.T) {
	t.Run("detects asymmetric links", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"})
		f.Get("main").Children = nil
		require.ErrorIs(t, f.Validate(), sterrors.ErrDanglingParent)
	})

	t.Run("detects cycles", func(t *testing.T) {
		f := buildForest(t, [2]string{"a", "main"}, [2]string{"b", "a"})
		// a <-> b, with consistent child lists
		f.Get("a").Parent = "b"
		f.Get("main").Children = nil
		f.Get("b").Children = []string{"a"}
		require.ErrorIs(t, f.Validate(), sterrors.ErrCycle)
	})
}

func TestForestRename(t *testing.T) {
	f := buildForest(t, [2]string{"a", "main"}, [2]string{"x", "main"}, [2]string{"b", "a"})
	require.NoError(t, f.SetRemote("a", &engine.RemoteLink{PRNumber: 4}))

	require.NoError(t, f.Rename("a", "a2"))
	require.False(t, f.IsTracked("a"))
	require.Equal(t, []string{"a2", "x"}, f.ChildrenOf("main"))
	require.Equal(t, "a2", f.ParentOf("b"))
	require.Nil(t, f.Get("a2").Remote)
	require.True(t, f.Archive["a"].Archived)
	require.NoError(t, f.Validate())

	require.ErrorIs(t, f.Rename("a2", "x"), sterrors.ErrDuplicate)
	require.ErrorIs(t, f.Rename("main", "trunk"), sterrors.ErrTrunkOperation)
	require.ErrorIs(t, f.Rename("nope", "other"), sterrors.ErrNotTracked)
}

func TestForestPrune(t *testing.T) {
	f := buildForest(t, [2]string{"a", "main"}, [2]string{"b", "a"}, [2]string{"c", "b"})

	pruned := f.Prune(func(name string) bool { return name != "b" })

	require.Equal(t, []string{"b"}, pruned)
	require.Equal(t, "a", f.ParentOf("c"))
	require.NoError(t, f.Validate())
}
