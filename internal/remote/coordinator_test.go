package remote_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/engine"
	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/github"
	"stacked.dev/st/internal/remote"
	"stacked.dev/st/testhelpers"
)

type recordingPusher struct {
	mu     sync.Mutex
	vcs    *testhelpers.FakeVCS
	pushed []string
	remote map[string]string
	err    error
}

func (p *recordingPusher) Push(_ context.Context, _, branch string, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushed = append(p.pushed, branch)
	p.remote[branch] = p.vcs.Tip(branch)
	return nil
}

func (p *recordingPusher) Pushed(_ context.Context, _, branch string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tip, ok := p.remote[branch]
	return ok && tip == p.vcs.Tip(branch), nil
}

type env struct {
	t      *testing.T
	ctx    context.Context
	vcs    *testhelpers.FakeVCS
	eng    *engine.Engine
	gh     *testhelpers.MockGitHubServerConfig
	pusher *recordingPusher
	coord  *remote.Coordinator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		t:      t,
		ctx:    context.Background(),
		vcs:    testhelpers.NewFakeVCS("main"),
		gh:     testhelpers.NewMockGitHubServerConfig(),
	}
	e.pusher = &recordingPusher{vcs: e.vcs, remote: make(map[string]string)}
	e.eng = engine.New(engine.NewMemoryStore(nil), engine.NewMemoryPlanStore(), e.vcs, engine.Options{})
	require.NoError(t, e.eng.Init(e.ctx, "main"))
	e.coord = remote.NewCoordinator(testhelpers.NewMockClient(t, e.gh), e.eng, remote.Options{
		Concurrency: 2,
		Pusher:      e.pusher,
	})
	return e
}

func (e *env) chain(parent string, names ...string) {
	e.t.Helper()
	for _, name := range names {
		e.vcs.Branch(name, parent, name+" commit")
		require.NoError(e.t, e.eng.TrackBranch(e.ctx, name, parent))
		parent = name
	}
}

func (e *env) link(name string) *engine.RemoteLink {
	e.t.Helper()
	forest, err := e.eng.Forest()
	require.NoError(e.t, err)
	return forest.Get(name).Remote
}

func TestSubmit(t *testing.T) {
	t.Run("creates a PR against the parent", func(t *testing.T) {
		e := newEnv(t)
		e.chain("main", "a", "b")

		result, err := e.coord.Submit(e.ctx, "b", remote.SubmitOptions{Draft: true})
		require.NoError(t, err)
		require.True(t, result.Created)
		require.Equal(t, []string{"b"}, e.pusher.pushed)

		pr := e.gh.PR(result.Number)
		require.Equal(t, "a", pr.GetBase().GetRef())
		require.Equal(t, "b commit", pr.GetTitle())
		require.True(t, pr.GetDraft())

		link := e.link("b")
		require.Equal(t, result.Number, link.PRNumber)
		require.Equal(t, "a", link.Base)
		require.NotZero(t, link.CommentID)
		require.Len(t, e.gh.Comments(result.Number), 1)
	})

	t.Run("adopts an existing PR", func(t *testing.T) {
		e := newEnv(t)
		e.chain("main", "a")
		e.gh.AddPR(testhelpers.SamplePRData{Number: 7, Head: "a", Base: "main"})

		result, err := e.coord.Submit(e.ctx, "a", remote.SubmitOptions{})
		require.NoError(t, err)
		require.False(t, result.Created)
		require.Equal(t, 7, result.Number)
		require.Equal(t, 1, e.gh.PRs())
		require.Equal(t, 7, e.link("a").PRNumber)
	})

	t.Run("trunks cannot be submitted", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.coord.Submit(e.ctx, "main", remote.SubmitOptions{})
		require.ErrorIs(t, err, sterrors.ErrTrunkOperation)
	})

	t.Run("resubmitting an unchanged branch does not push", func(t *testing.T) {
		e := newEnv(t)
		e.chain("main", "a")

		_, err := e.coord.Submit(e.ctx, "a", remote.SubmitOptions{})
		require.NoError(t, err)
		writes := e.gh.Writes()

		result, err := e.coord.Submit(e.ctx, "a", remote.SubmitOptions{})
		require.NoError(t, err)
		require.False(t, result.Changed)
		require.Equal(t, []string{"a"}, e.pusher.pushed)
		require.Equal(t, writes, e.gh.Writes())

		e.vcs.Commit("a", "more work")
		_, err = e.coord.Submit(e.ctx, "a", remote.SubmitOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "a"}, e.pusher.pushed)
	})

	t.Run("push failures are sync errors", func(t *testing.T) {
		e := newEnv(t)
		e.chain("main", "a")
		e.pusher.err = errors.New("rejected")

		_, err := e.coord.Submit(e.ctx, "a", remote.SubmitOptions{})
		require.ErrorIs(t, err, sterrors.ErrSync)
		require.Nil(t, e.link("a"))
		require.Zero(t, e.gh.PRs())
	})

	t.Run("stack comments list every PR", func(t *testing.T) {
		e := newEnv(t)
		e.chain("main", "a", "b", "c")

		results, err := e.coord.SubmitStack(e.ctx, []string{"a", "b", "c"}, remote.SubmitOptions{})
		require.NoError(t, err)
		require.Len(t, results, 3)

		forest, err := e.eng.Forest()
		require.NoError(t, err)
		for _, r := range results {
			require.Equal(t, []string{remote.RenderStackComment(forest, r.Branch, engine.ChildOrderInsertion)}, e.gh.Comments(r.Number))
		}
	})
}

func TestSync(t *testing.T) {
	submitted := func(t *testing.T) *env {
		e := newEnv(t)
		e.chain("main", "a", "b")
		_, err := e.coord.SubmitStack(e.ctx, []string{"a", "b"}, remote.SubmitOptions{})
		require.NoError(t, err)
		return e
	}

	t.Run("second sync writes nothing", func(t *testing.T) {
		e := submitted(t)
		writes := e.gh.Writes()

		results, err := e.coord.SyncAll(e.ctx, engine.ChildOrderInsertion)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			require.False(t, r.Changed, r.Branch)
		}
		require.Equal(t, writes, e.gh.Writes())
	})

	t.Run("reparenting retargets the PR", func(t *testing.T) {
		e := submitted(t)
		number := e.link("b").PRNumber
		require.NoError(t, e.eng.DeleteBranch(e.ctx, "a"))

		result, err := e.coord.Sync(e.ctx, "b")
		require.NoError(t, err)
		require.True(t, result.Changed)
		require.Equal(t, "main", e.gh.PR(number).GetBase().GetRef())
		require.Equal(t, "main", e.link("b").Base)

		comments := e.gh.Comments(number)
		require.Len(t, comments, 1)
		require.NotContains(t, comments[0], "`a`")

		again, err := e.coord.Sync(e.ctx, "b")
		require.NoError(t, err)
		require.False(t, again.Changed)
	})

	t.Run("remote failures keep local state", func(t *testing.T) {
		e := submitted(t)
		require.NoError(t, e.eng.DeleteBranch(e.ctx, "a"))
		before, err := e.eng.Forest()
		require.NoError(t, err)
		e.gh.FailRequests(http.MethodPatch, "pulls", http.StatusBadGateway)

		_, err = e.coord.Sync(e.ctx, "b")
		var syncErr *sterrors.SyncError
		require.ErrorAs(t, err, &syncErr)
		require.Equal(t, "b", syncErr.Branch)

		after, err := e.eng.Forest()
		require.NoError(t, err)
		require.Equal(t, before, after)
		require.Equal(t, "a", e.link("b").Base)
	})

	t.Run("a deleted comment is recreated", func(t *testing.T) {
		e := submitted(t)
		link := e.link("a")
		e.gh.DeleteComments(link.PRNumber)
		require.NoError(t, e.eng.SetRemote("a", &engine.RemoteLink{PRNumber: link.PRNumber, URL: link.URL, Base: link.Base, CommentID: link.CommentID}))

		_, err := e.coord.Sync(e.ctx, "a")
		require.NoError(t, err)
		require.Len(t, e.gh.Comments(link.PRNumber), 1)
		require.NotEqual(t, link.CommentID, e.link("a").CommentID)
	})

	t.Run("unlinked branches", func(t *testing.T) {
		e := newEnv(t)
		e.chain("main", "a")
		_, err := e.coord.Sync(e.ctx, "a")
		require.ErrorIs(t, err, sterrors.ErrNoRemoteLink)
	})

	t.Run("independent stacks sync together", func(t *testing.T) {
		e := newEnv(t)
		e.chain("main", "x1", "x2")
		e.chain("main", "y1")
		for _, stack := range [][]string{{"x1", "x2"}, {"y1"}} {
			_, err := e.coord.SubmitStack(e.ctx, stack, remote.SubmitOptions{})
			require.NoError(t, err)
		}
		e.gh.FailRequests(http.MethodPatch, "pulls", http.StatusInternalServerError)
		require.NoError(t, e.eng.DeleteBranch(e.ctx, "x1"))

		results, err := e.coord.SyncAll(e.ctx, engine.ChildOrderInsertion)
		require.ErrorIs(t, err, sterrors.ErrSync)
		require.Len(t, results, 2)
		for _, r := range results {
			if r.Branch == "x2" {
				require.ErrorIs(t, r.Err, sterrors.ErrSync)
			} else {
				require.NoError(t, r.Err)
			}
		}
	})
}

func TestRefreshStates(t *testing.T) {
	e := newEnv(t)
	e.chain("main", "a", "b")
	results, err := e.coord.SubmitStack(e.ctx, []string{"a", "b"}, remote.SubmitOptions{})
	require.NoError(t, err)
	e.gh.SetPRState(results[0].Number, "closed", true)

	merged, err := e.coord.RefreshStates(e.ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, merged)

	forest, err := e.eng.Forest()
	require.NoError(t, err)
	require.Nil(t, forest.Get("a").Remote)
	require.Equal(t, github.StateMerged, forest.Archive["a"].State)
	require.NotNil(t, forest.Get("b").Remote)
}

func TestRenderStackComment(t *testing.T) {
	forest := engine.NewForest("main")
	require.NoError(t, forest.Track("a", "main"))
	require.NoError(t, forest.Track("b", "a"))
	require.NoError(t, forest.SetRemote("a", &engine.RemoteLink{PRNumber: 1, URL: "https://example.com/1"}))
	require.NoError(t, forest.SetRemote("b", &engine.RemoteLink{PRNumber: 2, URL: "https://example.com/2"}))

	want := remote.StackCommentMarker + "\nThis pull request is part of a stack:\n\n" +
		"- `main`\n" +
		"  - **[#1](https://example.com/1) `a`** 👈\n" +
		"    - [#2](https://example.com/2) `b`\n"
	require.Equal(t, want, remote.RenderStackComment(forest, "a", engine.ChildOrderInsertion))
	require.Equal(t,
		remote.RenderStackComment(forest, "a", engine.ChildOrderInsertion),
		remote.RenderStackComment(forest.Clone(), "a", engine.ChildOrderInsertion))

	t.Run("lists every branch above a fork", func(t *testing.T) {
		forest := forest.Clone()
		require.NoError(t, forest.Track("d", "b"))
		require.NoError(t, forest.Track("c", "b"))
		require.NoError(t, forest.Track("side", "main"))

		want := remote.StackCommentMarker + "\nThis pull request is part of a stack:\n\n" +
			"- `main`\n" +
			"  - [#1](https://example.com/1) `a`\n" +
			"    - **[#2](https://example.com/2) `b`** 👈\n" +
			"      - `c`\n" +
			"      - `d`\n"
		require.Equal(t, want, remote.RenderStackComment(forest, "b", engine.ChildOrderAlphabetical))
	})
}
