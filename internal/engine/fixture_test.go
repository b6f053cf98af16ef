package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/engine"
	"stacked.dev/st/testhelpers"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	vcs   *testhelpers.FakeVCS
	store *engine.Store
	plans *engine.PlanStore
	eng   *engine.Engine
}

func newFixture(t *testing.T, opts ...func(*engine.Options)) *fixture {
	t.Helper()
	var o engine.Options
	for _, opt := range opts {
		opt(&o)
	}

	fx := &fixture{
		t:     t,
		ctx:   context.Background(),
		vcs:   testhelpers.NewFakeVCS("main"),
		store: engine.NewMemoryStore(nil),
		plans: engine.NewMemoryPlanStore(),
	}
	fx.eng = engine.New(fx.store, fx.plans, fx.vcs, o)
	require.NoError(t, fx.eng.Init(fx.ctx, "main"))
	return fx
}

// chain creates and tracks each branch on top of the previous one, starting at parent
func (fx *fixture) chain(parent string, names ...string) {
	fx.t.Helper()
	for _, name := range names {
		fx.vcs.Branch(name, parent, name+" commit")
		require.NoError(fx.t, fx.eng.TrackBranch(fx.ctx, name, parent))
		parent = name
	}
}

func (fx *fixture) forest() *engine.Forest {
	fx.t.Helper()
	f, err := fx.eng.Forest()
	require.NoError(fx.t, err)
	return f
}

// refresh pulls the fake's tips into the store, like the controller does before planning
func (fx *fixture) refresh(root string) *engine.Forest {
	fx.t.Helper()
	r := engine.NewRestacker(fx.store, fx.plans, fx.vcs, nil)
	require.NoError(fx.t, r.RefreshTips(fx.ctx, root, engine.ChildOrderInsertion))
	return fx.forest()
}

func (fx *fixture) restacker() *engine.Restacker {
	return engine.NewRestacker(fx.store, fx.plans, fx.vcs, nil)
}

func stepBranches(steps []engine.Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Branch)
	}
	return out
}
