package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/git"
)

// Options configures an Engine
type Options struct {
	ChildOrder ChildOrder
	Logger     *slog.Logger
}

// Engine combines the branch graph store, the restack controller and the VCS
// behind the operations the commands need.
type Engine struct {
	store *Store
	plans *PlanStore
	vcs   VCS
	ctrl  *Controller
	order ChildOrder
	log   *slog.Logger
}

// Open loads the engine state kept in stateDir
func Open(stateDir string, vcs VCS, opts Options) (*Engine, error) {
	store, err := OpenStore(stateDir)
	if err != nil {
		return nil, err
	}
	return New(store, NewPlanStore(stateDir), vcs, opts), nil
}

// New creates an engine over existing stores
func New(store *Store, plans *PlanStore, vcs VCS, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	order := opts.ChildOrder
	if order == "" {
		order = ChildOrderInsertion
	}
	return &Engine{
		store: store,
		plans: plans,
		vcs:   vcs,
		ctrl:  NewController(store, plans, vcs, order, log),
		order: order,
		log:   log,
	}
}

// Initialized reports whether `st init` has run
func (e *Engine) Initialized() bool {
	return e.store.Initialized()
}

// Forest returns a snapshot of the tracked branches
func (e *Engine) Forest() (*Forest, error) {
	return e.store.Snapshot()
}

// ChildOrder returns the sibling order used for traversal
func (e *Engine) ChildOrder() ChildOrder {
	return e.order
}

// Init sets up tracking with trunk as the primary trunk. An existing forest
// is kept; the trunk is added to it if missing.
func (e *Engine) Init(ctx context.Context, trunk string) error {
	if err := e.requireBranch(ctx, trunk); err != nil {
		return err
	}
	tip, err := e.vcs.CurrentTip(ctx, trunk)
	if err != nil {
		return err
	}
	if !e.store.Initialized() {
		if err := e.store.Init(trunk); err != nil {
			return err
		}
	}
	return e.store.Update(func(f *Forest) error {
		if !f.IsTrunk(trunk) {
			if err := f.AddTrunk(trunk); err != nil {
				return err
			}
		}
		return f.SetTip(trunk, tip)
	})
}

// AddTrunk registers another long-lived base branch
func (e *Engine) AddTrunk(ctx context.Context, name string) error {
	if err := e.requireBranch(ctx, name); err != nil {
		return err
	}
	tip, err := e.vcs.CurrentTip(ctx, name)
	if err != nil {
		return err
	}
	return e.store.Update(func(f *Forest) error {
		if err := f.AddTrunk(name); err != nil {
			return err
		}
		return f.SetTip(name, tip)
	})
}

// TrackBranch starts tracking an existing git branch under parent. A branch
// already sitting on its parent's tip starts out clean.
func (e *Engine) TrackBranch(ctx context.Context, name, parent string) error {
	if err := e.ensureIdle(); err != nil {
		return err
	}
	if err := e.requireBranch(ctx, name); err != nil {
		return err
	}
	tip, err := e.vcs.CurrentTip(ctx, name)
	if err != nil {
		return err
	}
	parentTip := ""
	if exists, _ := e.vcs.BranchExists(ctx, parent); exists {
		parentTip, _ = e.vcs.CurrentTip(ctx, parent)
	}

	onParent := false
	if parentTip != "" {
		onParent, err = e.vcs.IsAncestor(ctx, parentTip, tip)
		if err != nil {
			return err
		}
	}

	return e.store.Update(func(f *Forest) error {
		if err := f.Track(name, parent); err != nil {
			return err
		}
		if err := f.SetTip(name, tip); err != nil {
			return err
		}
		if parentTip == "" {
			return nil
		}
		if err := f.SetTip(parent, parentTip); err != nil {
			return err
		}
		if onParent {
			return f.MarkClean(name, parentTip)
		}
		return nil
	})
}

// UntrackBranch stops tracking a leaf branch. The git branch is left alone.
func (e *Engine) UntrackBranch(name string) error {
	if err := e.ensureIdle(); err != nil {
		return err
	}
	return e.store.Update(func(f *Forest) error {
		return f.Untrack(name)
	})
}

// CreateBranch creates name at parent's tip and tracks it as clean
func (e *Engine) CreateBranch(ctx context.Context, name, parent string) error {
	if err := e.ensureIdle(); err != nil {
		return err
	}
	forest, err := e.store.Snapshot()
	if err != nil {
		return err
	}
	if forest.IsTracked(name) {
		return sterrors.NewDuplicateError(name)
	}
	if !forest.IsTracked(parent) {
		return sterrors.NewDanglingParentError(name, parent)
	}
	if exists, err := e.vcs.BranchExists(ctx, name); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("branch %s already exists, use `st track` to track it", name)
	}

	if err := e.vcs.CreateBranch(ctx, name, parent); err != nil {
		return err
	}
	tip, err := e.vcs.CurrentTip(ctx, name)
	if err != nil {
		return err
	}

	err = e.store.Update(func(f *Forest) error {
		if err := f.Track(name, parent); err != nil {
			return err
		}
		if err := f.SetTip(parent, tip); err != nil {
			return err
		}
		if err := f.SetTip(name, tip); err != nil {
			return err
		}
		return f.MarkClean(name, tip)
	})
	if err != nil {
		_ = e.vcs.DeleteBranch(ctx, name)
		return err
	}
	return nil
}

// DeleteBranch deletes the git branch and removes its node. Children move to
// the deleted branch's parent and become stale; its remote link is archived.
func (e *Engine) DeleteBranch(ctx context.Context, name string) error {
	if err := e.ensureIdle(); err != nil {
		return err
	}
	forest, err := e.store.Snapshot()
	if err != nil {
		return err
	}
	// Reject structurally invalid deletes before touching git
	if err := forest.Clone().Remove(name); err != nil {
		return err
	}

	if current, err := e.vcs.CurrentBranch(ctx); err == nil && current == name {
		if err := e.vcs.Checkout(ctx, forest.ParentOf(name)); err != nil {
			return err
		}
	}
	if exists, _ := e.vcs.BranchExists(ctx, name); exists {
		if err := e.vcs.DeleteBranch(ctx, name); err != nil {
			return err
		}
	}
	return e.store.Update(func(f *Forest) error {
		return f.Remove(name)
	})
}

// RenameBranch renames the git branch and its node. The checkout follows
// the branch if it was current.
func (e *Engine) RenameBranch(ctx context.Context, name, newName string) error {
	if err := e.ensureIdle(); err != nil {
		return err
	}
	forest, err := e.store.Snapshot()
	if err != nil {
		return err
	}
	if err := forest.Clone().Rename(name, newName); err != nil {
		return err
	}
	if exists, err := e.vcs.BranchExists(ctx, newName); err != nil {
		return err
	} else if exists {
		return sterrors.NewDuplicateError(newName)
	}

	if err := e.vcs.CreateBranch(ctx, newName, name); err != nil {
		return err
	}
	if current, err := e.vcs.CurrentBranch(ctx); err == nil && current == name {
		if err := e.vcs.Checkout(ctx, newName); err != nil {
			return err
		}
	}
	if err := e.vcs.DeleteBranch(ctx, name); err != nil {
		return err
	}
	e.log.Debug("renamed branch", "branch", name, "to", newName)
	return e.store.Update(func(f *Forest) error {
		return f.Rename(name, newName)
	})
}

// MoveBranch reparents name onto newParent and restacks it with its subtree
func (e *Engine) MoveBranch(ctx context.Context, name, newParent string) (*RestackReport, error) {
	if err := e.ensureIdle(); err != nil {
		return nil, err
	}
	return e.ctrl.RestackAfter(ctx, name, func(f *Forest) error {
		return f.Reparent(name, newParent)
	})
}

// Prune drops branches whose git branch no longer exists
func (e *Engine) Prune(ctx context.Context) ([]string, error) {
	if err := e.ensureIdle(); err != nil {
		return nil, err
	}
	forest, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	exists := make(map[string]bool, len(forest.Branches))
	for name := range forest.Branches {
		ok, err := e.vcs.BranchExists(ctx, name)
		if err != nil {
			return nil, err
		}
		exists[name] = ok
	}

	var pruned []string
	err = e.store.Update(func(f *Forest) error {
		pruned = f.Prune(func(name string) bool { return exists[name] })
		return nil
	})
	return pruned, err
}

// Restack restacks root and everything above it
func (e *Engine) Restack(ctx context.Context, root string) (*RestackReport, error) {
	return e.ctrl.Restack(ctx, root)
}

// RefreshTips records the current git tips of root's stack so staleness
// checks see commits made outside st
func (e *Engine) RefreshTips(ctx context.Context, root string) error {
	return e.ctrl.RefreshTips(ctx, root)
}

// Reload re-reads the forest from disk. Mutating commands call it once they
// hold the repository lock so they never write over another process's change.
func (e *Engine) Reload() error {
	return e.store.Reload()
}

// Continue resumes a restack stopped on a conflict
func (e *Engine) Continue(ctx context.Context) (*RestackReport, error) {
	return e.ctrl.Continue(ctx)
}

// Abort cancels the outstanding restack and restores the previous state
func (e *Engine) Abort(ctx context.Context) error {
	return e.ctrl.Abort(ctx)
}

// State reports the restack state
func (e *Engine) State() State {
	return e.ctrl.State()
}

// Status returns the outstanding plan, if any
func (e *Engine) Status() (*Plan, error) {
	return e.ctrl.Status()
}

// SetRemote records the pull request link of name
func (e *Engine) SetRemote(name string, link *RemoteLink) error {
	return e.store.Update(func(f *Forest) error {
		return f.SetRemote(name, link)
	})
}

// ArchiveRemote moves the link of a merged or closed PR into the archive
func (e *Engine) ArchiveRemote(name, state string) error {
	return e.store.Update(func(f *Forest) error {
		return f.ArchiveRemote(name, state)
	})
}

// Commits returns the commits name adds on top of its parent, oldest first
func (e *Engine) Commits(ctx context.Context, name string) ([]git.Commit, error) {
	forest, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	b := forest.Get(name)
	if b == nil {
		return nil, sterrors.NewNotTrackedError(name)
	}
	if b.Parent == "" {
		return nil, sterrors.ErrTrunkOperation
	}
	return e.vcs.CommitsBetween(ctx, b.Parent, name)
}

// CurrentBranch returns the checked out branch
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	return e.vcs.CurrentBranch(ctx)
}

// Checkout switches to name
func (e *Engine) Checkout(ctx context.Context, name string) error {
	return e.vcs.Checkout(ctx, name)
}

func (e *Engine) ensureIdle() error {
	plan, err := e.plans.Load()
	if err != nil {
		return err
	}
	if plan != nil {
		branch := ""
		if step := plan.Current(); step != nil {
			branch = step.Branch
		}
		return sterrors.NewPlanInProgressError(plan.ID, branch)
	}
	return nil
}

func (e *Engine) requireBranch(ctx context.Context, name string) error {
	exists, err := e.vcs.BranchExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return sterrors.NewBranchNotFoundError(name)
	}
	return nil
}

// IsNotInitialized reports whether err means `st init` has not run
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}
