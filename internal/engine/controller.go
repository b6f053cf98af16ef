package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/git"
)

// State is the controller's position in the restack lifecycle
type State int

const (
	StateIdle State = iota
	StatePlanning
	StateExecuting
	StateAwaitingResolution
	StateAborting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlanning:
		return "planning"
	case StateExecuting:
		return "executing"
	case StateAwaitingResolution:
		return "awaiting-resolution"
	case StateAborting:
		return "aborting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RestackReport summarizes a finished restack
type RestackReport struct {
	PlanID string
	// Restacked lists completed steps in execution order
	Restacked []Step
}

// Controller drives restacks through planning, execution, conflict
// resolution and abort. Only one plan may be outstanding at a time; the plan
// file makes AwaitingResolution survive process exit.
type Controller struct {
	mu        sync.Mutex
	state     State
	store     *Store
	plans     *PlanStore
	vcs       VCS
	restacker *Restacker
	order     ChildOrder
	log       *slog.Logger
}

// NewController creates a Controller
func NewController(store *Store, plans *PlanStore, vcs VCS, order ChildOrder, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		store:     store,
		plans:     plans,
		vcs:       vcs,
		restacker: NewRestacker(store, plans, vcs, log),
		order:     order,
		log:       log,
	}
}

// State reports the current state. Outside of a running operation it is
// derived from the persisted plan.
func (c *Controller) State() State {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state != StateIdle {
		return state
	}
	plan, err := c.plans.Load()
	if err == nil && plan != nil {
		return StateAwaitingResolution
	}
	return StateIdle
}

// Status returns the outstanding plan, or nil when idle
func (c *Controller) Status() (*Plan, error) {
	return c.plans.Load()
}

// Restack brings root and its subtree up to date with their parents. Rounds
// of planning and execution repeat until a round plans no steps, so branches
// invalidated by an earlier round are restacked too.
func (c *Controller) Restack(ctx context.Context, root string) (*RestackReport, error) {
	return c.restack(ctx, root, nil)
}

// RestackAfter applies change to the forest and then restacks root. When the
// restack fails, or is aborted after a conflict, the forest returns to its
// state from before change.
func (c *Controller) RestackAfter(ctx context.Context, root string, change func(*Forest) error) (*RestackReport, error) {
	return c.restack(ctx, root, change)
}

func (c *Controller) restack(ctx context.Context, root string, change func(*Forest) error) (*RestackReport, error) {
	if err := c.begin(StatePlanning); err != nil {
		return nil, err
	}
	defer c.setState(StateIdle)

	var before *Forest
	if change != nil {
		var err error
		if before, err = c.store.Snapshot(); err != nil {
			return nil, err
		}
		if err := c.store.Update(change); err != nil {
			return nil, err
		}
	}

	report, err := c.planAndRun(ctx, root, before)
	if err != nil && before != nil && !errors.Is(err, sterrors.ErrRebaseConflict) {
		if rbErr := c.store.Replace(before); rbErr != nil {
			return nil, errors.Join(err, rbErr)
		}
	}
	return report, err
}

// planAndRun plans the restack of root and executes it. before, when set, is
// the forest a failed or aborted plan restores instead of the planning one.
func (c *Controller) planAndRun(ctx context.Context, root string, before *Forest) (*RestackReport, error) {
	if err := c.restacker.RefreshTips(ctx, root, c.order); err != nil {
		return nil, err
	}
	forest, err := c.store.Snapshot()
	if err != nil {
		return nil, err
	}
	steps, err := ComputePlan(forest, root, c.order)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		c.log.Debug("nothing to restack", "root", root)
		return &RestackReport{}, nil
	}

	snapshot := forest
	if before != nil {
		snapshot = before
	}
	plan := NewPlan(root, steps, snapshot)
	if current, err := c.vcs.CurrentBranch(ctx); err == nil {
		plan.OrigBranch = current
	}
	c.log.Debug("planned restack", "plan", plan.ID, "root", root, "steps", len(steps))

	return c.run(ctx, plan)
}

// RefreshTips records the VCS tips of root's subtree and its ancestors
func (c *Controller) RefreshTips(ctx context.Context, root string) error {
	if err := c.begin(StatePlanning); err != nil {
		return err
	}
	defer c.setState(StateIdle)
	return c.restacker.RefreshTips(ctx, root, c.order)
}

// Continue resumes a plan stopped on a conflict once the user has resolved it
func (c *Controller) Continue(ctx context.Context) (*RestackReport, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, fmt.Errorf("cannot continue while %s", c.state)
	}
	c.mu.Unlock()

	plan, err := c.plans.Load()
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.Done() {
		return nil, sterrors.ErrRebaseNotInProgress
	}

	resolved, err := c.vcs.IsConflictResolved(ctx)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, sterrors.ErrConflictUnresolved
	}

	c.setState(StateExecuting)
	defer c.setState(StateIdle)

	step := plan.Current()
	result, err := c.vcs.ContinueRebase(ctx, step.Branch)
	if err != nil {
		return nil, err
	}
	if result == git.RebaseConflict {
		return nil, sterrors.NewConflictError(step.Branch, step.Parent, plan.ID, plan.Cursor, len(plan.Steps))
	}
	if err := c.restacker.CompleteStep(ctx, plan); err != nil {
		return nil, err
	}
	return c.run(ctx, plan)
}

// Abort cancels the outstanding plan: the VCS rebase is aborted, rewritten
// branches go back to their original tips and the forest snapshot taken
// before the plan is restored.
func (c *Controller) Abort(ctx context.Context) error {
	plan, err := c.plans.Load()
	if err != nil {
		return err
	}
	if plan == nil {
		return sterrors.ErrRebaseNotInProgress
	}

	c.setState(StateAborting)
	defer c.setState(StateIdle)
	return c.rollback(ctx, plan)
}

func (c *Controller) run(ctx context.Context, plan *Plan) (*RestackReport, error) {
	c.setState(StateExecuting)

	// Each round can only invalidate branches deeper than the ones it
	// restacked, so the number of rounds is bounded by the forest size.
	forest, err := c.store.Snapshot()
	if err != nil {
		return nil, err
	}
	maxRounds := len(forest.Branches) + 1

	for round := 0; ; round++ {
		err := c.restacker.ExecutePlan(ctx, plan)
		if errors.Is(err, sterrors.ErrRebaseConflict) {
			c.log.Debug("restack stopped on conflict", "plan", plan.ID, "cursor", plan.Cursor)
			return nil, err
		}
		if err != nil {
			c.log.Debug("restack failed, rolling back", "plan", plan.ID, "error", err)
			if rbErr := c.rollback(ctx, plan); rbErr != nil {
				return nil, errors.Join(err, rbErr)
			}
			return nil, err
		}

		forest, err := c.store.Snapshot()
		if err != nil {
			return nil, err
		}
		next, err := ComputePlan(forest, plan.Root, c.order)
		if err != nil {
			return nil, err
		}
		if len(next) == 0 || round >= maxRounds {
			break
		}
		plan.Steps = append(plan.Steps, next...)
	}

	c.restoreCheckout(ctx, plan)
	if err := c.plans.Clear(); err != nil {
		return nil, err
	}
	return &RestackReport{PlanID: plan.ID, Restacked: plan.Steps}, nil
}

func (c *Controller) rollback(ctx context.Context, plan *Plan) error {
	if err := c.vcs.AbortRebase(ctx); err != nil {
		return err
	}
	last := min(plan.Cursor, len(plan.Steps)-1)
	for _, step := range plan.Steps[:last+1] {
		orig, ok := plan.OrigTips[step.Branch]
		if !ok {
			continue
		}
		tip, err := c.vcs.CurrentTip(ctx, step.Branch)
		if err == nil && tip == orig {
			continue
		}
		if err := c.vcs.ResetBranch(ctx, step.Branch, orig); err != nil {
			return fmt.Errorf("failed to restore %s: %w", step.Branch, err)
		}
	}
	if plan.Snapshot != nil {
		if err := c.store.Replace(plan.Snapshot); err != nil {
			return err
		}
	}
	c.restoreCheckout(ctx, plan)
	return c.plans.Clear()
}

func (c *Controller) restoreCheckout(ctx context.Context, plan *Plan) {
	if plan.OrigBranch == "" {
		return
	}
	if current, err := c.vcs.CurrentBranch(ctx); err == nil && current == plan.OrigBranch {
		return
	}
	if err := c.vcs.Checkout(ctx, plan.OrigBranch); err != nil {
		c.log.Debug("could not restore checkout", "branch", plan.OrigBranch, "error", err)
	}
}

func (c *Controller) begin(state State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return sterrors.NewPlanInProgressError("", "")
	}
	plan, err := c.plans.Load()
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
	c.state = state
	return nil
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
