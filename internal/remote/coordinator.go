package remote

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"stacked.dev/st/internal/engine"
	sterrors "stacked.dev/st/internal/errors"
	"stacked.dev/st/internal/git"
	"stacked.dev/st/internal/github"
)

// Options configures a Coordinator
type Options struct {
	// Remote is the git remote branches are pushed to
	Remote string
	// Concurrency bounds how many stacks sync at once
	Concurrency int
	// Pusher publishes branches before PRs are opened; nil skips pushing
	Pusher Pusher
	// ChildOrder orders siblings in stack comments
	ChildOrder engine.ChildOrder
	Logger     *slog.Logger
}

// SubmitOptions controls PR creation
type SubmitOptions struct {
	Draft bool
}

// Result reports what happened to one branch
type Result struct {
	Branch  string
	Number  int
	URL     string
	Created bool
	// Changed is true when any remote write happened
	Changed bool
	// Err is the non-fatal SyncError for this branch, if any
	Err error
}

// Coordinator reconciles remote links with the local branch graph. Remote
// failures come back as SyncError and never roll back local state.
type Coordinator struct {
	host        Host
	graph       Graph
	pusher      Pusher
	remote      string
	concurrency int
	order       engine.ChildOrder
	log         *slog.Logger
}

// NewCoordinator creates a Coordinator
func NewCoordinator(host Host, graph Graph, opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	remote := opts.Remote
	if remote == "" {
		remote = git.DefaultRemote
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	order := opts.ChildOrder
	if order == "" {
		order = engine.ChildOrderInsertion
	}
	return &Coordinator{
		host:        host,
		graph:       graph,
		pusher:      opts.Pusher,
		remote:      remote,
		concurrency: concurrency,
		order:       order,
		log:         log,
	}
}

// Sync brings the PR of branch in line with the local graph: its base is the
// branch's parent and its stack comment matches the current stack. Nothing
// is written when both already match the last synced values.
func (c *Coordinator) Sync(ctx context.Context, branch string) (*Result, error) {
	forest, err := c.graph.Forest()
	if err != nil {
		return nil, err
	}
	b := forest.Get(branch)
	if b == nil {
		return nil, sterrors.NewNotTrackedError(branch)
	}
	if b.Remote == nil {
		return nil, sterrors.ErrNoRemoteLink
	}

	link := *b.Remote
	result := &Result{Branch: branch, Number: link.PRNumber, URL: link.URL}

	if link.Base != b.Parent {
		c.log.Debug("updating PR base", "branch", branch, "pr", link.PRNumber, "from", link.Base, "to", b.Parent)
		if err := c.host.UpdatePR(ctx, link.PRNumber, b.Parent, ""); err != nil {
			return result, sterrors.NewSyncError(branch, "update PR base", err)
		}
		link.Base = b.Parent
		if err := c.graph.SetRemote(branch, &link); err != nil {
			return result, err
		}
		result.Changed = true
	}

	body := RenderStackComment(forest, branch, c.order)
	if body != link.CommentBody {
		c.log.Debug("updating stack comment", "branch", branch, "pr", link.PRNumber)
		id, err := c.host.UpsertComment(ctx, link.PRNumber, link.CommentID, StackCommentMarker, body)
		if err != nil {
			return result, sterrors.NewSyncError(branch, "update stack comment", err)
		}
		link.CommentID = id
		link.CommentBody = body
		if err := c.graph.SetRemote(branch, &link); err != nil {
			return result, err
		}
		result.Changed = true
	}
	return result, nil
}

// Submit makes sure branch has a PR, creating one when neither a link nor an
// open PR for the branch exists, and then syncs it.
func (c *Coordinator) Submit(ctx context.Context, branch string, opts SubmitOptions) (*Result, error) {
	result, err := c.ensureLink(ctx, branch, opts)
	if err != nil {
		return result, err
	}
	synced, err := c.Sync(ctx, branch)
	if synced != nil {
		synced.Created = result.Created
		synced.Changed = synced.Changed || result.Changed
	}
	return synced, err
}

// SubmitStack submits the given branches bottom-up, then syncs them all so
// every stack comment sees every PR. It stops at the first branch that cannot
// be submitted since the branches above it would have no base on the remote.
func (c *Coordinator) SubmitStack(ctx context.Context, branches []string, opts SubmitOptions) ([]*Result, error) {
	results := make([]*Result, 0, len(branches))
	for _, name := range branches {
		result, err := c.ensureLink(ctx, name, opts)
		if err != nil {
			if result != nil {
				result.Err = err
				results = append(results, result)
			}
			return results, err
		}
		results = append(results, result)
	}

	var errs []error
	for _, result := range results {
		synced, err := c.Sync(ctx, result.Branch)
		if err != nil && !errors.Is(err, sterrors.ErrSync) {
			return results, err
		}
		if synced != nil {
			result.Number, result.URL = synced.Number, synced.URL
			result.Changed = result.Changed || synced.Changed
		}
		if err != nil {
			result.Err = err
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

// SyncStack syncs every linked branch of the stack containing branch, bottom-up
func (c *Coordinator) SyncStack(ctx context.Context, branch string) ([]*Result, error) {
	forest, err := c.graph.Forest()
	if err != nil {
		return nil, err
	}
	return c.syncSequence(ctx, c.linked(forest, forest.StackOf(branch)))
}

// SyncAll syncs every linked branch. Stacks hanging off a trunk are
// independent and sync concurrently; branches within one stack sync in
// pre-order so a parent is always handled before its children.
func (c *Coordinator) SyncAll(ctx context.Context, order engine.ChildOrder) ([]*Result, error) {
	forest, err := c.graph.Forest()
	if err != nil {
		return nil, err
	}

	var groups [][]string
	for _, trunk := range forest.Trunks {
		for _, root := range forest.OrderedChildren(trunk, order) {
			names := append([]string{root}, forest.Descendants(root, order)...)
			if linked := c.linked(forest, names); len(linked) > 0 {
				groups = append(groups, linked)
			}
		}
	}

	var (
		mu      sync.Mutex
		results []*Result
		errs    []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, group := range groups {
		g.Go(func() error {
			res, err := c.syncSequence(gctx, group)
			mu.Lock()
			defer mu.Unlock()
			results = append(results, res...)
			if err != nil && !errors.Is(err, sterrors.ErrSync) {
				return err
			}
			if err != nil {
				errs = append(errs, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, errors.Join(errs...)
}

// RefreshStates reads the PR state of every linked branch among branches.
// Links of merged or closed PRs are archived. It returns the branches whose
// PR was merged.
func (c *Coordinator) RefreshStates(ctx context.Context, branches []string) ([]string, error) {
	forest, err := c.graph.Forest()
	if err != nil {
		return nil, err
	}

	var merged []string
	var errs []error
	for _, name := range c.linked(forest, branches) {
		link := *forest.Get(name).Remote
		state, err := c.host.GetPRState(ctx, link.PRNumber)
		if err != nil {
			errs = append(errs, sterrors.NewSyncError(name, "read PR state", err))
			continue
		}
		switch state {
		case github.StateMerged, github.StateClosed:
			c.log.Debug("archiving PR link", "branch", name, "pr", link.PRNumber, "state", state)
			if err := c.graph.ArchiveRemote(name, state); err != nil {
				return merged, err
			}
			if state == github.StateMerged {
				merged = append(merged, name)
			}
		default:
			if link.State != state {
				link.State = state
				if err := c.graph.SetRemote(name, &link); err != nil {
					return merged, err
				}
			}
		}
	}
	return merged, errors.Join(errs...)
}

func (c *Coordinator) ensureLink(ctx context.Context, branch string, opts SubmitOptions) (*Result, error) {
	forest, err := c.graph.Forest()
	if err != nil {
		return nil, err
	}
	b := forest.Get(branch)
	if b == nil {
		return nil, sterrors.NewNotTrackedError(branch)
	}
	if b.Parent == "" {
		return nil, sterrors.ErrTrunkOperation
	}
	result := &Result{Branch: branch}

	if err := c.push(ctx, branch); err != nil {
		return result, err
	}

	if b.Remote != nil {
		result.Number, result.URL = b.Remote.PRNumber, b.Remote.URL
		return result, nil
	}

	pr, err := c.host.GetPRForBranch(ctx, branch)
	if err != nil {
		return result, sterrors.NewSyncError(branch, "look up PR", err)
	}
	if pr == nil {
		title, body, err := c.content(ctx, branch)
		if err != nil {
			return result, err
		}
		c.log.Debug("creating PR", "branch", branch, "base", b.Parent)
		pr, err = c.host.CreatePR(ctx, branch, b.Parent, title, body, opts.Draft)
		if err != nil {
			return result, sterrors.NewSyncError(branch, "create PR", err)
		}
		result.Created = true
		result.Changed = true
	}

	link := &engine.RemoteLink{PRNumber: pr.Number, URL: pr.URL, Base: pr.Base, State: pr.State}
	if err := c.graph.SetRemote(branch, link); err != nil {
		return result, err
	}
	result.Number, result.URL = pr.Number, pr.URL
	return result, nil
}

// push publishes branch unless the remote already has its tip
func (c *Coordinator) push(ctx context.Context, branch string) error {
	if c.pusher == nil {
		return nil
	}
	pushed, err := c.pusher.Pushed(ctx, c.remote, branch)
	if err != nil {
		c.log.Debug("could not compare with remote, pushing", "branch", branch, "error", err)
	}
	if pushed {
		c.log.Debug("remote is up to date", "branch", branch)
		return nil
	}
	if err := c.pusher.Push(ctx, c.remote, branch, true); err != nil {
		return sterrors.NewSyncError(branch, "push", err)
	}
	return nil
}

func (c *Coordinator) content(ctx context.Context, branch string) (string, string, error) {
	commits, err := c.graph.Commits(ctx, branch)
	if err != nil {
		return "", "", err
	}
	subjects := make([]string, len(commits))
	bodies := make([]string, len(commits))
	for i, commit := range commits {
		subjects[i], bodies[i] = commit.Subject, commit.Body
	}
	title, body := prContent(branch, subjects, bodies)
	return title, body, nil
}

func (c *Coordinator) syncSequence(ctx context.Context, names []string) ([]*Result, error) {
	results := make([]*Result, 0, len(names))
	var errs []error
	for _, name := range names {
		result, err := c.Sync(ctx, name)
		if err != nil && !errors.Is(err, sterrors.ErrSync) {
			return results, err
		}
		if result != nil {
			result.Err = err
			results = append(results, result)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (c *Coordinator) linked(forest *engine.Forest, names []string) []string {
	var out []string
	for _, name := range names {
		if b := forest.Get(name); b != nil && b.Remote != nil {
			out = append(out, name)
		}
	}
	return out
}
