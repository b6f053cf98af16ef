package engine

import (
	"context"

	"stacked.dev/st/internal/git"
)

// VCS is everything the engine needs from git. git.Repo implements it for
// real repositories and testhelpers.FakeVCS for tests.
type VCS interface {
	CurrentTip(ctx context.Context, ref string) (string, error)
	// Rebase replays the commits of branch after upstream onto onto
	Rebase(ctx context.Context, branch, onto, upstream string) (git.RebaseResult, error)
	ContinueRebase(ctx context.Context, branch string) (git.RebaseResult, error)
	AbortRebase(ctx context.Context) error
	IsConflictResolved(ctx context.Context) (bool, error)

	CreateBranch(ctx context.Context, name, from string) error
	DeleteBranch(ctx context.Context, name string) error
	BranchExists(ctx context.Context, name string) (bool, error)
	ResetBranch(ctx context.Context, name, commit string) error
	CurrentBranch(ctx context.Context) (string, error)
	Checkout(ctx context.Context, name string) error

	MergeBase(ctx context.Context, a, b string) (string, error)
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	CommitsBetween(ctx context.Context, base, head string) ([]git.Commit, error)
}

var _ VCS = (*git.Repo)(nil)
