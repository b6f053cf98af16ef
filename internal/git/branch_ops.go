package git

import (
	"context"
	"fmt"
)

// CreateBranch creates name at from without checking it out
func (r *Repo) CreateBranch(ctx context.Context, name, from string) error {
	_, err := r.runner.Run(ctx, "branch", name, from)
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	return nil
}

// CreateAndCheckoutBranch creates and checks out a new branch at HEAD
func (r *Repo) CreateAndCheckoutBranch(ctx context.Context, name string) error {
	_, err := r.runner.Run(ctx, "checkout", "-b", name)
	if err != nil {
		return fmt.Errorf("failed to create and checkout branch %s: %w", name, err)
	}
	return nil
}

// Checkout checks out an existing branch
func (r *Repo) Checkout(ctx context.Context, name string) error {
	_, err := r.runner.Run(ctx, "checkout", name)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return nil
}

// DeleteBranch force-deletes a branch
func (r *Repo) DeleteBranch(ctx context.Context, name string) error {
	_, err := r.runner.Run(ctx, "branch", "-D", name)
	if err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// ResetBranch points name at commit. The checked out branch is hard reset so
// the worktree follows; any other branch only has its ref moved.
func (r *Repo) ResetBranch(ctx context.Context, name, commit string) error {
	current, err := r.CurrentBranch(ctx)
	if err == nil && current == name {
		if _, err := r.runner.Run(ctx, "reset", "--hard", commit); err != nil {
			return fmt.Errorf("failed to hard reset %s to %s: %w", name, commit, err)
		}
		return nil
	}
	if _, err := r.runner.Run(ctx, "update-ref", "refs/heads/"+name, commit); err != nil {
		return fmt.Errorf("failed to update branch ref %s: %w", name, err)
	}
	return nil
}
