package git

import (
	"context"
	"fmt"
)

// CommitOptions contains options for creating a commit
type CommitOptions struct {
	Message string
	// All stages tracked and untracked changes first
	All bool
	// AllowEmpty records the commit even without staged changes
	AllowEmpty bool
}

// Commit records a commit on the checked out branch
func (r *Repo) Commit(ctx context.Context, opts CommitOptions) error {
	if opts.All {
		if err := r.StageAll(ctx); err != nil {
			return err
		}
	}

	args := []string{"commit", "-m", opts.Message}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	if _, err := r.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// StageAll stages every change in the worktree
func (r *Repo) StageAll(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD
func (r *Repo) HasStagedChanges(ctx context.Context) (bool, error) {
	files, err := r.runner.RunLines(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to check staged changes: %w", err)
	}
	return len(files) > 0, nil
}
