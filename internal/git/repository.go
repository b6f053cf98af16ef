package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	sterrors "stacked.dev/st/internal/errors"
)

// Repo is the VCS collaborator used by the stack engine. Reads go through
// go-git; anything that mutates the worktree or refs shells out to git.
type Repo struct {
	repo   *git.Repository
	runner *CommandRunner
	root   string
	gitDir string

	// go-git packfile access is not safe for concurrent use
	mu sync.Mutex
}

// OpenRepo opens the repository containing path
func OpenRepo(path string) (*Repo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	runner := NewCommandRunner(absPath)
	ctx := context.Background()
	root, err := runner.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("failed to find repository root: %w", err)
	}
	gitDir, err := runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to find git dir: %w", err)
	}

	return &Repo{
		repo:   repo,
		runner: NewCommandRunner(root),
		root:   root,
		gitDir: gitDir,
	}, nil
}

// Root returns the top-level directory of the worktree
func (r *Repo) Root() string {
	return r.root
}

// GitDir returns the absolute path of the .git directory
func (r *Repo) GitDir() string {
	return r.gitDir
}

// Runner returns the command runner bound to the repository root
func (r *Repo) Runner() *CommandRunner {
	return r.runner
}

// CurrentTip resolves ref (branch name, full ref or revision) to a commit SHA
func (r *Repo) CurrentTip(_ context.Context, ref string) (string, error) {
	hash, err := r.resolve(ref)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// BranchExists reports whether refs/heads/name exists
func (r *Repo) BranchExists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read branch %s: %w", name, err)
	}
	return true, nil
}

// BranchNames returns all local branch names
func (r *Repo) BranchNames(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	branches, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}
	return names, nil
}

// CurrentBranch returns the checked out branch name
func (r *Repo) CurrentBranch(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", sterrors.ErrNotOnBranch
	}
	return head.Name().Short(), nil
}

func (r *Repo) resolve(ref string) (plumbing.Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := []plumbing.ReferenceName{
		plumbing.ReferenceName(ref),
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewRemoteReferenceName("origin", ref),
		plumbing.NewTagReferenceName(ref),
	}
	for _, name := range candidates {
		if resolved, err := r.repo.Reference(name, true); err == nil {
			return resolved.Hash(), nil
		}
	}

	// Handles SHAs, short SHAs and expressions like HEAD~1
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}
	return plumbing.ZeroHash, fmt.Errorf("failed to resolve ref %s: reference not found", ref)
}
