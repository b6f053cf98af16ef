package remote

import (
	"context"

	"stacked.dev/st/internal/engine"
	"stacked.dev/st/internal/git"
	"stacked.dev/st/internal/github"
)

// Host is the pull request system
type Host interface {
	CreatePR(ctx context.Context, branch, base, title, body string, draft bool) (*github.PullRequest, error)
	UpdatePR(ctx context.Context, number int, base, body string) error
	GetPRForBranch(ctx context.Context, branch string) (*github.PullRequest, error)
	UpsertComment(ctx context.Context, number int, commentID int64, marker, body string) (int64, error)
	GetPRState(ctx context.Context, number int) (string, error)
}

// Graph is the local branch graph the coordinator reads links from and records them in
type Graph interface {
	Forest() (*engine.Forest, error)
	SetRemote(name string, link *engine.RemoteLink) error
	ArchiveRemote(name, state string) error
	Commits(ctx context.Context, name string) ([]git.Commit, error)
}

// Pusher publishes a branch to the remote
type Pusher interface {
	Push(ctx context.Context, remote, branch string, forceWithLease bool) error
	// Pushed reports whether the remote already has the local tip of branch
	Pushed(ctx context.Context, remote, branch string) (bool, error)
}

var (
	_ Host   = (*github.Client)(nil)
	_ Graph  = (*engine.Engine)(nil)
	_ Pusher = (*git.Repo)(nil)
)
