package runtime

import (
	"context"
	"fmt"
	"os"

	"stacked.dev/st/internal/config"
	"stacked.dev/st/internal/engine"
	"stacked.dev/st/internal/git"
	"stacked.dev/st/internal/github"
	"stacked.dev/st/internal/remote"
	"stacked.dev/st/internal/tui"
)

// HostFactory builds the pull request host for a repository
type HostFactory func(ctx context.Context, c *Context) (remote.Host, error)

// Context provides access to everything a command needs
type Context struct {
	Context  context.Context
	Engine   *engine.Engine
	Repo     *git.Repo
	Config   *config.RepoConfig
	Splog    *tui.Splog
	StateDir string

	// NewHost overrides how the GitHub client is built
	NewHost HostFactory
	// Pusher overrides the git pusher used by submit; defaults to Repo
	Pusher remote.Pusher

	coordinator *remote.Coordinator
}

// Open builds a context for the repository containing path
func Open(ctx context.Context, path string, splog *tui.Splog) (*Context, error) {
	repo, err := git.OpenRepo(path)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	stateDir := engine.StateDir(repo.GitDir())

	cfg, err := config.GetRepoConfig(stateDir)
	if err != nil {
		return nil, err
	}

	eng, err := engine.Open(stateDir, repo, engine.Options{
		ChildOrder: engine.ChildOrder(cfg.ChildOrder()),
		Logger:     splog.Logger(),
	})
	if err != nil {
		return nil, err
	}

	return &Context{
		Context:  ctx,
		Engine:   eng,
		Repo:     repo,
		Config:   cfg,
		Splog:    splog,
		StateDir: stateDir,
	}, nil
}

// OpenCwd builds a context for the current working directory
func OpenCwd(ctx context.Context, splog *tui.Splog) (*Context, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return Open(ctx, wd, splog)
}

// RequireInitialized fails unless `st init` has run
func (c *Context) RequireInitialized() error {
	if !c.Engine.Initialized() {
		return engine.ErrNotInitialized
	}
	return nil
}

// Lock takes the repository lock for a mutating command
func (c *Context) Lock() (*engine.Lock, error) {
	lock, err := engine.AcquireLock(c.StateDir)
	if err != nil {
		return nil, err
	}
	c.Splog.Logger().Debug("acquired repository lock", "owner", lock.Owner)
	return lock, nil
}

// ReloadConfig re-reads the repository config after it was changed
func (c *Context) ReloadConfig() error {
	cfg, err := config.GetRepoConfig(c.StateDir)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// Coordinator returns the remote coordinator, connecting to GitHub on first use
func (c *Context) Coordinator() (*remote.Coordinator, error) {
	if c.coordinator != nil {
		return c.coordinator, nil
	}

	newHost := c.NewHost
	if newHost == nil {
		newHost = GitHubHost
	}
	host, err := newHost(c.Context, c)
	if err != nil {
		return nil, err
	}

	pusher := c.Pusher
	if pusher == nil {
		pusher = c.Repo
	}
	c.coordinator = remote.NewCoordinator(host, c.Engine, remote.Options{
		Remote:      c.Config.RemoteName(),
		Concurrency: c.Config.SyncConcurrency(),
		Pusher:      pusher,
		ChildOrder:  c.Engine.ChildOrder(),
		Logger:      c.Splog.Logger(),
	})
	return c.coordinator, nil
}

// GitHubHost connects to the GitHub repository behind the configured remote.
// Host, owner and repo from the config take precedence over the remote URL.
func GitHubHost(ctx context.Context, c *Context) (remote.Host, error) {
	gh := c.Config.GitHub
	info := &github.RepoInfo{}
	if gh.Owner == "" || gh.Repo == "" {
		url, err := c.Repo.RemoteURL(ctx, c.Config.RemoteName())
		if err != nil {
			return nil, err
		}
		if info, err = github.ParseGitHubRemoteURL(url); err != nil {
			return nil, err
		}
	}
	info = info.WithOverrides(gh.Host, gh.Owner, gh.Repo)

	token, err := github.Token(ctx)
	if err != nil {
		return nil, err
	}
	c.Splog.Logger().Debug("connecting to GitHub", "host", info.Hostname, "owner", info.Owner, "repo", info.Repo)
	client, err := github.NewAuthenticatedClient(ctx, info, token)
	if err != nil {
		return nil, err
	}
	return client, nil
}
