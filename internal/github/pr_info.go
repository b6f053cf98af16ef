package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	"stacked.dev/st/internal/git"
)

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// Token gets a GitHub token from GITHUB_TOKEN or the gh CLI
func Token(ctx context.Context) (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	output, err := git.RunGHCommandWithContext(ctx, "auth", "token")
	if err != nil {
		return "", fmt.Errorf("failed to get GitHub token: %w", err)
	}
	token := strings.TrimSpace(output)
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}
	return token, nil
}

// ParseGitHubRemoteURL parses a git remote URL and extracts hostname, owner, and repo
// Supports both github.com and GitHub Enterprise URLs
// Examples:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo.git
func ParseGitHubRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(remoteURL, "/")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	var hostname, path string
	switch {
	case strings.Contains(remoteURL, "://"):
		_, rest, _ := strings.Cut(remoteURL, "://")
		if _, afterUser, ok := strings.Cut(rest, "@"); ok {
			rest = afterUser
		}
		var ok bool
		hostname, path, ok = strings.Cut(rest, "/")
		if !ok {
			return nil, fmt.Errorf("invalid remote URL %q: missing path", remoteURL)
		}
		// drop an explicit port
		hostname, _, _ = strings.Cut(hostname, ":")
	case strings.Contains(remoteURL, "@"):
		// scp-like: git@hostname:owner/repo
		_, hostAndPath, _ := strings.Cut(remoteURL, "@")
		var ok bool
		hostname, path, ok = strings.Cut(hostAndPath, ":")
		if !ok {
			return nil, fmt.Errorf("invalid SSH remote URL %q: missing path", remoteURL)
		}
	default:
		return nil, fmt.Errorf("unsupported remote URL %q", remoteURL)
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid remote URL %q: path must be owner/repo", remoteURL)
	}
	owner, repo := parts[len(parts)-2], parts[len(parts)-1]

	if hostname == "" || owner == "" || repo == "" {
		return nil, fmt.Errorf("failed to parse hostname, owner, or repo from remote URL")
	}
	return &RepoInfo{Hostname: hostname, Owner: owner, Repo: repo}, nil
}

// WithOverrides replaces the parsed values with any non-empty override
func (i RepoInfo) WithOverrides(hostname, owner, repo string) *RepoInfo {
	if hostname != "" {
		i.Hostname = hostname
	}
	if owner != "" {
		i.Owner = owner
	}
	if repo != "" {
		i.Repo = repo
	}
	return &i
}
