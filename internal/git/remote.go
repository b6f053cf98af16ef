package git

import (
	"context"
	"fmt"
)

// DefaultRemote is used when the repository config names none
const DefaultRemote = "origin"

// RemoteURL returns the fetch URL of remote
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := r.runner.Run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to get url of remote %s: %w", remote, err)
	}
	return url, nil
}

// Upstream returns the configured upstream of branch, or "" if none is set
func (r *Repo) Upstream(ctx context.Context, branch string) string {
	upstream, err := r.runner.Run(ctx, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		return ""
	}
	return upstream
}
