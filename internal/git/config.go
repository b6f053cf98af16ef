package git

import (
	"context"
	"fmt"
)

// UserName returns user.name from git config
func (r *Repo) UserName(ctx context.Context) (string, error) {
	username, err := r.runner.Run(ctx, "config", "user.name")
	if err != nil {
		return "", fmt.Errorf("failed to get git user name: %w", err)
	}
	return username, nil
}
