package actions

import (
	"fmt"
	"slices"

	"stacked.dev/st/internal/config"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

var commonTrunkNames = []string{"main", "master", "development", "develop"}

// InitOptions contains options for the init command
type InitOptions struct {
	Trunk string
}

// InitAction starts tracking the repository with a trunk branch
func InitAction(ctx *runtime.Context, opts InitOptions) error {
	trunk := opts.Trunk
	if trunk == "" {
		inferred, err := InferTrunk(ctx)
		if err != nil {
			return err
		}
		trunk = inferred
	}

	return withLock(ctx, func() error {
		if err := ctx.Engine.Init(ctx.Context, trunk); err != nil {
			return fmt.Errorf("failed to initialize with trunk %s: %w", trunk, err)
		}
		if err := config.SetTrunk(ctx.StateDir, trunk); err != nil {
			return err
		}
		// Trunks added to the config by hand are tracked too
		for _, extra := range ctx.Config.AllTrunks()[1:] {
			if extra == trunk {
				continue
			}
			if err := ctx.Engine.AddTrunk(ctx.Context, extra); err != nil {
				ctx.Splog.Warn("Could not add trunk %s: %v", extra, err)
			}
		}
		if err := ctx.ReloadConfig(); err != nil {
			return err
		}
		ctx.Splog.Info("Trunk set to %s.", style.ColorBranchName(trunk, false))
		return nil
	})
}

// InferTrunk picks a trunk when none was given: the configured one, a
// commonly named branch, or the checked out branch.
func InferTrunk(ctx *runtime.Context) (string, error) {
	if ctx.Config.Trunk != "" {
		return ctx.Config.Trunk, nil
	}
	names, err := ctx.Repo.BranchNames(ctx.Context)
	if err != nil {
		return "", err
	}
	for _, name := range commonTrunkNames {
		if slices.Contains(names, name) {
			return name, nil
		}
	}
	if current := currentBranch(ctx); current != "" {
		return current, nil
	}
	return "", fmt.Errorf("could not infer the trunk branch, pass one with --trunk")
}
