package actions

import (
	"stacked.dev/st/internal/config"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// TrunkAddAction registers another long-lived base branch
func TrunkAddAction(ctx *runtime.Context, name string) error {
	if err := ctx.RequireInitialized(); err != nil {
		return err
	}
	return withLock(ctx, func() error {
		if err := ctx.Engine.AddTrunk(ctx.Context, name); err != nil {
			return err
		}
		if err := config.AddTrunk(ctx.StateDir, name); err != nil {
			return err
		}
		if err := ctx.ReloadConfig(); err != nil {
			return err
		}
		ctx.Splog.Info("Added trunk %s.", style.ColorBranchName(name, false))
		return nil
	})
}

// TrunkListAction prints every trunk, primary first
func TrunkListAction(ctx *runtime.Context) error {
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}
	for i, trunk := range forest.Trunks {
		suffix := ""
		if i == 0 {
			suffix = style.ColorDim(" (primary)")
		}
		ctx.Splog.Info("%s%s", style.ColorBranchName(trunk, false), suffix)
	}
	return nil
}
