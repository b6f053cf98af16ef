package actions

import (
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// StatusAction reports the outstanding restack, if any, step by step
func StatusAction(ctx *runtime.Context) error {
	if err := ctx.RequireInitialized(); err != nil {
		return err
	}
	plan, err := ctx.Engine.Status()
	if err != nil {
		return err
	}
	if plan == nil {
		ctx.Splog.Info("No restack in progress.")
		return nil
	}

	ctx.Splog.Info("Restack %s of %s started %s:", style.ColorDim(plan.ID), style.ColorBranchName(plan.Root, false),
		plan.StartedAt.Local().Format("2006-01-02 15:04"))
	for i, step := range plan.Steps {
		var marker string
		switch {
		case i < plan.Cursor:
			marker = style.ColorGreen("✓")
		case i == plan.Cursor:
			marker = style.ColorRed("✗")
		default:
			marker = style.ColorDim("·")
		}
		ctx.Splog.Info("  %s %s onto %s", marker, step.Branch, step.Parent)
	}
	ctx.Splog.Tip("Resolve the conflict and run %s, or run %s.", style.ColorCyan("st continue"), style.ColorCyan("st abort"))
	return nil
}
