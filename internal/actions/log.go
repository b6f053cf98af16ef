package actions

import (
	"fmt"
	"slices"
	"strings"

	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/components/tree"
	"stacked.dev/st/internal/tui/style"
)

// LogOptions contains options for the log command
type LogOptions struct {
	// BranchName limits the output to the subtree of a branch
	BranchName    string
	ShowUntracked bool
	// Commits annotates every branch with the number of commits it adds
	Commits bool
}

// LogAction displays the branch tree
func LogAction(ctx *runtime.Context, opts LogOptions) error {
	if err := ctx.RequireInitialized(); err != nil {
		return err
	}
	forest, err := ctx.Engine.Forest()
	if err != nil {
		return err
	}

	renderer := tree.NewRenderer(forest, currentBranch(ctx), ctx.Engine.ChildOrder())
	if opts.Commits {
		for name := range forest.Branches {
			if forest.IsTrunk(name) {
				continue
			}
			commits, err := ctx.Engine.Commits(ctx.Context, name)
			if err != nil {
				ctx.Splog.Debug("could not count commits of %s: %v", name, err)
				continue
			}
			label := fmt.Sprintf("%d commits", len(commits))
			if len(commits) == 1 {
				label = "1 commit"
			}
			renderer.Annotations[name] = tree.Annotation{Label: label}
		}
	}

	var lines []tree.Line
	if opts.BranchName != "" {
		lines = renderer.Render(opts.BranchName)
		if lines == nil {
			return fmt.Errorf("%s is not tracked", opts.BranchName)
		}
	} else {
		lines = renderer.RenderAll()
	}
	out := []string{tree.String(lines)}

	if opts.ShowUntracked {
		names, err := ctx.Repo.BranchNames(ctx.Context)
		if err != nil {
			return err
		}
		var untracked []string
		for _, name := range names {
			if !forest.IsTracked(name) {
				untracked = append(untracked, name)
			}
		}
		if len(untracked) > 0 {
			slices.Sort(untracked)
			out = append(out, "", style.ColorDim("Untracked branches:"))
			out = append(out, untracked...)
		}
	}

	if plan, err := ctx.Engine.Status(); err == nil && plan != nil {
		out = append(out, "", style.ColorYellow(fmt.Sprintf("Restack of %s stopped at step %d of %d; run `st continue` or `st abort`.",
			plan.Root, plan.Cursor+1, len(plan.Steps))))
	}

	ctx.Splog.Page(strings.Join(out, "\n"))
	ctx.Splog.Newline()
	return nil
}
