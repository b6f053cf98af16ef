// Package doctor checks that the environment and the tracked stacks are healthy.
package doctor

import (
	"fmt"

	"stacked.dev/st/internal/runtime"
)

// Options contains options for the doctor command
type Options struct {
	// Fix untracks branches that were deleted outside st
	Fix bool
}

// report collects the findings of every check
type report struct {
	warnings []string
	errors   []string
}

func (r *report) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *report) fail(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

// Action runs diagnostic checks on the environment and repository
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog

	if opts.Fix {
		splog.Info("Running st doctor with --fix...")
	} else {
		splog.Info("Running st doctor...")
	}
	splog.Newline()

	r := &report{}

	splog.Info("Environment:")
	checkEnvironment(ctx, r)
	splog.Newline()

	splog.Info("Repository:")
	checkRepository(ctx, r)
	splog.Newline()

	splog.Info("Stack State:")
	checkStackState(ctx, r, opts.Fix)

	splog.Newline()
	switch {
	case len(r.errors) > 0:
		splog.Warn("Doctor found %d error(s) and %d warning(s).", len(r.errors), len(r.warnings))
		for _, err := range r.errors {
			splog.Error("  %s", err)
		}
		for _, warn := range r.warnings {
			splog.Warn("  %s", warn)
		}
		return fmt.Errorf("doctor found %d error(s)", len(r.errors))
	case len(r.warnings) > 0:
		splog.Info("Doctor found %d warning(s). Your st setup is mostly healthy.", len(r.warnings))
		for _, warn := range r.warnings {
			splog.Warn("  %s", warn)
		}
	default:
		splog.Info("✅ All checks passed. Your st setup is healthy.")
	}

	return nil
}
