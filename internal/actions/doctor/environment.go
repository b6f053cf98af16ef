package doctor

import (
	"stacked.dev/st/internal/github"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/utils"
)

func checkEnvironment(ctx *runtime.Context, r *report) {
	splog := ctx.Splog

	version, err := ctx.Repo.Runner().Run(ctx.Context, "version")
	if err != nil {
		r.fail("git is not installed or not in PATH")
		splog.Error("  git is not installed or not in PATH")
	} else {
		splog.Info("  ✅ %s", version)
	}

	if _, err := github.Token(ctx.Context); err != nil {
		r.warn("GitHub authentication not configured (GITHUB_TOKEN env var or gh auth token)")
		splog.Warn("  GitHub authentication not configured")
	} else {
		splog.Info("  ✅ GitHub token available")
	}

	if utils.IsInteractive() {
		splog.Info("  ✅ Interactive prompts enabled")
	} else {
		splog.Info("  · Interactive prompts disabled (ST_NON_INTERACTIVE or no terminal)")
	}
}
