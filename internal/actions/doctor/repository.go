package doctor

import (
	"stacked.dev/st/internal/github"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/internal/tui/style"
)

// checkRepository performs repository-related checks
func checkRepository(ctx *runtime.Context, r *report) {
	splog := ctx.Splog
	splog.Info("  ✅ %s is a git repository", ctx.Repo.Root())

	remote := ctx.Config.RemoteName()
	remoteURL, err := ctx.Repo.RemoteURL(ctx.Context, remote)
	if err != nil {
		r.warn("remote '%s' is not configured", remote)
		splog.Warn("  remote '%s' is not configured", remote)
	} else if info, err := github.ParseGitHubRemoteURL(remoteURL); err != nil {
		r.warn("remote '%s' is not a GitHub repository: %s", remote, remoteURL)
		splog.Warn("  remote '%s' is not a GitHub repository", remote)
	} else {
		splog.Info("  ✅ Remote '%s' is configured to GitHub (%s/%s)", remote, info.Owner, info.Repo)
	}

	if !ctx.Engine.Initialized() {
		r.fail("st is not initialized (run 'st init')")
		splog.Error("  st is not initialized")
		return
	}
	splog.Info("  ✅ st is initialized")

	for _, trunk := range ctx.Config.AllTrunks() {
		exists, err := ctx.Repo.BranchExists(ctx.Context, trunk)
		if err != nil || !exists {
			r.fail("trunk branch '%s' does not exist", trunk)
			splog.Error("  trunk branch '%s' does not exist", trunk)
			continue
		}
		splog.Info("  ✅ Trunk branch %s exists", style.ColorBranchName(trunk, false))
	}
}
