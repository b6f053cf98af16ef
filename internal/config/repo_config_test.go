package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetRepoConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when config does not exist", func(t *testing.T) {
		t.Parallel()
		config, err := GetRepoConfig(t.TempDir())
		require.NoError(t, err)

		require.Equal(t, "main", config.TrunkName())
		require.Equal(t, []string{"main"}, config.AllTrunks())
		require.Equal(t, "origin", config.RemoteName())
		require.False(t, config.SubmitDraft())
		require.Equal(t, ChildOrderInsertion, config.ChildOrder())
		require.Equal(t, DefaultSyncConcurrency, config.SyncConcurrency())
		require.Equal(t, DefaultBranchPattern, config.BranchPattern())
	})

	t.Run("reads nested keys", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		yaml := `trunk: develop
trunks: [release]
remote: upstream
github:
  host: github.example.com
  owner: acme
  repo: widgets
submit:
  draft: true
restack:
  childOrder: alphabetical
sync:
  concurrency: 64
branch:
  pattern: "{username}/{message}"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yaml), 0o600))

		config, err := GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, []string{"develop", "release"}, config.AllTrunks())
		require.Equal(t, "upstream", config.RemoteName())
		require.Equal(t, GitHubConfig{Host: "github.example.com", Owner: "acme", Repo: "widgets"}, config.GitHub)
		require.True(t, config.SubmitDraft())
		require.Equal(t, ChildOrderAlphabetical, config.ChildOrder())
		require.Equal(t, MaxSyncConcurrency, config.SyncConcurrency())
		require.Equal(t, BranchPattern("{username}/{message}"), config.BranchPattern())
	})

	t.Run("rejects unknown child orders", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("restack:\n  childOrder: random\n"), 0o600))

		_, err := GetRepoConfig(dir)
		require.ErrorContains(t, err, "restack.childOrder")
	})

	t.Run("reports malformed yaml", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("trunk: [unterminated"), 0o600))

		_, err := GetRepoConfig(dir)
		require.ErrorContains(t, err, "failed to parse repo config")
	})
}

func TestTrunks(t *testing.T) {
	t.Parallel()

	t.Run("set trunk keeps other fields", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		draft := true
		require.NoError(t, SaveRepoConfig(dir, &RepoConfig{Submit: SubmitConfig{Draft: &draft}}))

		require.NoError(t, SetTrunk(dir, "develop"))

		config, err := GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, "develop", config.TrunkName())
		require.True(t, config.SubmitDraft())
	})

	t.Run("add trunk rejects duplicates", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, SetTrunk(dir, "main"))
		require.NoError(t, AddTrunk(dir, "release"))

		require.ErrorContains(t, AddTrunk(dir, "release"), "already configured")
		require.ErrorContains(t, AddTrunk(dir, "main"), "already the primary trunk")

		config, err := GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, []string{"main", "release"}, config.AllTrunks())
	})

	t.Run("promoting an additional trunk drops the duplicate", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, AddTrunk(dir, "release"))
		require.NoError(t, SetTrunk(dir, "release"))

		config, err := GetRepoConfig(dir)
		require.NoError(t, err)
		require.Empty(t, config.Trunks)
	})
}

func TestBranchPattern(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		_, err := NewBranchPattern("{username}/wip")
		require.ErrorContains(t, err, "{message}")

		_, err = NewBranchPattern("{team}/{message}")
		require.ErrorContains(t, err, "unknown placeholder")

		p, err := NewBranchPattern("")
		require.NoError(t, err)
		require.Equal(t, DefaultBranchPattern, p)
	})

	tests := []struct {
		name     string
		pattern  BranchPattern
		message  string
		username string
		want     string
	}{
		{"default", "", "feat(api): Add retries to client", "", "add-retries-to-client"},
		{"username and date", "{username}/{date}/{message}", "Fix login", "Jane Doe", "jane-doe/20260314/fix-login"},
		{"missing username", "{username}/{message}", "Fix login", "", "fix-login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.pattern.BranchName(tt.message, tt.username, now)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("empty message", func(t *testing.T) {
		t.Parallel()
		_, err := DefaultBranchPattern.BranchName("   ", "", now)
		require.Error(t, err)
	})
}
