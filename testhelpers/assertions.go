// Package testhelpers provides testing utilities for st: throwaway git
// repositories, an in-memory VCS, a mock GitHub API and assertions.
package testhelpers

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must panics if err is not nil, otherwise returns val.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts the local branches of repo, in any order.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("for-each-ref", "refs/heads/", "--format=%(refname:short)")
	require.NoError(t, err, "Failed to list branches")

	actual := []string{}
	for _, b := range strings.Split(output, "\n") {
		if b = strings.TrimSpace(b); b != "" {
			actual = append(actual, b)
		}
	}
	sort.Strings(actual)
	expected = append([]string(nil), expected...)
	sort.Strings(expected)
	require.Equal(t, expected, actual, "Branches do not match")
}

// ExpectCommits asserts the newest len(expected) commit subjects on branch.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	messages, err := repo.CommitMessages(branch)
	require.NoError(t, err, "Failed to list commits")
	if len(messages) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(messages))
		return
	}
	require.Equal(t, expected, messages[:len(expected)], "Commits do not match")
}

// ExpectStacked asserts that parent's tip is an ancestor of branch.
func ExpectStacked(t *testing.T, repo *GitRepo, branch, parent string) {
	t.Helper()
	require.True(t, repo.IsAncestor(parent, branch), "%s is not stacked on %s", branch, parent)
}
