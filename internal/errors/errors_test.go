package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	sterrors "stacked.dev/st/internal/errors"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"cycle", sterrors.NewCycleError("a", "b"), sterrors.ErrCycle},
		{"duplicate", sterrors.NewDuplicateError("a"), sterrors.ErrDuplicate},
		{"dangling parent", sterrors.NewDanglingParentError("a", "b"), sterrors.ErrDanglingParent},
		{"has children", sterrors.NewHasChildrenError("a", []string{"b"}), sterrors.ErrHasChildren},
		{"not tracked", sterrors.NewNotTrackedError("a"), sterrors.ErrNotTracked},
		{"conflict", sterrors.NewConflictError("a", "abc", "01H", 0, 2), sterrors.ErrRebaseConflict},
		{"plan in progress", sterrors.NewPlanInProgressError("01H", "a"), sterrors.ErrPlanInProgress},
		{"repository busy", sterrors.NewRepositoryBusyError(".git/st/lock", 42, "01H"), sterrors.ErrRepositoryBusy},
		{"sync", sterrors.NewSyncError("a", "update PR", errors.New("boom")), sterrors.ErrSync},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tc.err)
			require.ErrorIs(t, wrapped, tc.sentinel)
			require.NotEmpty(t, tc.err.Error())
		})
	}
}

func TestSyncErrorUnwraps(t *testing.T) {
	cause := errors.New("502 bad gateway")
	err := sterrors.NewSyncError("feat-a", "update PR base", cause)
	require.ErrorIs(t, err, cause)

	var syncErr *sterrors.SyncError
	require.ErrorAs(t, fmt.Errorf("submit: %w", err), &syncErr)
	require.Equal(t, "feat-a", syncErr.Branch)
}

func TestGitCommandErrorMessage(t *testing.T) {
	err := sterrors.NewGitCommandError("rebase", []string{"--onto", "main"}, "", "fatal: bad revision", errors.New("exit status 128"))
	require.Contains(t, err.Error(), "rebase")
	require.Contains(t, err.Error(), "fatal: bad revision")
	require.Contains(t, err.Error(), "exit status 128")
}
