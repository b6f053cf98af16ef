package doctor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/st/internal/actions/doctor"
	"stacked.dev/st/testhelpers"
	"stacked.dev/st/testhelpers/scenario"
)

func TestDoctor(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "test-token")

	t.Run("healthy repository", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).Init()
		s.WithStack(map[string]string{"a": "main"})

		require.NoError(t, doctor.Action(s.Context, doctor.Options{}))
		out := s.Output.String()
		require.Contains(t, out, "✅ Branch graph is consistent")
		require.Contains(t, out, "✅ Every tracked branch exists in git")
		require.Contains(t, out, "Trunk branch main exists")
	})

	t.Run("uninitialized repository fails", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.BasicSceneSetup)
		err := doctor.Action(s.Context, doctor.Options{})
		require.ErrorContains(t, err, "doctor found 1 error(s)")
		require.Contains(t, s.Output.String(), "st is not initialized")
	})

	t.Run("fix untracks branches deleted outside st", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).Init()
		s.WithStack(map[string]string{"a": "main", "b": "a"})
		s.RunGit("branch", "-D", "a")

		require.NoError(t, doctor.Action(s.Context, doctor.Options{}))
		require.Contains(t, s.Output.String(), "Found 1 tracked branch(es) deleted outside st")

		s.Output.Reset()
		require.NoError(t, doctor.Action(s.Context, doctor.Options{Fix: true}))
		require.Contains(t, s.Output.String(), "Untracked deleted branch a")
		s.ExpectParent("b", "main")
	})
}
