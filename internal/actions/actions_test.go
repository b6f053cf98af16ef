package actions_test

import (
	"context"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"stacked.dev/st/internal/remote"
	"stacked.dev/st/internal/runtime"
	"stacked.dev/st/testhelpers"
	"stacked.dev/st/testhelpers/scenario"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type nopPusher struct {
	mu     sync.Mutex
	pushed []string
}

func (p *nopPusher) Push(_ context.Context, _, branch string, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, branch)
	return nil
}

func (p *nopPusher) Pushed(context.Context, string, string) (bool, error) {
	return false, nil
}

// newScenario returns an initialized repository with one commit on main
func newScenario(t *testing.T) *scenario.Scenario {
	t.Helper()
	return scenario.NewScenario(t, testhelpers.BasicSceneSetup).Init()
}

// withGitHub points the scenario's remote operations at a mock GitHub
func withGitHub(t *testing.T, s *scenario.Scenario) (*testhelpers.MockGitHubServerConfig, *nopPusher) {
	t.Helper()
	gh := testhelpers.NewMockGitHubServerConfig()
	client := testhelpers.NewMockClient(t, gh)
	pusher := &nopPusher{}
	s.Context.NewHost = func(context.Context, *runtime.Context) (remote.Host, error) {
		return client, nil
	}
	s.Context.Pusher = pusher
	return gh, pusher
}
