package testhelpers

import (
	"os"
	"os/exec"
	"testing"
)

// Scene is a temporary directory holding a fresh git repository.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a repository under t.TempDir() and runs setup on it.
// The test is skipped when no git binary is available.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	// Keep user-level config out of the repository under test
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)

	scene := &Scene{Dir: dir, Repo: repo}
	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// BasicSceneSetup creates a single commit on main.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}
