package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"stacked.dev/st/internal/utils"
)

// FileName is the name of the config file inside the state directory
const FileName = "config.yaml"

// Defaults used when a setting is absent
const (
	DefaultTrunk           = "main"
	DefaultRemote          = "origin"
	DefaultSyncConcurrency = 4
	MaxSyncConcurrency     = 16
)

// Child orders accepted by restack.childOrder
const (
	ChildOrderInsertion    = "insertion"
	ChildOrderAlphabetical = "alphabetical"
)

// RepoConfig represents the repository configuration
type RepoConfig struct {
	Trunk   string        `yaml:"trunk,omitempty"`
	Trunks  []string      `yaml:"trunks,omitempty"`
	Remote  string        `yaml:"remote,omitempty"`
	GitHub  GitHubConfig  `yaml:"github,omitempty"`
	Submit  SubmitConfig  `yaml:"submit,omitempty"`
	Restack RestackConfig `yaml:"restack,omitempty"`
	Sync    SyncConfig    `yaml:"sync,omitempty"`
	Branch  BranchConfig  `yaml:"branch,omitempty"`
}

// GitHubConfig overrides what is derived from the remote URL
type GitHubConfig struct {
	Host  string `yaml:"host,omitempty"`
	Owner string `yaml:"owner,omitempty"`
	Repo  string `yaml:"repo,omitempty"`
}

// SubmitConfig controls `st submit`
type SubmitConfig struct {
	Draft *bool `yaml:"draft,omitempty"`
}

// RestackConfig controls traversal during restacks
type RestackConfig struct {
	ChildOrder string `yaml:"childOrder,omitempty"`
}

// SyncConfig controls remote synchronization
type SyncConfig struct {
	Concurrency int `yaml:"concurrency,omitempty"`
}

// BranchConfig controls generated branch names
type BranchConfig struct {
	Pattern string `yaml:"pattern,omitempty"`
}

// GetRepoConfig reads the repository configuration from stateDir. A missing
// file yields an empty config.
func GetRepoConfig(stateDir string) (*RepoConfig, error) {
	path := filepath.Join(stateDir, FileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &RepoConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}

	var config RepoConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid repo config %s: %w", path, err)
	}
	return &config, nil
}

// SaveRepoConfig writes config to stateDir
func SaveRepoConfig(stateDir string, config *RepoConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return utils.WriteFileAtomic(filepath.Join(stateDir, FileName), data, 0o600)
}

// Validate rejects settings st cannot act on
func (c *RepoConfig) Validate() error {
	switch c.Restack.ChildOrder {
	case "", ChildOrderInsertion, ChildOrderAlphabetical:
	default:
		return fmt.Errorf("restack.childOrder must be %q or %q, got %q", ChildOrderInsertion, ChildOrderAlphabetical, c.Restack.ChildOrder)
	}
	if c.Sync.Concurrency < 0 {
		return fmt.Errorf("sync.concurrency must not be negative")
	}
	if c.Branch.Pattern != "" {
		if _, err := NewBranchPattern(c.Branch.Pattern); err != nil {
			return err
		}
	}
	return nil
}

// TrunkName returns the primary trunk branch name, or "main" as default
func (c *RepoConfig) TrunkName() string {
	if c.Trunk != "" {
		return c.Trunk
	}
	return DefaultTrunk
}

// AllTrunks returns the primary trunk followed by additional trunks
func (c *RepoConfig) AllTrunks() []string {
	trunks := []string{c.TrunkName()}
	for _, t := range c.Trunks {
		if !slices.Contains(trunks, t) {
			trunks = append(trunks, t)
		}
	}
	return trunks
}

// RemoteName returns the remote PRs are pushed to
func (c *RepoConfig) RemoteName() string {
	if c.Remote != "" {
		return c.Remote
	}
	return DefaultRemote
}

// SubmitDraft reports whether new PRs are opened as drafts, false by default
func (c *RepoConfig) SubmitDraft() bool {
	return c.Submit.Draft != nil && *c.Submit.Draft
}

// ChildOrder returns the configured sibling order, insertion by default
func (c *RepoConfig) ChildOrder() string {
	if c.Restack.ChildOrder != "" {
		return c.Restack.ChildOrder
	}
	return ChildOrderInsertion
}

// SyncConcurrency returns how many branches are synced at once
func (c *RepoConfig) SyncConcurrency() int {
	switch {
	case c.Sync.Concurrency <= 0:
		return DefaultSyncConcurrency
	case c.Sync.Concurrency > MaxSyncConcurrency:
		return MaxSyncConcurrency
	default:
		return c.Sync.Concurrency
	}
}

// BranchPattern returns the configured pattern for generated branch names
func (c *RepoConfig) BranchPattern() BranchPattern {
	return BranchPattern(c.Branch.Pattern).WithDefault()
}

// SetTrunk updates the primary trunk in the config
func SetTrunk(stateDir, trunkName string) error {
	config, err := GetRepoConfig(stateDir)
	if err != nil {
		return err
	}
	config.Trunk = trunkName
	config.Trunks = slices.DeleteFunc(config.Trunks, func(t string) bool { return t == trunkName })
	return SaveRepoConfig(stateDir, config)
}

// AddTrunk adds an additional trunk branch to the config
func AddTrunk(stateDir, trunkName string) error {
	config, err := GetRepoConfig(stateDir)
	if err != nil {
		return err
	}
	if config.TrunkName() == trunkName {
		return fmt.Errorf("'%s' is already the primary trunk", trunkName)
	}
	if slices.Contains(config.Trunks, trunkName) {
		return fmt.Errorf("'%s' is already configured as a trunk", trunkName)
	}
	config.Trunks = append(config.Trunks, trunkName)
	return SaveRepoConfig(stateDir, config)
}
