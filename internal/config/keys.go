package config

import (
	"fmt"
	"strconv"
)

// Keys lists the settings `st config` can show and change, in display order.
// Trunks are managed with `st init` and `st trunk add`.
var Keys = []string{
	"remote",
	"github.host",
	"github.owner",
	"github.repo",
	"submit.draft",
	"restack.childOrder",
	"sync.concurrency",
	"branch.pattern",
}

// Get returns the effective value of key
func (c *RepoConfig) Get(key string) (string, error) {
	switch key {
	case "remote":
		return c.RemoteName(), nil
	case "github.host":
		return c.GitHub.Host, nil
	case "github.owner":
		return c.GitHub.Owner, nil
	case "github.repo":
		return c.GitHub.Repo, nil
	case "submit.draft":
		return strconv.FormatBool(c.SubmitDraft()), nil
	case "restack.childOrder":
		return c.ChildOrder(), nil
	case "sync.concurrency":
		return strconv.Itoa(c.SyncConcurrency()), nil
	case "branch.pattern":
		return string(c.BranchPattern()), nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set changes key. An empty value restores the default.
func (c *RepoConfig) Set(key, value string) error {
	switch key {
	case "remote":
		c.Remote = value
	case "github.host":
		c.GitHub.Host = value
	case "github.owner":
		c.GitHub.Owner = value
	case "github.repo":
		c.GitHub.Repo = value
	case "submit.draft":
		if value == "" {
			c.Submit.Draft = nil
			break
		}
		draft, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("submit.draft must be true or false: %w", err)
		}
		c.Submit.Draft = &draft
	case "restack.childOrder":
		c.Restack.ChildOrder = value
	case "sync.concurrency":
		if value == "" {
			c.Sync.Concurrency = 0
			break
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("sync.concurrency must be a number: %w", err)
		}
		c.Sync.Concurrency = n
	case "branch.pattern":
		c.Branch.Pattern = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}

// SetValue changes one key in the config stored in stateDir
func SetValue(stateDir, key, value string) error {
	config, err := GetRepoConfig(stateDir)
	if err != nil {
		return err
	}
	if err := config.Set(key, value); err != nil {
		return err
	}
	return SaveRepoConfig(stateDir, config)
}
