// Package github provides a client for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// PR states as st records them
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
	StateMerged = "MERGED"
)

// PullRequest contains information about a pull request
// This is a simplified struct to avoid coupling callers to go-github
type PullRequest struct {
	Number int
	URL    string
	Title  string
	Body   string
	State  string
	Draft  bool
	Base   string
	Head   string
}

// Client talks to the pull request API of one repository
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient wraps an existing go-github client
func NewClient(gh *github.Client, owner, repo string) *Client {
	return &Client{gh: gh, owner: owner, repo: repo}
}

// NewAuthenticatedClient creates a client for info authenticated with token.
// Supports both github.com and GitHub Enterprise instances.
func NewAuthenticatedClient(ctx context.Context, info *RepoInfo, token string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))

	if info.Hostname != "" && info.Hostname != "github.com" {
		// REST API: https://hostname/api/v3/
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", info.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", info.Hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", info.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", info.Hostname, err)
		}
		gh.BaseURL = baseURL
		gh.UploadURL = uploadURL
	}

	return NewClient(gh, info.Owner, info.Repo), nil
}

// OwnerRepo returns the repository owner and name
func (c *Client) OwnerRepo() (owner, repo string) {
	return c.owner, c.repo
}

func toPullRequest(pr *github.PullRequest) *PullRequest {
	if pr == nil {
		return nil
	}
	return &PullRequest{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		State:  prState(pr),
		Draft:  pr.GetDraft(),
		Base:   pr.GetBase().GetRef(),
		Head:   pr.GetHead().GetRef(),
	}
}

// prState folds GitHub's open/closed plus merged flag into one state
func prState(pr *github.PullRequest) string {
	if pr.GetMerged() || pr.MergedAt != nil {
		return StateMerged
	}
	if strings.EqualFold(pr.GetState(), "closed") {
		return StateClosed
	}
	return StateOpen
}
