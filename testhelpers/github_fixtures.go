package testhelpers

import (
	"github.com/google/go-github/v62/github"
)

// SamplePRData provides common PR data for testing
type SamplePRData struct {
	Number  int
	Title   string
	Body    string
	Head    string
	Base    string
	HTMLURL string
	Draft   bool
	// State is "open" or "closed"; empty means open
	State  string
	Merged bool
}

// NewSamplePullRequest creates a github.PullRequest from sample data
func NewSamplePullRequest(data SamplePRData) *github.PullRequest {
	state := data.State
	if state == "" {
		state = "open"
	}
	return &github.PullRequest{
		Number:  github.Int(data.Number),
		Title:   github.String(data.Title),
		Body:    github.String(data.Body),
		Head:    &github.PullRequestBranch{Ref: github.String(data.Head)},
		Base:    &github.PullRequestBranch{Ref: github.String(data.Base)},
		HTMLURL: github.String(data.HTMLURL),
		Draft:   github.Bool(data.Draft),
		State:   github.String(state),
		Merged:  github.Bool(data.Merged),
	}
}
