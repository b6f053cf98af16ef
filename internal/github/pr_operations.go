package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"
)

// CreatePR opens a pull request from branch into base
func (c *Client) CreatePR(ctx context.Context, branch, base, title, body string, draft bool) (*PullRequest, error) {
	pr := &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(branch),
		Base:  github.String(base),
		Draft: github.Bool(draft),
	}
	if body != "" {
		pr.Body = github.String(body)
	}

	created, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return toPullRequest(created), nil
}

// UpdatePR changes the base of a pull request, and its body when body is not
// empty. Title and draft state are left alone.
func (c *Client) UpdatePR(ctx context.Context, number int, base, body string) error {
	update := &github.PullRequest{}
	if base != "" {
		update.Base = &github.PullRequestBranch{Ref: github.String(base)}
	}
	if body != "" {
		update.Body = github.String(body)
	}

	if _, _, err := c.gh.PullRequests.Edit(ctx, c.owner, c.repo, number, update); err != nil {
		return fmt.Errorf("failed to update pull request #%d: %w", number, err)
	}
	return nil
}

// GetPRForBranch returns the open pull request whose head is branch, or nil
func (c *Client) GetPRForBranch(ctx context.Context, branch string) (*PullRequest, error) {
	prs, _, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		Head:  fmt.Sprintf("%s:%s", c.owner, branch),
		State: "open",
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return toPullRequest(prs[0]), nil
}

// GetPRState returns OPEN, CLOSED or MERGED
func (c *Client) GetPRState(ctx context.Context, number int) (string, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return "", fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}
	return prState(pr), nil
}

// UpsertComment writes body as the comment identified by commentID. When the
// ID is unknown or the comment was deleted, an existing comment containing
// marker is reused before a new one is created. It returns the comment ID.
func (c *Client) UpsertComment(ctx context.Context, number int, commentID int64, marker, body string) (int64, error) {
	if commentID != 0 {
		err := c.editComment(ctx, commentID, body)
		if err == nil {
			return commentID, nil
		}
		if !isNotFound(err) {
			return 0, err
		}
	}

	existing, err := c.findComment(ctx, number, marker)
	if err != nil {
		return 0, err
	}
	if existing != 0 {
		if err := c.editComment(ctx, existing, body); err != nil {
			return 0, err
		}
		return existing, nil
	}

	created, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to comment on pull request #%d: %w", number, err)
	}
	return created.GetID(), nil
}

func (c *Client) editComment(ctx context.Context, id int64, body string) error {
	_, _, err := c.gh.Issues.EditComment(ctx, c.owner, c.repo, id, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to edit comment %d: %w", id, err)
	}
	return nil
}

func (c *Client) findComment(ctx context.Context, number int, marker string) (int64, error) {
	if marker == "" {
		return 0, nil
	}
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return 0, fmt.Errorf("failed to list comments of pull request #%d: %w", number, err)
		}
		for _, comment := range comments {
			if strings.Contains(comment.GetBody(), marker) {
				return comment.GetID(), nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return 0, nil
		}
		opts.Page = resp.NextPage
	}
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
