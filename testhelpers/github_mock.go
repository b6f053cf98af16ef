package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"

	githubpkg "stacked.dev/st/internal/github"
)

// MockGitHubServerConfig holds the state of a mock GitHub server. It is safe
// for concurrent requests; read it through its methods.
type MockGitHubServerConfig struct {
	Owner string
	Repo  string

	mu       sync.Mutex
	prs      map[int]*github.PullRequest
	comments map[int][]*github.IssueComment
	failures map[string]int
	writes   int
	nextPR   int
	nextID   int64
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner:    "owner",
		Repo:     "repo",
		prs:      make(map[int]*github.PullRequest),
		comments: make(map[int][]*github.IssueComment),
		failures: make(map[string]int),
	}
}

// AddPR seeds an existing pull request
func (c *MockGitHubServerConfig) AddPR(data SamplePRData) *github.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if data.Number == 0 {
		c.nextPR++
		data.Number = c.nextPR
	} else if data.Number > c.nextPR {
		c.nextPR = data.Number
	}
	if data.HTMLURL == "" {
		data.HTMLURL = c.prURL(data.Number)
	}
	pr := NewSamplePullRequest(data)
	c.prs[data.Number] = pr
	return pr
}

// AddComment seeds a comment on a pull request and returns its ID
func (c *MockGitHubServerConfig) AddComment(number int, body string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addCommentLocked(number, body).GetID()
}

// SetPRState closes or merges a pull request
func (c *MockGitHubServerConfig) SetPRState(number int, state string, merged bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pr := c.prs[number]; pr != nil {
		pr.State = github.String(state)
		pr.Merged = github.Bool(merged)
	}
}

// FailRequests makes every request with method on resource ("pulls" or
// "comments") fail with status
func (c *MockGitHubServerConfig) FailRequests(method, resource string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[method+" "+resource] = status
}

// Writes returns how many mutating requests were served
func (c *MockGitHubServerConfig) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// PR returns a copy of pull request number, or nil
func (c *MockGitHubServerConfig) PR(number int) *github.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	pr := c.prs[number]
	if pr == nil {
		return nil
	}
	cp := *pr
	return &cp
}

// PRs returns the number of pull requests
func (c *MockGitHubServerConfig) PRs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prs)
}

// Comments returns the bodies of the comments on pull request number
func (c *MockGitHubServerConfig) Comments(number int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, comment := range c.comments[number] {
		out = append(out, comment.GetBody())
	}
	return out
}

// DeleteComments removes every comment on pull request number
func (c *MockGitHubServerConfig) DeleteComments(number int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.comments, number)
}

func (c *MockGitHubServerConfig) prURL(number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", c.Owner, c.Repo, number)
}

func (c *MockGitHubServerConfig) addCommentLocked(number int, body string) *github.IssueComment {
	c.nextID++
	comment := &github.IssueComment{ID: github.Int64(c.nextID), Body: github.String(body)}
	c.comments[number] = append(c.comments[number], comment)
	return comment
}

// NewMockGitHubServer creates an httptest server that mocks the pull request
// and issue comment endpoints of the GitHub REST API
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	base := "/repos/" + config.Owner + "/" + config.Repo

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+base+"/pulls", config.guard("pulls", config.createPR))
	mux.HandleFunc("GET "+base+"/pulls", config.guard("pulls", config.listPRs))
	mux.HandleFunc("GET "+base+"/pulls/{number}", config.guard("pulls", config.getPR))
	mux.HandleFunc("PATCH "+base+"/pulls/{number}", config.guard("pulls", config.editPR))
	mux.HandleFunc("GET "+base+"/issues/{number}/comments", config.guard("comments", config.listComments))
	mux.HandleFunc("POST "+base+"/issues/{number}/comments", config.guard("comments", config.createComment))
	mux.HandleFunc("PATCH "+base+"/issues/comments/{id}", config.guard("comments", config.editComment))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// NewMockGitHubClient creates a go-github client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL
	return client, config.Owner, config.Repo
}

// NewMockClient returns an st GitHub client backed by a mock server
func NewMockClient(t *testing.T, config *MockGitHubServerConfig) *githubpkg.Client {
	return githubpkg.NewClient(NewMockGitHubClient(t, config))
}

func (c *MockGitHubServerConfig) guard(resource string, h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		status := c.failures[r.Method+" "+resource]
		if status == 0 && r.Method != http.MethodGet {
			c.writes++
		}
		c.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		h(w, r)
	}
}

func (c *MockGitHubServerConfig) createPR(w http.ResponseWriter, r *http.Request) {
	var newPR github.NewPullRequest
	if err := json.NewDecoder(r.Body).Decode(&newPR); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	c.nextPR++
	number := c.nextPR
	pr := &github.PullRequest{
		Number:  github.Int(number),
		Title:   newPR.Title,
		Body:    newPR.Body,
		Head:    &github.PullRequestBranch{Ref: newPR.Head},
		Base:    &github.PullRequestBranch{Ref: newPR.Base},
		Draft:   newPR.Draft,
		State:   github.String("open"),
		HTMLURL: github.String(c.prURL(number)),
	}
	c.prs[number] = pr
	c.mu.Unlock()

	writeJSON(w, http.StatusCreated, pr)
}

func (c *MockGitHubServerConfig) listPRs(w http.ResponseWriter, r *http.Request) {
	head := r.URL.Query().Get("head")
	state := r.URL.Query().Get("state")
	branch := head
	if prefix := c.Owner + ":"; len(head) > len(prefix) && head[:len(prefix)] == prefix {
		branch = head[len(prefix):]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := []*github.PullRequest{}
	for number := 1; number <= c.nextPR; number++ {
		pr := c.prs[number]
		if pr == nil || (head != "" && pr.GetHead().GetRef() != branch) {
			continue
		}
		if state != "" && state != "all" && pr.GetState() != state {
			continue
		}
		out = append(out, pr)
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *MockGitHubServerConfig) getPR(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.PathValue("number"))
	c.mu.Lock()
	defer c.mu.Unlock()
	pr := c.prs[number]
	if pr == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (c *MockGitHubServerConfig) editPR(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.PathValue("number"))
	// The API sends base as a plain string, not {"ref": ...}
	var update struct {
		Title *string `json:"title,omitempty"`
		Body  *string `json:"body,omitempty"`
		Base  *string `json:"base,omitempty"`
		State *string `json:"state,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	pr := c.prs[number]
	if pr == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	if update.Title != nil {
		pr.Title = update.Title
	}
	if update.Body != nil {
		pr.Body = update.Body
	}
	if update.Base != nil {
		pr.Base = &github.PullRequestBranch{Ref: update.Base}
	}
	if update.State != nil {
		pr.State = update.State
	}
	writeJSON(w, http.StatusOK, pr)
}

func (c *MockGitHubServerConfig) listComments(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.PathValue("number"))
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.comments[number]
	if out == nil {
		out = []*github.IssueComment{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *MockGitHubServerConfig) createComment(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.PathValue("number"))
	var comment github.IssueComment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	created := c.addCommentLocked(number, comment.GetBody())
	c.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (c *MockGitHubServerConfig) editComment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var update github.IssueComment
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, comments := range c.comments {
		for _, comment := range comments {
			if comment.GetID() == id {
				comment.Body = update.Body
				writeJSON(w, http.StatusOK, comment)
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
