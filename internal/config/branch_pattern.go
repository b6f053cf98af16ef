package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"stacked.dev/st/internal/utils"
)

// BranchPattern is a template for branch names generated from a commit
// message. Placeholders: {username}, {date} and the required {message}.
type BranchPattern string

// DefaultBranchPattern is the default branch name pattern
const DefaultBranchPattern BranchPattern = "{message}"

var placeholderRegex = regexp.MustCompile(`\{[^}]+\}`)

// NewBranchPattern validates pattern. An empty pattern means the default.
func NewBranchPattern(pattern string) (BranchPattern, error) {
	if pattern == "" {
		return DefaultBranchPattern, nil
	}
	for _, ph := range placeholderRegex.FindAllString(pattern, -1) {
		switch ph {
		case "{username}", "{date}", "{message}":
		default:
			return "", fmt.Errorf("unknown placeholder %s in branch name pattern", ph)
		}
	}
	if !strings.Contains(pattern, "{message}") {
		return "", fmt.Errorf("branch name pattern must contain {message} placeholder")
	}
	return BranchPattern(pattern), nil
}

// WithDefault returns the pattern, or the default if empty
func (p BranchPattern) WithDefault() BranchPattern {
	if p == "" {
		return DefaultBranchPattern
	}
	return p
}

// BranchName fills in the pattern. username may be empty when the pattern
// does not use it.
func (p BranchPattern) BranchName(message, username string, now time.Time) (string, error) {
	msg := utils.BranchNameFromMessage(message)
	if msg == "" {
		return "", fmt.Errorf("failed to generate branch name from commit message")
	}

	r := strings.NewReplacer(
		"{username}", strings.ToLower(utils.SanitizeBranchName(username)),
		"{date}", now.Format("20060102"),
		"{message}", msg,
	)
	name := utils.SanitizeBranchName(r.Replace(string(p.WithDefault())))
	// an empty username leaves a leading or doubled separator behind
	name = strings.ReplaceAll(strings.TrimPrefix(name, "/"), "//", "/")
	if name == "" {
		return "", fmt.Errorf("failed to generate branch name from commit message")
	}
	return name, nil
}
