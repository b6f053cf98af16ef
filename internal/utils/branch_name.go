package utils

import (
	"regexp"
	"strings"
)

// MaxBranchNameByteLength keeps generated names well inside git's ref length limit
const MaxBranchNameByteLength = 200

var (
	// Valid characters: letters, numbers, -, _, /, .
	branchNameReplaceRegex = regexp.MustCompile(`[^-_/.a-zA-Z0-9]+`)
	branchNameIgnoreRegex  = regexp.MustCompile(`[/.]*$`)
	hyphenRunRegex         = regexp.MustCompile(`-+`)
	conventionalPrefix     = regexp.MustCompile(`^(feat|fix|chore|docs|style|refactor|perf|test|build|ci)(\([^)]*\))?:\s*`)
)

// SanitizeBranchName turns arbitrary text into a usable branch name
func SanitizeBranchName(name string) string {
	name = strings.TrimSpace(name)
	name = branchNameIgnoreRegex.ReplaceAllString(name, "")
	name = branchNameReplaceRegex.ReplaceAllString(name, "-")
	name = hyphenRunRegex.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if len(name) > MaxBranchNameByteLength {
		name = strings.TrimSuffix(name[:MaxBranchNameByteLength], "-")
	}
	return name
}

// BranchNameFromMessage derives a branch name from the subject line of a commit message
func BranchNameFromMessage(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	subject = conventionalPrefix.ReplaceAllString(strings.TrimSpace(subject), "")
	return strings.ToLower(SanitizeBranchName(subject))
}
