package git

import (
	"context"
	"fmt"
	"strings"
)

// Commit is the subset of commit metadata used for PR titles and bodies
type Commit struct {
	SHA     string
	Subject string
	Body    string
}

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// CommitsBetween lists the commits reachable from head but not from base,
// oldest first.
func (r *Repo) CommitsBetween(ctx context.Context, base, head string) ([]Commit, error) {
	format := "--format=%H" + fieldSep + "%s" + fieldSep + "%b" + recordSep
	output, err := r.runner.RunRaw(ctx, "log", "--reverse", format, base+".."+head)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits %s..%s: %w", base, head, err)
	}

	var commits []Commit
	for _, record := range strings.Split(output, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 3)
		if len(fields) < 2 {
			continue
		}
		c := Commit{SHA: fields[0], Subject: fields[1]}
		if len(fields) == 3 {
			c.Body = strings.TrimSpace(fields[2])
		}
		commits = append(commits, c)
	}
	return commits, nil
}
