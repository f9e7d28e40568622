// Package gitinfo looks up when an implicated file last changed. Entirely
// optional: outside a git work tree every lookup soft-fails.
package gitinfo

import (
	"os/exec"
	"strings"
)

// Commit identifies the most recent commit touching a file.
type Commit struct {
	Hash    string
	Author  string
	Date    string // committer date, YYYY-MM-DD
	Subject string
}

// LastChange runs git log for a single path under root. A missing git
// binary, a non-repository root or an untracked path all return false; the
// caller renders the report without the annotation.
func LastChange(root, path string) (*Commit, bool) {
	cmd := exec.Command("git", "-C", root, "log", "-1", "--format=%h%x09%an%x09%cs%x09%s", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return nil, false
	}

	parts := strings.SplitN(strings.TrimSpace(string(output)), "\t", 4)
	if len(parts) < 4 || parts[0] == "" {
		return nil, false
	}
	return &Commit{Hash: parts[0], Author: parts[1], Date: parts[2], Subject: parts[3]}, true
}
