package locator

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreRules holds the patterns from a codebase root's .gitignore. The set
// is loaded once per scan and is read-only afterwards, so concurrent file
// analyses can share it safely. A missing ignore file yields an empty rule
// set, not an error.
type IgnoreRules struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern string
	dirOnly bool
	rooted  bool // pattern contained a slash, match against the full relative path
}

// LoadIgnoreRules reads root/.gitignore. The supported subset covers the
// common cases: comments, blank lines, directory rules ("tmp/"), glob rules
// ("*.log") and path rules ("config/secrets.yml"). Negations are not
// supported and are skipped.
func LoadIgnoreRules(root string) *IgnoreRules {
	rules := &IgnoreRules{}

	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return rules
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		p := ignorePattern{pattern: line}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			p.pattern = strings.TrimSuffix(line, "/")
		}
		p.pattern = strings.TrimPrefix(p.pattern, "/")
		p.rooted = strings.Contains(p.pattern, "/")
		rules.patterns = append(rules.patterns, p)
	}
	return rules
}

// Ignored reports whether the relative path matches any rule. Directory
// rules also exclude everything beneath the directory.
func (r *IgnoreRules) Ignored(relPath string) bool {
	if r == nil || len(r.patterns) == 0 {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	base := relPath
	if i := strings.LastIndex(relPath, "/"); i >= 0 {
		base = relPath[i+1:]
	}

	for _, p := range r.patterns {
		if p.dirOnly {
			if matchesDirRule(p.pattern, relPath) {
				return true
			}
			continue
		}
		if p.rooted {
			if ok, _ := filepath.Match(p.pattern, relPath); ok {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(p.pattern, base); ok {
			return true
		}
	}
	return false
}

// matchesDirRule reports whether relPath is the named directory or lives
// inside it, at any depth.
func matchesDirRule(dir, relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if ok, _ := filepath.Match(dir, seg); ok {
			return true
		}
	}
	return false
}
