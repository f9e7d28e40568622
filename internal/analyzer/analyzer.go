// Package analyzer extracts per-file facts from source text: declared
// symbols, imported dependencies, and bounded context windows around a
// target line. Everything here is a best-effort lexical heuristic over
// ambiguous input; nothing is executed or type-checked.
package analyzer

import (
	"os"
	"regexp"
	"strings"
)

// FileAnalysis holds the facts extracted from a single source file.
type FileAnalysis struct {
	Path          string         `json:"path"`
	Content       string         `json:"-"`
	LineCount     int            `json:"line_count"`
	Functions     []string       `json:"functions"` // declaration names, first-seen order, deduplicated
	Imports       []string       `json:"imports"`   // module references, deduplicated
	RelevantLines []RelevantLine `json:"relevant_lines,omitempty"`
}

// RelevantLine is one line of an analysis anchored to a target line.
type RelevantLine struct {
	Number  int    `json:"number"` // 1-based
	Content string `json:"content"`
	Role    string `json:"role"` // "before", "target" or "after"
}

// declPatterns recognize function and method declarations across the
// supported language set. Evaluated in order; for the containing-function
// heuristic the first match wins, for symbol extraction every match
// contributes.
var declPatterns = []*regexp.Regexp{
	// Ruby and Python: def name, def self.name
	regexp.MustCompile(`^\s*def\s+(?:self\.)?([A-Za-z_][A-Za-z0-9_]*[?!]?)`),
	// JavaScript / PHP: function name(...), export async function name(...)
	regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`),
	// JavaScript arrow or function expression bound to a const/let/var
	regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:\(|function\b|[A-Za-z_$][\w$]*\s*=>)`),
	// Go: func name(, func (r *Recv) name(
	regexp.MustCompile(`^func\s+(?:\([^)]+\)\s+)?([A-Za-z_]\w*)\s*\(`),
	// Rust: fn name, pub async fn name
	regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+([A-Za-z_]\w*)`),
	// Java / C#: access modifier, return type, name, parameter list
	regexp.MustCompile(`^\s*(?:public|private|protected)\s+(?:static\s+)?[\w<>\[\],\s]+?\s(\w+)\s*\(`),
}

// importPatterns recognize module/dependency references. Every matching
// pattern on a line contributes its capture to the import set.
var importPatterns = []*regexp.Regexp{
	// Ruby: require 'json', require_relative '../lib/util'
	regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`),
	// Python: from pkg.mod import x
	regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`),
	// Python / generic: import pkg.mod
	regexp.MustCompile(`^\s*import\s+([\w.]+)\s*$`),
	// ES modules: import { x } from 'pkg'
	regexp.MustCompile(`^\s*import\s+.*?\bfrom\s+['"]([^'"]+)['"]`),
	// CommonJS: require('pkg')
	regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`),
	// Java: import com.example.Thing;
	regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+)\s*;`),
	// Go, single-line form: import alias "path"
	regexp.MustCompile(`^import\s+(?:[\w.]+\s+)?"([^"]+)"`),
	// Rust / PHP: use foo::bar
	regexp.MustCompile(`^\s*use\s+([\w:\\]+)`),
}

// AnalyzeFile reads and analyzes one file. target <= 0 analyzes without an
// anchor; a positive target additionally populates RelevantLines with radius
// lines of surrounding context.
func AnalyzeFile(path string, target, radius int) (*FileAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return AnalyzeContent(path, string(data), target, radius), nil
}

// AnalyzeContent analyzes already-read file content. It never fails: on
// unrecognizable content the symbol and import sets are simply empty.
func AnalyzeContent(path, content string, target, radius int) *FileAnalysis {
	lines := strings.Split(content, "\n")

	fa := &FileAnalysis{
		Path:      path,
		Content:   content,
		LineCount: len(lines),
	}

	seenFunc := map[string]bool{}
	seenImport := map[string]bool{}
	for _, line := range lines {
		for _, p := range declPatterns {
			if m := p.FindStringSubmatch(line); m != nil && !seenFunc[m[1]] {
				seenFunc[m[1]] = true
				fa.Functions = append(fa.Functions, m[1])
			}
		}
		for _, p := range importPatterns {
			if m := p.FindStringSubmatch(line); m != nil && !seenImport[m[1]] {
				seenImport[m[1]] = true
				fa.Imports = append(fa.Imports, m[1])
			}
		}
	}

	if strings.HasSuffix(path, ".go") {
		refineGoAnalysis(fa)
	}

	if target >= 1 && target <= len(lines) {
		fa.RelevantLines = relevantLines(lines, target, radius)
	}
	return fa
}

func relevantLines(lines []string, target, radius int) []RelevantLine {
	start := target - radius
	if start < 1 {
		start = 1
	}
	end := target + radius
	if end > len(lines) {
		end = len(lines)
	}

	out := make([]RelevantLine, 0, end-start+1)
	for n := start; n <= end; n++ {
		role := "before"
		switch {
		case n == target:
			role = "target"
		case n > target:
			role = "after"
		}
		out = append(out, RelevantLine{Number: n, Content: lines[n-1], Role: role})
	}
	return out
}
